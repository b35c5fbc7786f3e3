package store

import (
	"context"
	"sort"
	"strings"

	"mop/internal/entity"
	"mop/internal/modelcfg"
	"mop/internal/reference"
)

// QueryPage is the server-side list query: search, sort, paginate. Pages are
// 1-based; pageSize <= 0 falls back to 50.
func (s *Store) QueryPage(ctx context.Context, t entity.Type, page, pageSize int, search, sortBy, sortOrder string) (*modelcfg.Page, error) {
	all, err := s.List(ctx, t)
	if err != nil {
		return nil, err
	}
	all = ApplySearchSort(all, search, sortBy, sortOrder)
	return Paginate(all, page, pageSize), nil
}

// GroupedByEmne buckets live records by emne. Group order follows the emner
// catalog; records without an emne land in a trailing nil-emne group.
func (s *Store) GroupedByEmne(ctx context.Context, t entity.Type) ([]modelcfg.EmneGroup, error) {
	all, err := s.List(ctx, t)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	catalog := s.catalogs[reference.CatalogEmner]
	s.mu.RUnlock()
	return GroupByEmne(all, catalog), nil
}

// ApplySearchSort filters by the search needle and sorts by sortBy. Both are
// optional; the input order is preserved when they are empty. Shared by the
// in-memory and Postgres backends.
func ApplySearchSort(all []*entity.Entity, search, sortBy, sortOrder string) []*entity.Entity {
	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		filtered := make([]*entity.Entity, 0, len(all))
		for _, e := range all {
			if matchesSearch(e, q) {
				filtered = append(filtered, e)
			}
		}
		all = filtered
	}
	if sortBy != "" {
		desc := strings.EqualFold(sortOrder, "desc")
		sort.SliceStable(all, func(i, j int) bool {
			a := strings.ToLower(sortValueOf(all[i], sortBy))
			b := strings.ToLower(sortValueOf(all[j], sortBy))
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return all
}

// Paginate slices one 1-based page out of the full result set.
func Paginate(all []*entity.Entity, page, pageSize int) *modelcfg.Page {
	if pageSize <= 0 {
		pageSize = 50
	}
	if page <= 0 {
		page = 1
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return &modelcfg.Page{Items: all[start:end], TotalPages: totalPages}
}

// GroupByEmne buckets entities by emneId in catalog order, orphans last.
func GroupByEmne(all []*entity.Entity, catalog reference.Catalog) []modelcfg.EmneGroup {
	byEmne := make(map[int64][]*entity.Entity)
	var orphans []*entity.Entity
	for _, e := range all {
		if e.EmneID == nil {
			orphans = append(orphans, e)
			continue
		}
		byEmne[*e.EmneID] = append(byEmne[*e.EmneID], e)
	}

	items := append([]reference.Item(nil), catalog.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	groups := make([]modelcfg.EmneGroup, 0, len(items)+1)
	for _, item := range items {
		ents := byEmne[item.ID]
		if len(ents) == 0 {
			continue
		}
		groups = append(groups, modelcfg.EmneGroup{Emne: item.Emne(), Entities: ents})
	}
	if len(orphans) > 0 {
		groups = append(groups, modelcfg.EmneGroup{Emne: nil, Entities: orphans})
	}
	return groups
}

func matchesSearch(e *entity.Entity, q string) bool {
	for _, s := range []string{e.DisplayTitle(), e.Description(), e.UID, e.KravUID, e.TiltakUID, e.EmneName()} {
		if s != "" && strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func sortValueOf(e *entity.Entity, key string) string {
	switch strings.ToLower(key) {
	case "title", "tittel", "navn", "name":
		return e.DisplayTitle()
	case "status":
		return e.StatusName()
	case "vurdering":
		return e.VurderingName()
	case "emne":
		return e.EmneName()
	case "uid":
		return e.UID
	case "prioritet":
		return e.Prioritet
	case "id":
		return e.IDString()
	default:
		return e.DisplayTitle()
	}
}
