package api

import (
	"net/url"
	"strconv"
	"strings"

	"mop/internal/adapter"
)

// ListParams is the parsed list-query grammar: page/pageSize (with
// _limit/_offset aliases), one sort key with a leading "-" for descending,
// the q search needle and the named filters.
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Filters   adapter.Filters
}

func parseListParams(q url.Values) ListParams {
	pageSize := 0
	if v := firstOf(q, "pageSize", "_limit", "limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			pageSize = n
		}
	}

	page := 0
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	} else if v := firstOf(q, "_offset", "offset"); v != "" && pageSize > 0 {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n/pageSize + 1
		}
	}

	sortBy, sortOrder := "", ""
	if v := strings.TrimSpace(firstOf(q, "_sort", "sort")); v != "" {
		// only the first key; multi-key sort is not part of the grammar
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		switch {
		case strings.HasPrefix(v, "-"):
			sortBy, sortOrder = v[1:], "desc"
		case strings.HasPrefix(v, "+"):
			sortBy, sortOrder = v[1:], "asc"
		default:
			sortBy, sortOrder = v, "asc"
		}
	}
	if v := strings.ToLower(strings.TrimSpace(q.Get("_order"))); sortBy != "" && (v == "asc" || v == "desc") {
		sortOrder = v
	}

	return ListParams{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Filters: adapter.Filters{
			Search:    strings.TrimSpace(q.Get("q")),
			Status:    strings.TrimSpace(q.Get("status")),
			Vurdering: strings.TrimSpace(q.Get("vurdering")),
		},
	}
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// readExpectedVersion reads the optimistic-lock hint from If-Match,
// tolerating quotes and a weak-validator prefix. 0 means no hint.
func readExpectedVersion(header string) int64 {
	h := strings.TrimSpace(header)
	if h == "" {
		return 0
	}
	h = strings.TrimPrefix(h, "W/")
	h = strings.Trim(h, `"'`)
	v, err := strconv.ParseInt(h, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
