package dto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(modelcfg.NewRegistry())
}

func dtoFor(t *testing.T, entityType string) DTO {
	t.Helper()
	d, err := newBuilder(t).For(entityType)
	require.NoError(t, err)
	return d
}

func i64(v int64) *int64 { return &v }

func TestBuilder_SingleAndCombined(t *testing.T) {
	b := newBuilder(t)

	single, err := b.For("krav")
	require.NoError(t, err)
	assert.False(t, single.IsCombinedView())
	assert.Equal(t, []entity.Type{entity.TypeKrav}, single.SupportedEntityTypes())

	combined, err := b.For("combinedEntities")
	require.NoError(t, err)
	assert.True(t, combined.IsCombinedView())
	assert.Equal(t, entity.TypeKrav, combined.PrimaryEntityType())
	assert.Equal(t, []entity.Type{entity.TypeKrav, entity.TypeTiltak}, combined.SupportedEntityTypes())

	prosjekt, err := b.For("prosjektCombined")
	require.NoError(t, err)
	assert.Equal(t, []entity.Type{entity.TypeProsjektKrav, entity.TypeProsjektTiltak}, prosjekt.SupportedEntityTypes())
}

func TestBuilder_MemoizesAndResets(t *testing.T) {
	b := newBuilder(t)
	first, err := b.For("tiltak")
	require.NoError(t, err)
	again, err := b.For("Tiltak")
	require.NoError(t, err)
	assert.Same(t, first, again, "casing variants share one memoized build")

	b.Reset()
	fresh, err := b.For("tiltak")
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

func TestBuilder_UnknownTypeFails(t *testing.T) {
	_, err := newBuilder(t).For("hendelse")
	var ce *modelcfg.ConfigurationError
	require.ErrorAs(t, err, &ce)
}

// The facade surface must behave the same whether one or two types are
// behind it, so workspace code never branches on the view kind.
func TestFacade_UniformSurface(t *testing.T) {
	for _, name := range []string{"krav", "combinedEntities"} {
		t.Run(name, func(t *testing.T) {
			d := dtoFor(t, name)

			list := d.TransformResponse([]*entity.Entity{
				{ID: 1, Tittel: "B-krav"},
				{ID: 2, Tittel: "A-krav"},
			})
			require.Len(t, list, 2)
			for _, e := range list {
				assert.NotEmpty(t, e.RenderID)
				assert.NotEmpty(t, e.DisplayType)
			}

			sorted := d.SortEntities(list, "title", "asc")
			assert.Equal(t, "A-krav", d.ExtractTitle(sorted[0]))

			filtered := d.FilterEntities(list, adapter.Filters{Search: "a-krav"})
			require.Len(t, filtered, 1)

			af := d.ExtractAvailableFilters(list)
			assert.Empty(t, af.Statuses)

			saved, err := d.OnSaveComplete(&entity.Envelope{Data: &entity.Entity{ID: 3, Tittel: "Ny"}}, true, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, saved.RenderID)
		})
	}
}

func TestSingle_EffectiveEmne(t *testing.T) {
	tiltak := dtoFor(t, "tiltak")
	parent := &entity.Entity{ID: 10, EmneID: i64(2)}
	r, err := tiltak.EffectiveEmne(inherit.FormData{ParentID: i64(10)}, parent, nil)
	require.NoError(t, err)
	assert.Equal(t, inherit.SourceParent, r.Source)

	krav := dtoFor(t, "krav")
	_, err = krav.EffectiveEmne(inherit.FormData{}, nil, nil)
	var cv *adapter.ContractViolationError
	require.ErrorAs(t, err, &cv, "krav family never inherits emne")
	assert.Equal(t, "EffectiveEmne", cv.Method)
}

func TestCombined_EffectiveEmneUsesTiltakSide(t *testing.T) {
	d := dtoFor(t, "combinedEntities")
	kravEnt := &entity.Entity{ID: 20, EmneID: i64(3)}
	r, err := d.EffectiveEmne(inherit.FormData{KravIDs: []int64{20}}, nil, kravEnt)
	require.NoError(t, err)
	assert.Equal(t, inherit.SourceKrav, r.Source)
}

func TestCombined_TransformTagsAndMixes(t *testing.T) {
	d := dtoFor(t, "combinedEntities")

	got := d.TransformResponse(CombinedResponse{
		Primary:   []*entity.Entity{{ID: 1, Tittel: "Krav B"}},
		Secondary: &modelcfg.Page{Items: []*entity.Entity{{ID: 2, Tittel: "Tiltak A"}}},
	})
	require.Len(t, got, 2)
	// default mixing sorts by title asc across both types
	assert.Equal(t, "Tiltak A", got[0].Tittel)
	assert.Equal(t, entity.TypeTiltak, got[0].EntityType)
	assert.Equal(t, "Krav B", got[1].Tittel)
	assert.Equal(t, entity.TypeKrav, got[1].EntityType)
	assert.Equal(t, "green", d.BadgeColor(got[0]))
	assert.Equal(t, "blue", d.BadgeColor(got[1]))
}

func TestCombined_PlainPayloadTreatedAsPrimary(t *testing.T) {
	d := dtoFor(t, "combinedEntities")
	got := d.TransformResponse([]*entity.Entity{{ID: 1, Tittel: "Krav"}})
	require.Len(t, got, 1)
	assert.Equal(t, entity.TypeKrav, got[0].EntityType)
}

func TestCombined_SortUsesPerTypeUID(t *testing.T) {
	d := dtoFor(t, "combinedEntities")
	list := []*entity.Entity{
		{ID: 1, EntityType: entity.TypeKrav, KravUID: "K-9"},
		{ID: 2, EntityType: entity.TypeTiltak, TiltakUID: "T-1"},
		{ID: 3, EntityType: entity.TypeKrav, KravUID: "K-2"},
	}
	got := d.SortEntities(list, "uid", "asc")
	assert.Equal(t, "K-2", d.ExtractUID(got[0]))
	assert.Equal(t, "K-9", d.ExtractUID(got[1]))
	assert.Equal(t, "T-1", d.ExtractUID(got[2]))
}

func TestCombined_SaveDelegatesByType(t *testing.T) {
	d := dtoFor(t, "combinedEntities")

	saved, err := d.OnSaveComplete(&entity.Envelope{Data: &entity.Entity{ID: 1, EntityType: entity.TypeTiltak}}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tiltak", saved.DisplayType)

	saved, err = d.OnSaveComplete(&entity.Entity{ID: 2}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Krav", saved.DisplayType, "untagged records default to the primary side")

	_, err = d.OnSaveComplete(42, false, nil)
	require.Error(t, err)
}

func TestCombined_MergedFilterConfig(t *testing.T) {
	d := dtoFor(t, "combinedEntities")
	fc := d.FilterConfig()
	assert.True(t, fc.Fields.Obligatorisk.Enabled, "enabled on krav, so enabled on the union")
	assert.Equal(t, "title", fc.Defaults.SortBy)
	assert.Equal(t, "asc", fc.Defaults.SortOrder)

	dc := d.DisplayConfig()
	assert.Len(t, dc.EntityTypes, 2)
	assert.NotEmpty(t, dc.Title)
}

func TestCombined_QueryFunctionsCoverBothTypes(t *testing.T) {
	reg := modelcfg.NewRegistry()
	bound := map[entity.Type]bool{}
	for _, et := range entity.SupportedTypes() {
		et := et
		require.NoError(t, reg.BindFunctions(et, modelcfg.Functions{
			Query: func(ctx context.Context, page, pageSize int, search, sortBy, sortOrder string) (*modelcfg.Page, error) {
				bound[et] = true
				return &modelcfg.Page{}, nil
			},
		}))
	}
	d, err := NewBuilder(reg).For("combinedEntities")
	require.NoError(t, err)

	qf := d.QueryFunctions()
	require.Len(t, qf, 2)
	for _, tt := range []entity.Type{entity.TypeKrav, entity.TypeTiltak} {
		require.NotNil(t, qf[tt].Standard, tt)
		_, err := qf[tt].Standard(context.Background(), 1, 10, "", "", "")
		require.NoError(t, err)
	}
	assert.True(t, bound[entity.TypeKrav])
	assert.True(t, bound[entity.TypeTiltak])
}

func TestFlattenResponse_Shapes(t *testing.T) {
	e := &entity.Entity{ID: 1}

	assert.Nil(t, flattenResponse(nil))
	assert.Len(t, flattenResponse([]*entity.Entity{e, nil}), 2, "nil entries dropped later, at enhancement")
	assert.Len(t, flattenResponse(&modelcfg.Page{Items: []*entity.Entity{e}}), 1)
	assert.Len(t, flattenResponse(modelcfg.Page{Items: []*entity.Entity{e}}), 1)
	assert.Nil(t, flattenResponse((*modelcfg.Page)(nil)))
	assert.Len(t, flattenResponse([]modelcfg.EmneGroup{
		{Entities: []*entity.Entity{e}},
		{Entities: []*entity.Entity{{ID: 2}}},
	}), 2)
	assert.Len(t, flattenResponse(&entity.Envelope{Data: e}), 1)
	assert.Nil(t, flattenResponse("garbage"))
}
