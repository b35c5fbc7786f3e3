package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mop/internal/entity"
)

func TestExtractUID_Chain(t *testing.T) {
	krav := NewKravAdapter(cfgFor(t, "krav"))
	tiltak := NewTiltakAdapter(cfgFor(t, "tiltak"))

	e := &entity.Entity{ID: 9, KravUID: "K-1", TiltakUID: "T-2", UID: "X-3"}
	assert.Equal(t, "K-1", krav.ExtractUID(e))
	assert.Equal(t, "T-2", tiltak.ExtractUID(e))

	e = &entity.Entity{ID: 9, UID: "X-3"}
	assert.Equal(t, "X-3", krav.ExtractUID(e), "generic uid when type-specific is empty")

	e = &entity.Entity{ID: 9}
	assert.Equal(t, "9", krav.ExtractUID(e), "id as last resort")

	assert.Equal(t, "", krav.ExtractUID(nil))
}

func TestFilterEntities(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))
	list := []*entity.Entity{
		{ID: 1, Tittel: "Støykrav anleggsfase", Status: &entity.NamedRef{Navn: "Pågår"}},
		{ID: 2, Tittel: "Avfallsplan", Status: &entity.NamedRef{Navn: "Ferdig"}, Vurdering: &entity.NamedRef{Navn: "Lav risiko"}},
		{ID: 3, Tittel: "Naboinformasjon", Beskrivelse: "Varsle naboer om støy", Status: &entity.NamedRef{Navn: "Pågår"}},
		nil,
	}

	assert.Same(t, &list[0], &a.FilterEntities(list, Filters{})[0], "empty criteria returns input as-is")

	got := a.FilterEntities(list, Filters{Search: "støy"})
	require.Len(t, got, 2, "search matches title and description, case-insensitive")
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	got = a.FilterEntities(list, Filters{Status: "Pågår"})
	require.Len(t, got, 2)

	got = a.FilterEntities(list, Filters{Search: "a", Status: "Ferdig", Vurdering: "Lav risiko"})
	require.Len(t, got, 1, "criteria AND-combine")
	assert.Equal(t, int64(2), got[0].ID)

	got = a.FilterEntities(list, Filters{Search: "K-77"})
	assert.Empty(t, got)
	list[0].KravUID = "K-77"
	got = a.FilterEntities(list, Filters{Search: "k-77"})
	require.Len(t, got, 1, "uid is searchable")
}

func TestSortEntities(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))
	list := []*entity.Entity{
		{ID: 1, Tittel: "bøk"},
		{ID: 2, Tittel: "Ask"},
		{ID: 3, Tittel: "eik"},
	}

	got := a.SortEntities(list, "title", "asc")
	assert.Equal(t, []int64{2, 1, 3}, ids(got), "lower-cased comparison")
	assert.Equal(t, int64(1), list[0].ID, "input untouched")

	got = a.SortEntities(list, "title", "desc")
	assert.Equal(t, []int64{3, 1, 2}, ids(got))

	got = a.SortEntities(list, "", "asc")
	assert.Equal(t, []int64{1, 2, 3}, ids(got), "no key keeps input order")

	same := []*entity.Entity{
		{ID: 1, Tittel: "x"},
		{ID: 2, Tittel: "x"},
	}
	got = a.SortEntities(same, "title", "asc")
	assert.Equal(t, []int64{1, 2}, ids(got), "stable on equal keys")
}

func ids(list []*entity.Entity) []int64 {
	out := make([]int64, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestSortValue_Keys(t *testing.T) {
	a := NewTiltakAdapter(cfgFor(t, "tiltak"))
	e := &entity.Entity{
		ID:          4,
		Tittel:      "Støyskjerm",
		TiltakUID:   "T-4",
		Prioritet:   "Høy",
		Beskrivelse: "Montering langs byggegrense",
		Status:      &entity.NamedRef{Navn: "Pågår"},
		Vurdering:   &entity.NamedRef{Navn: "Middels risiko"},
		Emne:        &entity.Emne{Navn: "Ytre miljø"},
	}

	assert.Equal(t, "Støyskjerm", a.SortValue(e, "title"))
	assert.Equal(t, "Pågår", a.SortValue(e, "status"))
	assert.Equal(t, "Ytre miljø", a.SortValue(e, "emne"))
	assert.Equal(t, "T-4", a.SortValue(e, "uid"))
	assert.Equal(t, "Middels risiko", a.SortValue(e, "vurdering"))
	assert.Equal(t, "Høy", a.SortValue(e, "prioritet"))
	assert.Equal(t, "Montering langs byggegrense", a.SortValue(e, "beskrivelse"))
	assert.Equal(t, "4", a.SortValue(e, "id"))
	assert.Equal(t, "", a.SortValue(e, "bogus"))
	assert.Equal(t, "", a.SortValue(nil, "title"))
}

func TestExtractAvailableFilters(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))
	list := []*entity.Entity{
		{Status: &entity.NamedRef{Navn: "Pågår"}, Emne: &entity.Emne{Navn: "Avfall"}},
		{Status: &entity.NamedRef{Navn: "Ferdig"}, Vurdering: &entity.NamedRef{Navn: "Lav risiko"}},
		{Status: &entity.NamedRef{Navn: "Pågår"}, Emne: &entity.Emne{Navn: "Arbeidsmiljø"}},
		nil,
		{},
	}

	got := a.ExtractAvailableFilters(list)
	assert.Equal(t, []string{"Ferdig", "Pågår"}, got.Statuses, "deduplicated and sorted")
	assert.Equal(t, []string{"Lav risiko"}, got.Vurderinger)
	assert.Equal(t, []string{"Arbeidsmiljø", "Avfall"}, got.Emner)
}

func TestEnhanceEntity(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))
	e := &entity.Entity{ID: 1, Tittel: "Støykrav"}

	got := a.EnhanceEntity(e)
	require.NotNil(t, got)
	assert.NotSame(t, e, got, "works on a copy")
	assert.Equal(t, entity.TypeKrav, got.EntityType)
	assert.Equal(t, "Krav", got.DisplayType)
	assert.Equal(t, "blue", got.BadgeColor)
	assert.NotEmpty(t, got.RenderID)
	assert.Empty(t, e.RenderID, "original untouched")

	again := a.EnhanceEntity(e)
	assert.NotEqual(t, got.RenderID, again.RenderID, "render ids are per enhancement")

	tagged := &entity.Entity{ID: 2, EntityType: entity.TypeTiltak}
	assert.Equal(t, entity.TypeTiltak, a.EnhanceEntity(tagged).EntityType,
		"combined-view records keep their own type")

	assert.Nil(t, a.EnhanceEntity(nil))
}

func TestOnSaveComplete(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))

	var selected *entity.Entity
	got, err := a.OnSaveComplete(&entity.Envelope{Data: &entity.Entity{ID: 5, Tittel: "Ny"}}, true, func(e *entity.Entity) {
		selected = e
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
	assert.NotEmpty(t, got.RenderID)
	assert.Same(t, got, selected)

	got, err = a.OnSaveComplete(&entity.Entity{ID: 6}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.ID)

	_, err = a.OnSaveComplete("garbage", true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload shape")
}

func TestDisplayConfig_FollowsWorkspaceConfig(t *testing.T) {
	a := NewKravAdapter(cfgFor(t, "krav"))
	dc := a.DisplayConfig()
	assert.Equal(t, []entity.Type{entity.TypeKrav}, dc.EntityTypes)
	assert.True(t, dc.SupportsGroupByEmne)
	assert.NotEmpty(t, dc.Title)
}

func TestFilterConfig_TogglesFromUI(t *testing.T) {
	tiltak := NewTiltakAdapter(cfgFor(t, "tiltak"))
	fc := tiltak.FilterConfig()
	assert.False(t, fc.Fields.Obligatorisk.Enabled, "tiltak has no obligatorisk field")
	assert.True(t, fc.Fields.Status.Enabled)
	assert.Equal(t, "all", fc.Defaults.FilterBy)
	assert.NotEmpty(t, fc.SortFields)
}
