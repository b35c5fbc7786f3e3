package modelcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mop/internal/entity"
)

func TestProcess_UnsupportedTypeNamesTheSupportedSet(t *testing.T) {
	r := NewRegistry()
	for _, bad := range []string{"", "prosjekt", "Krav ", "kravv"} {
		_, err := r.Process(bad)
		require.Error(t, err, "type %q", bad)
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		for _, want := range []string{"krav", "tiltak", "prosjektKrav", "prosjektTiltak"} {
			assert.Contains(t, ce.Error(), want)
		}
	}
}

func TestProcess_MissingBaseConfig(t *testing.T) {
	r := NewEmptyRegistry()
	_, err := r.Process("krav")
	require.Error(t, err)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "no configuration found")
}

func TestProcess_FillsDefaults(t *testing.T) {
	r := NewEmptyRegistry()
	r.Put(&Config{EntityType: entity.TypeKrav})

	cfg, err := r.Process("krav")
	require.NoError(t, err)

	assert.True(t, BoolOr(cfg.Workspace.Enabled, false))
	assert.Equal(t, LayoutSplit, cfg.Workspace.Layout)
	assert.True(t, BoolOr(cfg.Workspace.Features.Search, false))
	assert.False(t, BoolOr(cfg.Workspace.Features.BulkActions, true))
	assert.Equal(t, "tittel", cfg.List.Sorting.Field)
	assert.Equal(t, "asc", cfg.List.Sorting.Direction)
	assert.Equal(t, 50, cfg.List.Pagination.PageSize)
	assert.Equal(t, "krav", cfg.Title, "title falls back to the entity type")
	assert.Equal(t, "krav", cfg.ModelPrintName)
}

func TestProcess_ExplicitFalseSurvivesMerge(t *testing.T) {
	off := false
	r := NewEmptyRegistry()
	r.Put(&Config{
		EntityType: entity.TypeTiltak,
		Workspace: WorkspaceConfig{
			Enabled:  &off,
			Features: FeatureToggles{Filters: &off},
			UI:       UIToggles{ShowStatus: &off},
		},
	})

	cfg, err := r.Process("tiltak")
	require.NoError(t, err)
	assert.False(t, *cfg.Workspace.Enabled)
	assert.False(t, *cfg.Workspace.Features.Filters)
	assert.False(t, *cfg.Workspace.UI.ShowStatus)
	// untouched siblings still get defaults
	assert.True(t, *cfg.Workspace.Features.Search)
	assert.True(t, *cfg.Workspace.UI.ShowVurdering)
}

func TestProcess_Idempotent(t *testing.T) {
	r := NewRegistry()
	first, err := r.Process("prosjektKrav")
	require.NoError(t, err)

	r2 := NewEmptyRegistry()
	r2.Put(first)
	second, err := r2.Process("prosjektKrav")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcess_DoesNotMutateBase(t *testing.T) {
	r := NewEmptyRegistry()
	base := &Config{EntityType: entity.TypeKrav}
	r.Put(base)

	_, err := r.Process("krav")
	require.NoError(t, err)
	assert.Nil(t, base.Workspace.Enabled, "base config must stay raw")
	assert.Empty(t, base.Title)
}

func TestBindFunctions_UnknownType(t *testing.T) {
	r := NewEmptyRegistry()
	err := r.BindFunctions(entity.TypeKrav, Functions{})
	require.Error(t, err)
}

func TestBuiltinConfigs_CoverEverySupportedType(t *testing.T) {
	r := NewRegistry()
	for _, et := range entity.SupportedTypes() {
		cfg, err := r.Process(string(et))
		require.NoError(t, err, "type %s", et)
		assert.Equal(t, et, cfg.EntityType)
		assert.NotEmpty(t, cfg.Title)
		assert.Equal(t, "emne", cfg.Workspace.GroupBy)
	}
	// tiltak hides the krav-only flag
	tiltak, err := r.Process("tiltak")
	require.NoError(t, err)
	assert.False(t, *tiltak.Workspace.UI.ShowObligatorisk)
}
