package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mop/internal/entity"
)

type recordingInvalidator struct {
	keys [][]string
}

func (r *recordingInvalidator) Invalidate(keys ...string) {
	r.keys = append(r.keys, keys)
}

func TestKeys_RuleTable(t *testing.T) {
	s := NewService(nil, nil)
	tests := []struct {
		entityType entity.Type
		want       []string
	}{
		{entity.TypeKrav, []string{"krav", "emne", "tiltak", "prosjektKrav", "combinedEntities"}},
		{entity.TypeTiltak, []string{"tiltak", "emne", "combinedEntities"}},
		{entity.TypeProsjektKrav, []string{"prosjektKrav", "emne", "prosjektTiltak", "prosjektCombined"}},
		{entity.TypeProsjektTiltak, []string{"prosjektTiltak", "emne", "prosjektCombined"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.entityType), func(t *testing.T) {
			got := s.Keys(tt.entityType, OpUpdate)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, string(tt.entityType), got[0], "own list key always first")
		})
	}
}

func TestKeys_UnknownTypeOnlyInvalidatesItself(t *testing.T) {
	s := NewService(nil, nil)
	assert.Equal(t, []string{"hendelse"}, s.Keys("hendelse", OpCreate))
}

func TestNotifySaved_CallsInvalidator(t *testing.T) {
	inv := &recordingInvalidator{}
	s := NewService(inv, nil)

	s.NotifySaved(entity.TypeTiltak, OpCreate, &entity.Entity{ID: 1})
	s.NotifySaved(entity.TypeKrav, OpDelete, nil)

	assert.Len(t, inv.keys, 2)
	assert.Equal(t, []string{"tiltak", "emne", "combinedEntities"}, inv.keys[0])
	assert.Contains(t, inv.keys[1], "combinedEntities")
}

func TestNotifySaved_NilInvalidatorIsSafe(t *testing.T) {
	s := NewService(nil, nil)
	assert.NotPanics(t, func() {
		s.NotifySaved(entity.TypeKrav, OpUpdate, nil)
	})
}
