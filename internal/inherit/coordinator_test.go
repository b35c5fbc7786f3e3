package inherit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mop/internal/entity"
)

func TestCoordinator_FetchesAndCaches(t *testing.T) {
	var parentCalls, kravCalls atomic.Int64
	getParent := func(ctx context.Context, id int64) (any, error) {
		parentCalls.Add(1)
		return &entity.Entity{ID: id, EmneID: i64(7)}, nil
	}
	getKrav := func(ctx context.Context, id int64) (any, error) {
		kravCalls.Add(1)
		// envelope shape, like the HTTP data layer resolves
		return &entity.Envelope{Data: &entity.Entity{ID: id, EmneID: i64(8)}}, nil
	}
	c := NewCoordinator(entity.TypeTiltak, getParent, getKrav, time.Minute)

	form := FormData{ParentID: i64(1)}
	r, err := c.Resolve(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, SourceParent, r.Source)
	assert.Equal(t, i64(7), r.EmneID)

	// same id again: served from cache
	_, err = c.Resolve(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(1), parentCalls.Load())

	// krav path
	r, err = c.Resolve(context.Background(), FormData{KravIDs: []int64{5}})
	require.NoError(t, err)
	assert.Equal(t, SourceKrav, r.Source)
	assert.Equal(t, i64(8), r.EmneID)
	assert.Equal(t, int64(1), kravCalls.Load())

	// invalidation forces a refetch
	c.Invalidate(entity.TypeTiltak, 1)
	_, err = c.Resolve(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(2), parentCalls.Load())
}

func TestCoordinator_FailedFetchDegradesToNotLoaded(t *testing.T) {
	boom := errors.New("backend down")
	getParent := func(ctx context.Context, id int64) (any, error) { return nil, boom }
	getKrav := func(ctx context.Context, id int64) (any, error) {
		return &entity.Entity{ID: id, EmneID: i64(3)}, nil
	}
	c := NewCoordinator(entity.TypeTiltak, getParent, getKrav, time.Minute)

	r, err := c.Resolve(context.Background(), FormData{ParentID: i64(1), KravIDs: []int64{2}})
	require.ErrorIs(t, err, boom, "first fetch error surfaces")
	assert.Equal(t, SourceKrav, r.Source, "result still computed from what loaded")
}

func TestCoordinator_KravFamilyDoesNotFetchKrav(t *testing.T) {
	var kravCalls atomic.Int64
	getKrav := func(ctx context.Context, id int64) (any, error) {
		kravCalls.Add(1)
		return &entity.Entity{ID: id}, nil
	}
	c := NewCoordinator(entity.TypeKrav, nil, getKrav, time.Minute)
	_, err := c.Resolve(context.Background(), FormData{KravIDs: []int64{1}})
	require.NoError(t, err)
	assert.Zero(t, kravCalls.Load())
}

// Full edit-session flow: a parent link inherits the parent's emne and locks
// the other inputs; dropping the parent and linking a krav switches the
// inherited emne and the locked inputs.
func TestCoordinator_EditSessionSwitchesSource(t *testing.T) {
	entities := map[int64]*entity.Entity{
		3: {ID: 3, EmneID: i64(7)},
		9: {ID: 9, EmneID: i64(15)},
	}
	fetch := func(ctx context.Context, id int64) (any, error) { return entities[id], nil }
	c := NewCoordinator(entity.TypeTiltak, fetch, fetch, time.Minute)

	r, err := c.Resolve(context.Background(), FormData{ParentID: i64(3)})
	require.NoError(t, err)
	assert.Equal(t, i64(7), r.EmneID)
	assert.True(t, r.EmneDisabled)
	assert.True(t, r.KravDisabled)
	assert.False(t, r.ParentDisabled)

	r, err = c.Resolve(context.Background(), FormData{KravIDs: []int64{9}})
	require.NoError(t, err)
	assert.Equal(t, i64(15), r.EmneID)
	assert.Equal(t, SourceKrav, r.Source)
	assert.True(t, r.ParentDisabled)
	assert.False(t, r.KravDisabled)
}

func TestRequestCache_SingleFlight(t *testing.T) {
	c := newRequestCache(time.Minute)
	var calls atomic.Int64
	release := make(chan struct{})

	fetch := func(ctx context.Context) (*entity.Entity, error) {
		calls.Add(1)
		<-release
		return &entity.Entity{ID: 1}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := c.get(context.Background(), "krav/1", fetch)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), e.ID)
		}()
	}
	// let the goroutines pile up on the same key, then release the fetch
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int64(1), calls.Load())
}

func TestRequestCache_TTLExpiry(t *testing.T) {
	c := newRequestCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	var calls int
	fetch := func(ctx context.Context) (*entity.Entity, error) {
		calls++
		return &entity.Entity{ID: int64(calls)}, nil
	}

	_, err := c.get(context.Background(), "k", fetch)
	require.NoError(t, err)
	_, err = c.get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	current = current.Add(2 * time.Minute)
	_, err = c.get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRequestCache_FailuresNotCached(t *testing.T) {
	c := newRequestCache(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) (*entity.Entity, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return &entity.Entity{ID: 1}, nil
	}
	_, err := c.get(context.Background(), "k", fetch)
	require.Error(t, err)
	e, err := c.get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}
