package ingredients

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	calls []string
	out   *Result
	err   error
}

func (f *fakeFinder) Find(_ context.Context, name string) (*Result, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type memCache struct {
	items  map[string]*Result
	getErr error
	setErr error
	ttls   []time.Duration
}

func (m *memCache) Get(_ context.Context, name string) (*Result, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.items[name]; ok {
		return r, nil
	}
	return nil, ErrCacheMiss
}

func (m *memCache) Set(_ context.Context, name string, res *Result, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.items == nil {
		m.items = map[string]*Result{}
	}
	m.items[name] = res
	m.ttls = append(m.ttls, ttl)
	return nil
}

var sample = &Result{Ingredients: []json.RawMessage{json.RawMessage(`"aqua"`)}}

func TestCachedFinder_MissThenHit(t *testing.T) {
	next := &fakeFinder{out: sample}
	cache := &memCache{}
	f := NewCachedFinder(next, cache, time.Hour, logging.Nop())

	got, err := f.Find(context.Background(), "Toner")
	require.NoError(t, err)
	assert.Same(t, sample, got)

	got, err = f.Find(context.Background(), "  TONER ")
	require.NoError(t, err)
	assert.Same(t, sample, got)

	assert.Equal(t, []string{"toner"}, next.calls)
	assert.Equal(t, []time.Duration{time.Hour}, cache.ttls)
}

func TestCachedFinder_CacheFailuresFallThrough(t *testing.T) {
	next := &fakeFinder{out: sample}
	cache := &memCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	f := NewCachedFinder(next, cache, time.Hour, logging.Nop())

	got, err := f.Find(context.Background(), "toner")
	require.NoError(t, err)
	assert.Same(t, sample, got)
	assert.Len(t, next.calls, 1)
}

func TestCachedFinder_UpstreamErrorNotCached(t *testing.T) {
	next := &fakeFinder{err: common.ErrorBackendUnavailable}
	cache := &memCache{}
	f := NewCachedFinder(next, cache, time.Hour, logging.Nop())

	_, err := f.Find(context.Background(), "toner")
	assert.ErrorIs(t, err, common.ErrorBackendUnavailable)
	assert.Empty(t, cache.items)
}

func TestCachedFinder_BlankNameGoesStraightThrough(t *testing.T) {
	next := &fakeFinder{err: common.ErrorValidation}
	f := NewCachedFinder(next, &memCache{getErr: errors.New("must not be called")}, time.Hour, logging.Nop())

	_, err := f.Find(context.Background(), "  ")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
