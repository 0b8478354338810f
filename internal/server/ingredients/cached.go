package ingredients

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/logging"
)

// CachedFinder serves repeated lookups from a Cache. Cache failures are
// logged and the lookup falls through to the wrapped Finder.
type CachedFinder struct {
	next   Finder
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedFinder(next Finder, cache Cache, ttl time.Duration, logger logging.Logger) *CachedFinder {
	return &CachedFinder{next: next, cache: cache, ttl: ttl, logger: logger.With("module", "ingredients")}
}

func (f *CachedFinder) Find(ctx context.Context, productName string) (*Result, error) {
	name := NormalizeName(productName)
	if name == "" {
		return f.next.Find(ctx, productName)
	}

	res, err := f.cache.Get(ctx, name)
	switch {
	case err == nil:
		f.logger.Debug(ctx, "ingredient cache hit", "product", name)
		return res, nil
	case !errors.Is(err, ErrCacheMiss):
		f.logger.Warn(ctx, "ingredient cache read failed", "product", name, "error", err)
	}

	res, err = f.next.Find(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, name, res, f.ttl); err != nil {
		f.logger.Warn(ctx, "ingredient cache write failed", "product", name, "error", err)
	}
	return res, nil
}
