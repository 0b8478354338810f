// Package session answers "who is logged in" for the CLI.
//
// A Resolver turns a Session (a logical key plus the bearer credential)
// into the current user by calling the identity read endpoint once per
// cache miss. A rejected credential is not an error: it resolves to a nil
// user, which is cached like any other answer until the entry is
// invalidated or its TTL runs out. Transport and backend failures are
// returned to the caller and never cached.
//
// Concurrent misses for one session share a single request. A caller that
// gives up (its context is done) returns early; the shared request keeps
// running and its answer still lands in the cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"golang.org/x/sync/singleflight"
)

// Session identifies whose identity is being resolved. Key is the cache
// key; AccessToken is sent as the bearer credential.
type Session struct {
	Key         string
	AccessToken string
}

// Status is the resolution state of a session.
type Status int

const (
	// StatusLoading means nothing is resolved yet or a read is in flight.
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// State is what Peek reports for a session key.
type State struct {
	Status Status
	User   *models.User
}

// Fetcher performs the identity read. client.HTTPClient satisfies it.
type Fetcher interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

type entry struct {
	user    *models.User
	expires time.Time // zero means no expiry
}

// Resolver caches the current user per session key. It is safe for
// concurrent use.
type Resolver struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  logging.Logger
	now     func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	cache    map[string]entry
	gens     map[string]uint64
	epoch    uint64
	inflight map[string]int
}

// NewResolver builds a Resolver. ttl <= 0 caches until invalidated.
func NewResolver(f Fetcher, ttl time.Duration, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{
		fetcher:  f,
		ttl:      ttl,
		logger:   logger.With("module", "session"),
		now:      time.Now,
		cache:    make(map[string]entry),
		gens:     make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

// CurrentUser returns the user for s, or nil when s is not authenticated.
// Errors match client.ErrUnavailable or client.ErrUnknownBackend, or are
// the caller's context error.
func (r *Resolver) CurrentUser(ctx context.Context, s Session) (*models.User, error) {
	if u, ok := r.cached(s.Key); ok {
		return u, nil
	}

	if s.AccessToken == "" {
		r.mu.Lock()
		r.store(s.Key, nil)
		r.mu.Unlock()
		return nil, nil
	}

	r.mu.Lock()
	gen, epoch := r.gens[s.Key], r.epoch
	r.mu.Unlock()

	// The generation is part of the flight key so that a read started
	// before an invalidation is never joined by callers after it.
	flight := fmt.Sprintf("%s\x00%d\x00%d\x00%s", s.Key, epoch, gen, s.AccessToken)
	fetchCtx := context.WithoutCancel(ctx)

	ch := r.group.DoChan(flight, func() (any, error) {
		return r.fetch(fetchCtx, s, gen, epoch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*models.User)
		return u, nil
	}
}

func (r *Resolver) fetch(ctx context.Context, s Session, gen, epoch uint64) (*models.User, error) {
	r.mu.Lock()
	r.inflight[s.Key]++
	r.mu.Unlock()

	u, err := r.fetcher.CurrentUser(ctx, s.AccessToken)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[s.Key]--; r.inflight[s.Key] <= 0 {
		delete(r.inflight, s.Key)
	}

	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnauthorized):
		u = nil
	default:
		r.logger.Debug(ctx, "identity read failed", "session", s.Key, "error", err)
		return nil, classify(err)
	}

	if r.gens[s.Key] == gen && r.epoch == epoch {
		r.store(s.Key, u)
	}
	return u, nil
}

// store must be called with mu held.
func (r *Resolver) store(key string, u *models.User) {
	e := entry{user: u}
	if r.ttl > 0 {
		e.expires = r.now().Add(r.ttl)
	}
	r.cache[key] = e
}

func (r *Resolver) cached(key string) (*models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(key)
	return e.user, ok
}

// lookup must be called with mu held.
func (r *Resolver) lookup(key string) (entry, bool) {
	e, ok := r.cache[key]
	if !ok {
		return entry{}, false
	}
	if !e.expires.IsZero() && !r.now().Before(e.expires) {
		delete(r.cache, key)
		return entry{}, false
	}
	return e, true
}

// Peek reports the cached state for key without issuing a request.
func (r *Resolver) Peek(key string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight[key] > 0 {
		return State{Status: StatusLoading}
	}
	e, ok := r.lookup(key)
	switch {
	case !ok:
		return State{Status: StatusLoading}
	case e.user == nil:
		return State{Status: StatusUnauthenticated}
	default:
		return State{Status: StatusAuthenticated, User: e.user}
	}
}

// Invalidate drops the cached answer for key. A read already in flight
// still returns to its callers but is not cached.
func (r *Resolver) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, key)
	r.gens[key]++
}

// InvalidateAll drops every cached answer, including reads in flight.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]entry)
	r.epoch++
}

func classify(err error) error {
	if errors.Is(err, client.ErrUnavailable) || errors.Is(err, client.ErrUnknownBackend) {
		return err
	}
	return fmt.Errorf("%w: %v", client.ErrUnknownBackend, err)
}
