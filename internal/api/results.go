package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
	"github.com/JaimeStill/counsel/workflow"
)

// Results keeps recently finished analyses in memory until they expire or
// capacity forces them out. Nothing survives a restart.
type Results struct {
	c *ttlcache.Cache[uuid.UUID, *workflow.Result]
}

// NewResults creates a cache holding at most capacity results for ttl each.
func NewResults(ttl time.Duration, capacity uint64) *Results {
	c := ttlcache.New(
		ttlcache.WithTTL[uuid.UUID, *workflow.Result](ttl),
		ttlcache.WithCapacity[uuid.UUID, *workflow.Result](capacity),
	)
	return &Results{c: c}
}

// Start runs expiry in the background until the lifecycle shuts down.
func (r *Results) Start(lc *lifecycle.Coordinator) {
	go r.c.Start()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		r.c.Stop()
	})
}

// OnEviction registers fn to run when a result leaves the cache.
func (r *Results) OnEviction(fn func(id uuid.UUID, reason string)) {
	r.c.OnEviction(func(_ context.Context, er ttlcache.EvictionReason, i *ttlcache.Item[uuid.UUID, *workflow.Result]) {
		reason := "deleted"
		switch er {
		case ttlcache.EvictionReasonExpired:
			reason = "expired"
		case ttlcache.EvictionReasonCapacityReached:
			reason = "capacity"
		}
		fn(i.Key(), reason)
	})
}

// Store saves a finished result under its id.
func (r *Results) Store(res *workflow.Result) {
	r.c.Set(res.ID, res, ttlcache.DefaultTTL)
}

// Find returns the result for id, if still cached.
func (r *Results) Find(id uuid.UUID) (*workflow.Result, bool) {
	item := r.c.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Len reports how many results are cached.
func (r *Results) Len() int {
	return r.c.Len()
}
