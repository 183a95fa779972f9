// Package cache holds the single-key listing cache in front of the product
// store. Writes invalidate it; reads rebuild it lazily.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/fairyhunter13/realtime-catalog/internal/model"
)

// listingKey is the one cache key. There is no per-query variation.
const listingKey = "products:all"

const (
	capacity           = 16
	numShards          = 2
	evictionPercentage = 10
)

// entry tags a snapshot with the invalidation epoch its build started in.
type entry struct {
	listing model.Listing
	epoch   uint64
}

// Listing is a read-through cache for the active-products snapshot. The
// sturdyc client provides expiry and collapses concurrent rebuilds of the
// key into one fetch. In-flight dedup alone is not enough for write
// consistency: a reader arriving after an invalidation could join a rebuild
// that started before it and receive the pre-invalidate snapshot. Every
// snapshot therefore records the invalidation epoch its build began in, and
// a snapshot from a stale epoch is discarded and rebuilt instead of being
// returned, so an invalidation always happens-before any snapshot a later
// reader observes.
type Listing struct {
	client *sturdyc.Client[entry]
	epoch  atomic.Uint64
}

// NewListing creates the cache with a fixed TTL applied to every Set.
func NewListing(ttl time.Duration) *Listing {
	return &Listing{client: sturdyc.New[entry](capacity, numShards, ttl, evictionPercentage)}
}

// Get returns the cached snapshot if present, unexpired, and built in the
// current invalidation epoch.
func (l *Listing) Get() (model.Listing, bool) {
	e, ok := l.client.Get(listingKey)
	if !ok || e.epoch != l.epoch.Load() {
		return model.Listing{}, false
	}
	return e.listing, true
}

// Set stores the snapshot, overwriting any previous entry.
func (l *Listing) Set(snapshot model.Listing) {
	l.client.Set(listingKey, entry{listing: snapshot, epoch: l.epoch.Load()})
}

// Invalidate clears the entry and advances the epoch so any rebuild already
// in flight can no longer satisfy later readers. Safe to call when nothing
// is cached.
func (l *Listing) Invalidate() {
	l.epoch.Add(1)
	l.client.Delete(listingKey)
}

// GetOrBuild returns the cached snapshot, or runs build to populate it on a
// miss. Concurrent callers of a miss share a single build. A snapshot whose
// build predates an invalidation is deleted and rebuilt before returning.
func (l *Listing) GetOrBuild(ctx context.Context, build func(context.Context) (model.Listing, error)) (model.Listing, error) {
	for {
		e, err := l.client.GetOrFetch(ctx, listingKey, func(ctx context.Context) (entry, error) {
			epoch := l.epoch.Load()
			snapshot, err := build(ctx)
			if err != nil {
				return entry{}, err
			}
			return entry{listing: snapshot, epoch: epoch}, nil
		})
		if err != nil {
			return model.Listing{}, err
		}
		if e.epoch == l.epoch.Load() {
			return e.listing, nil
		}
		// an invalidation landed while this snapshot was being built
		l.client.Delete(listingKey)
	}
}
