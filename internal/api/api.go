// Package api declares every remote operation of the BookNStay API and keeps their cached
// results coherent: reads are cached per operation and arguments, concurrent identical reads
// share one request, and mutations invalidate the tags they affect once the server accepts them.
package api

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qamarabbas408/booknstay/internal/events"
	"github.com/qamarabbas408/booknstay/pkg/client"
)

// Doer performs a request through the transport.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Options configures an API.
type Options struct {
	Client        Doer
	Bus           events.Bus
	KeepUnusedFor time.Duration
	Observer      CacheObserver
	Logger        logrus.FieldLogger
}

// API is the cache-aware entry point for all declared operations.
type API struct {
	client Doer
	bus    events.Bus
	cache  *cache
	log    logrus.FieldLogger
}

// New creates an API over opts.Client.
func New(opts Options) *API {
	log := opts.Logger
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		log = silent
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.New()
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	return &API{
		client: opts.Client,
		bus:    bus,
		cache:  newCache(opts.KeepUnusedFor, obs, log),
		log:    log,
	}
}

// Bus returns the bus fulfilled operations are published on.
func (a *API) Bus() events.Bus {
	return a.bus
}

// Invalidate marks every entry covered by refs as stale.
func (a *API) Invalidate(refs ...TagRef) int {
	return a.cache.invalidate(refs)
}

// Reset drops the whole cache.
func (a *API) Reset() {
	a.cache.reset()
	a.log.Debug("api: cache reset")
}

// Snapshot describes the current cache entries ordered by key.
func (a *API) Snapshot() []EntryInfo {
	return a.cache.snapshot()
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)         {}
func (nopObserver) CacheMiss(string)        {}
func (nopObserver) Deduplicated()           {}
func (nopObserver) Invalidated(string, int) {}
