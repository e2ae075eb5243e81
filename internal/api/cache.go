package api

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultKeepUnusedFor is how long an entry without subscribers survives.
const DefaultKeepUnusedFor = 60 * time.Second

// Status is the staleness state of a cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusFresh
	StatusInvalidated
	StatusRefetching
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFresh:
		return "fresh"
	case StatusInvalidated:
		return "invalidated"
	case StatusRefetching:
		return "refetching"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CacheObserver receives cache events, typically prometheus counters.
type CacheObserver interface {
	CacheHit(endpoint string)
	CacheMiss(endpoint string)
	Deduplicated()
	Invalidated(tag string, n int)
}

type fetchFunc func(ctx context.Context) (json.RawMessage, error)

// result is delivered to subscribers after every fetch of their entry.
type result struct {
	data json.RawMessage
	err  error
}

type entry struct {
	key       string
	endpoint  string
	tags      []TagRef
	gen       uint64
	version   uint64
	fetch     fetchFunc
	data      json.RawMessage
	err       error
	status    Status
	fetchedAt time.Time
	subs      map[uuid.UUID]func(result)
	gcTimer   *time.Timer
}

// EntryInfo describes one cache entry.
type EntryInfo struct {
	Key         string
	Endpoint    string
	Tags        []TagRef
	Status      Status
	Subscribers int
	FetchedAt   time.Time
	Err         error
}

type cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	gen           uint64
	flights       singleflight.Group
	keepUnusedFor time.Duration
	obs           CacheObserver
	log           logrus.FieldLogger
}

func newCache(keepUnusedFor time.Duration, obs CacheObserver, log logrus.FieldLogger) *cache {
	if keepUnusedFor <= 0 {
		keepUnusedFor = DefaultKeepUnusedFor
	}
	return &cache{
		entries:       make(map[string]*entry),
		keepUnusedFor: keepUnusedFor,
		obs:           obs,
		log:           log,
	}
}

// lookup returns the entry for key, creating it when absent. c.mu must be held.
func (c *cache) lookup(key, endpoint string, tags []TagRef, fetch fetchFunc) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:      key,
			endpoint: endpoint,
			tags:     tags,
			gen:      c.gen,
			status:   StatusPending,
			subs:     make(map[uuid.UUID]func(result)),
		}
		c.entries[key] = e
	}
	e.fetch = fetch
	if len(e.subs) == 0 {
		c.scheduleGC(e)
	}
	return e
}

// read serves key from the cache while fresh and otherwise joins or starts a fetch.
func (c *cache) read(ctx context.Context, key, endpoint string, tags []TagRef, fetch fetchFunc) (json.RawMessage, error) {
	c.mu.Lock()
	e := c.lookup(key, endpoint, tags, fetch)
	if e.status == StatusFresh {
		data := e.data
		c.mu.Unlock()
		c.obs.CacheHit(endpoint)
		return data, nil
	}
	version := e.version
	c.mu.Unlock()

	c.obs.CacheMiss(endpoint)
	return c.refresh(ctx, e, version)
}

// refresh runs one fetch per entry version at a time; concurrent callers share its result.
// A flight that already stored version is not repeated. The fetch outlives a cancelled
// caller so other waiters still get their data.
func (c *cache) refresh(ctx context.Context, e *entry, version uint64) (json.RawMessage, error) {
	c.mu.Lock()
	if data, ok := c.storedLocked(e, version); ok {
		c.mu.Unlock()
		c.obs.Deduplicated()
		return data, nil
	}
	key := flightKey(e, version)
	c.mu.Unlock()

	ch := c.flights.DoChan(key, func() (any, error) {
		c.mu.Lock()
		if data, ok := c.storedLocked(e, version); ok {
			c.mu.Unlock()
			return data, nil
		}
		c.mu.Unlock()
		return c.runFetch(context.WithoutCancel(ctx), e, version)
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.obs.Deduplicated()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// storedLocked returns the data of e when a fetch of version has already completed.
// c.mu must be held.
func (c *cache) storedLocked(e *entry, version uint64) (json.RawMessage, bool) {
	if c.entries[e.key] != e || e.version != version || e.status != StatusFresh {
		return nil, false
	}
	return e.data, true
}

func (c *cache) runFetch(ctx context.Context, e *entry, version uint64) (json.RawMessage, error) {
	c.mu.Lock()
	if e.version == version && (e.status == StatusInvalidated || e.status == StatusFresh) {
		e.status = StatusRefetching
	}
	fetch := e.fetch
	c.mu.Unlock()

	data, err := fetch(ctx)

	c.mu.Lock()
	if c.entries[e.key] != e || e.version != version {
		// Reset, collected or invalidated while in flight: the result is not stored.
		c.mu.Unlock()
		return data, err
	}
	if err != nil {
		e.err = err
		e.status = StatusFailed
	} else {
		e.data = data
		e.err = nil
		e.status = StatusFresh
		e.fetchedAt = time.Now()
	}
	subs := make([]func(result), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(result{data: data, err: err})
	}
	return data, err
}

// subscribe marks the entry as actively used and delivers every later fetch result to fn.
func (c *cache) subscribe(key, endpoint string, tags []TagRef, fetch fetchFunc, fn func(result)) func() {
	id := uuid.New()

	c.mu.Lock()
	e := c.lookup(key, endpoint, tags, fetch)
	e.subs[id] = fn
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(e.subs, id)
			if len(e.subs) == 0 && c.entries[e.key] == e {
				c.scheduleGC(e)
			}
		})
	}
}

// scheduleGC (re)starts the removal timer of an unused entry. c.mu must be held.
func (c *cache) scheduleGC(e *entry) {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	e.gcTimer = time.AfterFunc(c.keepUnusedFor, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.entries[e.key] == e && len(e.subs) == 0 {
			delete(c.entries, e.key)
		}
	})
}

// invalidate marks every entry covered by refs as stale and refetches the ones that
// have subscribers. It returns the number of entries affected.
func (c *cache) invalidate(refs []TagRef) int {
	if len(refs) == 0 {
		return 0
	}

	c.mu.Lock()
	var active []*entry
	perTag := make(map[Tag]int)
	n := 0
	var versions []uint64
	for _, e := range c.entries {
		ref, ok := coveredBy(e.tags, refs)
		if !ok {
			continue
		}
		n++
		perTag[ref.Tag]++
		e.version++
		if e.status != StatusPending {
			e.status = StatusInvalidated
		}
		if len(e.subs) > 0 {
			active = append(active, e)
			versions = append(versions, e.version)
		}
	}
	c.mu.Unlock()

	for tag, count := range perTag {
		c.obs.Invalidated(string(tag), count)
	}
	for i, e := range active {
		go func(e *entry, version uint64) {
			if _, err := c.refresh(context.Background(), e, version); err != nil {
				c.log.WithError(err).WithField("key", e.key).Debug("api: refetch after invalidation failed")
			}
		}(e, versions[i])
	}
	return n
}

// coveredBy returns the first ref that covers one of the provided tags.
func coveredBy(provided, refs []TagRef) (TagRef, bool) {
	for _, r := range refs {
		for _, p := range provided {
			if r.covers(p) {
				return r, true
			}
		}
	}
	return TagRef{}, false
}

// reset drops every entry. Fetches still in flight finish without storing anything.
func (c *cache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.gcTimer != nil {
			e.gcTimer.Stop()
		}
	}
	c.entries = make(map[string]*entry)
	c.gen++
}

func (c *cache) snapshot() []EntryInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EntryInfo, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, EntryInfo{
			Key:         e.key,
			Endpoint:    e.endpoint,
			Tags:        append([]TagRef(nil), e.tags...),
			Status:      e.status,
			Subscribers: len(e.subs),
			FetchedAt:   e.fetchedAt,
			Err:         e.err,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flightKey(e *entry, version uint64) string {
	return strconv.FormatUint(e.gen, 10) + "." + strconv.FormatUint(version, 10) + "|" + e.key
}
