package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qamarabbas408/booknstay/pkg/domain"
)

const (
	// RootKey is where the root snapshot lives in the KV namespace.
	RootKey = "persist:root"
	// CurrentVersion is the snapshot layout this build writes.
	CurrentVersion = 1
)

var (
	// ErrVersionMismatch means the snapshot was written by an incompatible build.
	ErrVersionMismatch = errors.New("persist: snapshot version mismatch")
	// ErrCorruptSnapshot means the snapshot cannot be decoded into a valid session.
	ErrCorruptSnapshot = errors.New("persist: corrupt snapshot")
)

// Envelope is the stored form of the durable state. Only the auth branch is persisted;
// cached server data is never written.
type Envelope struct {
	Version int             `json:"version"`
	Auth    json.RawMessage `json:"auth"`
}

// Migration upgrades the auth payload of version n to version n+1.
type Migration func(auth json.RawMessage) (json.RawMessage, error)

// Persistor saves and restores the session through a KV store.
type Persistor struct {
	KV      KV
	Key     string
	Version int
	// Migrations is keyed by the version a migration upgrades from.
	Migrations map[int]Migration
}

// NewPersistor returns a Persistor for the root snapshot at the current version.
func NewPersistor(kv KV) *Persistor {
	return &Persistor{KV: kv, Key: RootKey, Version: CurrentVersion}
}

// Save writes s as the current snapshot.
func (p *Persistor) Save(ctx context.Context, s domain.Session) error {
	auth, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("persist.Save: %w", err)
	}
	data, err := json.Marshal(Envelope{Version: p.Version, Auth: auth})
	if err != nil {
		return fmt.Errorf("persist.Save: %w", err)
	}
	return p.KV.Set(ctx, p.Key, data)
}

// Load returns the stored session. ok is false when nothing was stored.
func (p *Persistor) Load(ctx context.Context) (s domain.Session, ok bool, err error) {
	data, err := p.KV.Get(ctx, p.Key)
	if errors.Is(err, ErrNotFound) {
		return domain.AnonymousSession(), false, nil
	}
	if err != nil {
		return domain.AnonymousSession(), false, fmt.Errorf("persist.Load: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.AnonymousSession(), false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	auth, err := p.migrate(env)
	if err != nil {
		return domain.AnonymousSession(), false, err
	}
	if err := json.Unmarshal(auth, &s); err != nil {
		return domain.AnonymousSession(), false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if !s.Valid() {
		return domain.AnonymousSession(), false, fmt.Errorf("%w: session invariant violated", ErrCorruptSnapshot)
	}
	return s, true, nil
}

// Purge deletes the snapshot.
func (p *Persistor) Purge(ctx context.Context) error {
	return p.KV.Delete(ctx, p.Key)
}

func (p *Persistor) migrate(env Envelope) (json.RawMessage, error) {
	if env.Version > p.Version || env.Version <= 0 {
		return nil, fmt.Errorf("%w: stored %d, running %d", ErrVersionMismatch, env.Version, p.Version)
	}
	auth := env.Auth
	for v := env.Version; v < p.Version; v++ {
		m, ok := p.Migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no migration from version %d", ErrVersionMismatch, v)
		}
		next, err := m(auth)
		if err != nil {
			return nil, fmt.Errorf("%w: migrate from %d: %v", ErrCorruptSnapshot, v, err)
		}
		auth = next
	}
	return auth, nil
}
