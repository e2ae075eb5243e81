// Package store composes the client: transport, query cache, auth slice and persistence.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/internal/auth"
	"github.com/qamarabbas408/booknstay/internal/events"
	"github.com/qamarabbas408/booknstay/internal/metrics"
	"github.com/qamarabbas408/booknstay/internal/persist"
	"github.com/qamarabbas408/booknstay/pkg/client"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// LoginPath is where a forced logout sends the user.
const LoginPath = "/login"

const saveTimeout = 5 * time.Second

// Navigator moves the user interface to another screen.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// Options configures a Store.
type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	Timeout       time.Duration
	KV            persist.KV
	Persistor     *persist.Persistor
	Navigator     Navigator
	KeepUnusedFor time.Duration
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
}

// RootState is the whole client state: the durable auth branch and the volatile cache branch.
type RootState struct {
	Auth  domain.Session
	Cache []api.EntryInfo
}

// Store is the single root of client state.
type Store struct {
	Auth *auth.Slice
	API  *api.API

	client    *client.Client
	persistor *persist.Persistor
	nav       Navigator
	log       logrus.FieldLogger

	ready     chan struct{}
	readyOnce sync.Once
	saveMu    sync.Mutex
	stopSave  func()
}

// New wires the store. Call Rehydrate before serving the user interface.
func New(opts Options) (*Store, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("store.New: base URL required")
	}
	log := opts.Logger
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		log = silent
	}
	p := opts.Persistor
	if p == nil {
		kv := opts.KV
		if kv == nil {
			kv = persist.NewMemoryKV()
		}
		p = persist.NewPersistor(kv)
	}

	s := &Store{
		Auth:      auth.New(),
		persistor: p,
		nav:       opts.Navigator,
		log:       log,
		ready:     make(chan struct{}),
	}

	clientOpts := []client.Option{
		client.WithTokenSource(s.Auth.Token),
		client.WithUnauthorizedHandler(s.forceLogout),
		client.WithLogger(log.WithField("component", "client")),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(opts.Timeout))
	}
	apiOpts := api.Options{
		Bus:           events.New(),
		KeepUnusedFor: opts.KeepUnusedFor,
		Logger:        log.WithField("component", "api"),
	}
	if opts.Metrics != nil {
		clientOpts = append(clientOpts, client.WithObserver(opts.Metrics))
		apiOpts.Observer = opts.Metrics
	}
	s.client = client.New(opts.BaseURL, clientOpts...)
	apiOpts.Client = s.client
	s.API = api.New(apiOpts)

	if err := auth.BindResults(s.API.Bus(), s.Auth, log.WithField("component", "auth")); err != nil {
		return nil, fmt.Errorf("store.New: %w", err)
	}
	s.stopSave = s.Auth.Subscribe(func(domain.Session) { s.save() })
	return s, nil
}

// Rehydrate restores the persisted session, then opens the Ready gate. An incompatible or
// corrupt snapshot is purged and the session stays anonymous.
func (s *Store) Rehydrate(ctx context.Context) error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	sess, ok, err := s.persistor.Load(ctx)
	switch {
	case errors.Is(err, persist.ErrVersionMismatch), errors.Is(err, persist.ErrCorruptSnapshot):
		s.log.WithError(err).Warn("store: discarding persisted session")
		if perr := s.persistor.Purge(ctx); perr != nil {
			s.log.WithError(perr).Warn("store: purge snapshot")
		}
		return nil
	case err != nil:
		return fmt.Errorf("store.Rehydrate: %w", err)
	case !ok || !sess.IsAuthenticated:
		return nil
	}
	if err := s.Auth.SetCredentials(sess.User, sess.Token); err != nil {
		return fmt.Errorf("store.Rehydrate: %w", err)
	}
	s.log.WithField("user_id", sess.User.ID).Debug("store: session restored")
	return nil
}

// Ready is closed once rehydration has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Logout signs the user out and drops every cached response.
func (s *Store) Logout() {
	s.Auth.Logout()
	s.API.Reset()
}

// State returns the current root state.
func (s *Store) State() RootState {
	return RootState{Auth: s.Auth.State(), Cache: s.API.Snapshot()}
}

// Close stops persisting session changes.
func (s *Store) Close() {
	s.stopSave()
}

// forceLogout runs when the server rejects the token. It never calls the network.
func (s *Store) forceLogout() {
	s.log.Info("store: session rejected by server, logging out")
	s.Logout()
	if s.nav != nil {
		s.nav.Redirect(LoginPath)
	}
}

// save writes the latest session, not the one that triggered it, so out-of-order
// notifications cannot persist a stale session.
func (s *Store) save() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.persistor.Save(ctx, s.Auth.State()); err != nil {
		s.log.WithError(err).Warn("store: persist session")
	}
}
