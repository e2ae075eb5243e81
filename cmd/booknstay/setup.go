package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/qamarabbas408/booknstay/internal/config"
	"github.com/qamarabbas408/booknstay/internal/logging"
	"github.com/qamarabbas408/booknstay/internal/metrics"
	"github.com/qamarabbas408/booknstay/internal/persist"
	"github.com/qamarabbas408/booknstay/internal/store"
)

// env is everything one command invocation runs on.
type env struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *store.Store

	closers []func()
}

// setup loads config, opens the log and the session storage, and rehydrates the store.
func setup(ctx context.Context, configFile string, nav store.Navigator) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(cfg.Log, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closers: []func(){closeLog}}

	kv, err := openKV(ctx, cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	if c, ok := kv.(io.Closer); ok {
		e.closers = append(e.closers, func() { c.Close() }) //nolint:errcheck
	}

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		mctx, cancel := context.WithCancel(ctx)
		e.closers = append(e.closers, cancel)
		go func() {
			if err := m.Serve(mctx, cfg.Metrics.Addr); err != nil {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	st, err := store.New(store.Options{
		BaseURL:       cfg.APIURL,
		Timeout:       cfg.HTTP.Timeout,
		KV:            kv,
		Navigator:     nav,
		KeepUnusedFor: cfg.Cache.KeepUnusedFor,
		Metrics:       m,
		Logger:        log,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = st
	e.closers = append(e.closers, st.Close)

	if err := st.Rehydrate(ctx); err != nil {
		e.Close()
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"api":     cfg.APIURL,
		"storage": cfg.Storage.Driver,
		"config":  cfg.File,
	}).Debug("client ready")
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func openKV(ctx context.Context, cfg *config.Config) (persist.KV, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return persist.NewMemoryKV(), nil
	case "redis":
		r := cfg.Storage.Redis
		return persist.NewRedisKV(ctx, persist.RedisConfig{
			Addr:     r.Addr,
			Username: r.Username,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   cfg.Storage.Namespace + ":",
		})
	case "file", "":
		return persist.NewFileKV(cfg.DataDir, cfg.Storage.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
