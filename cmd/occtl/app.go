package main

import (
	"context"
	"errors"
	"os"

	"occtl/internal/client"
	"occtl/internal/config"
	"occtl/internal/logging"
	"occtl/internal/store"
	"occtl/internal/types"
)

// app bundles the wired components every command needs. The saved server
// configuration in the store takes precedence over the config file.
type app struct {
	cfg    config.Config
	server types.ServerConfig
	log    logging.Logger
	store  *store.Store
	client *client.Client
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	storePath, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}

	server := types.ServerConfig{
		BaseURL:   cfg.ServerBaseURL(),
		Directory: cfg.Server.Directory,
		IsLocal:   cfg.Server.IsLocal,
	}
	if saved, ok, err := st.ServerConfig(ctx); err != nil {
		// A failed read degrades to the file-configured server.
		log.Warn("failed to read saved server config", logging.F("err", err))
	} else if ok {
		server = *saved
	}

	apiClient, err := client.New(server, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		server: server,
		log:    log,
		store:  st,
		client: apiClient,
	}, nil
}

// newStoreOnlyApp wires just the store, for commands that never touch the
// network and must work before a server is configured.
func newStoreOnlyApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	storePath, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: st}, nil
}

func (a *app) close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		a.log.Warn("failed to close store", logging.F("err", err))
	}
}
