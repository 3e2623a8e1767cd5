// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/PlebOne/blogster/internal/blossom"
	"github.com/PlebOne/blogster/internal/index"
	"github.com/PlebOne/blogster/internal/keystore"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/postservice"
	"github.com/PlebOne/blogster/internal/relays"
	"github.com/PlebOne/blogster/internal/storage"
)

// App bundles the wired components shared by the CLI commands, the HTTP
// server, and the MCP server.
type App struct {
	Config   *Config
	Logger   *slog.Logger
	Store    storage.Provider
	DB       *index.DB
	Keystore *keystore.Store
	Signer   *nostr.Signer
	Relays   *relays.Settings
	Media    *blossom.Client
	Service  *postservice.Service
}

// Bootstrap wires all components from configuration. Stored credentials,
// when present, are loaded into the signer; a missing credential blob is
// not an error (publishing will fail with a credentials error instead).
func Bootstrap(cfg *Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Posts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create posts dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Posts.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	ks, err := keystore.New(cfg.Keystore.Dir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init keystore: %w", err)
	}

	signer := nostr.NewSigner()
	creds, err := ks.Load()
	if err != nil {
		logger.Warn("load credentials failed", slog.String("error", err.Error()))
	} else if creds != nil {
		if err := signer.SetCredentials(creds); err != nil {
			logger.Warn("stored credentials are unusable", slog.String("error", err.Error()))
		} else {
			logger.Info("credentials loaded", slog.String("pubkey", creds.PublicKey))
		}
	}

	relaySettings, err := relays.LoadSettings(cfg.Relays.SettingsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load relay settings: %w", err)
	}

	publisher := nostr.NewPublisher(logger)
	media := blossom.NewClient(cfg.Blossom.ServerURL, signer, logger)
	svc := postservice.New(store, db, signer, publisher, media, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		DB:       db,
		Keystore: ks,
		Signer:   signer,
		Relays:   relaySettings,
		Media:    media,
		Service:  svc,
	}, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	return a.DB.Close()
}
