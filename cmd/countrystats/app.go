package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rewired-gh/countrystats/internal/analysis"
	"github.com/rewired-gh/countrystats/internal/errsink"
	"github.com/rewired-gh/countrystats/internal/logger"
	"github.com/rewired-gh/countrystats/internal/storage"
	"github.com/rewired-gh/countrystats/internal/telegram"
	"github.com/rewired-gh/countrystats/internal/worldbank"
)

// app wires the collaborators shared by analyze and serve.
type app struct {
	sink     *errsink.Slot
	session  *analysis.Session
	archive  *storage.Archive
	telegram *telegram.Client
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{sink: errsink.NewSlot()}

	a.sink.Subscribe(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	})

	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		a.telegram = client
		a.sink.Subscribe(client.ErrorObserver())
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	var recorder analysis.Recorder
	if cfg.Archive.Enabled {
		archive, err := storage.Open(ctx, cfg.Archive.Driver, cfg.Archive.DSN)
		if err != nil {
			return nil, err
		}
		a.archive = archive
		recorder = archive
		logger.Info("Archiving analyses to %s", cfg.Archive.Driver)
	}

	a.session = analysis.NewSession(analysis.Options{
		Builder:    worldbank.NewBuilder(cfg.WorldBank.APIBaseURL, cfg.WorldBank.Language, cfg.WorldBank.PerPage),
		Fetcher:    worldbank.NewClient(cfg.WorldBank.Timeout),
		Sink:       a.sink,
		Recorder:   recorder,
		FatalDelay: cfg.WorldBank.FatalDelay,
	})

	return a, nil
}

func (a *app) Close() {
	if a.archive == nil {
		return
	}
	if err := a.archive.Close(); err != nil {
		logger.Error("Failed to close archive: %v", err)
	}
}

func openArchive(ctx context.Context) (*storage.Archive, error) {
	if !cfg.Archive.Enabled {
		return nil, fmt.Errorf("archive is disabled; set archive.enabled or COUNTRY_STATS_ARCHIVE_ENABLED")
	}
	return storage.Open(ctx, cfg.Archive.Driver, cfg.Archive.DSN)
}
