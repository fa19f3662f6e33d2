package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/appconf"
	"github.com/ironpinguin/departure-monitor-sub000/internal/gtfs"
	"github.com/ironpinguin/departure-monitor-sub000/internal/i18n"
	"github.com/ironpinguin/departure-monitor-sub000/internal/metrics"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
	"github.com/ironpinguin/departure-monitor-sub000/internal/transport"
	"github.com/ironpinguin/departure-monitor-sub000/internal/validation"
)

// Version is reported in metrics and the health endpoint.
const Version = "1.0.0"

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	Store       *store.Store
	Validator   *validation.Validator
	Importer    *transport.Importer
	Metrics     *metrics.Metrics
	GtfsManager *gtfs.Manager
	Catalogs    map[models.Language]*i18n.Catalog
}

// New wires the application from its configuration. A GTFS feed is loaded
// only when GtfsURL is set; without it stop references are not checked.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	m, err := metrics.New(ctx, metrics.Config{
		ServiceName:    "departure-monitor",
		ServiceVersion: Version,
		Exporter:       cfg.MetricsExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		OTLPInsecure:   cfg.Env != appconf.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	var s *store.Store
	if cfg.ConfigFile != "" {
		s, err = store.Open(cfg.ConfigFile, store.WithLogger(logger))
		if err != nil {
			return nil, errors.Join(err, m.Shutdown(ctx))
		}
	} else {
		s = store.New(models.DefaultAppConfig(), store.WithLogger(logger))
	}

	if err := m.ObserveStopCount(func() int { return s.Stats().StopCount }); err != nil {
		return nil, errors.Join(err, m.Shutdown(ctx))
	}

	var manager *gtfs.Manager
	if cfg.GtfsURL != "" {
		manager, err = gtfs.InitGTFSManager(ctx, gtfs.Config{
			GtfsURL:         cfg.GtfsURL,
			RefreshInterval: cfg.GtfsRefresh,
			Logger:          logger,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("loading GTFS stops: %w", err), m.Shutdown(ctx))
		}
	}

	catalogs := make(map[models.Language]*i18n.Catalog, len(models.SupportedLanguages))
	for _, lang := range models.SupportedLanguages {
		catalogs[lang] = i18n.MustLoad(lang)
	}

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		Store:    s,
		Metrics:  m,
		Catalogs: catalogs,
	}
	app.SetGtfsManager(manager)
	return app, nil
}

// SetGtfsManager replaces the stop directory and rebuilds the validator and
// importer so imports are checked against it. A nil manager disables
// reference checks.
func (app *Application) SetGtfsManager(manager *gtfs.Manager) {
	var opts []validation.Option
	if manager != nil {
		opts = append(opts, validation.WithStopReferences(manager))
	}

	limits := transport.DefaultLimits()
	if app.Config.MaxFileSize > 0 {
		limits.MaxFileSize = app.Config.MaxFileSize
	}

	app.GtfsManager = manager
	app.Validator = validation.New(opts...)
	app.Importer = transport.NewImporter(
		transport.WithValidator(app.Validator),
		transport.WithLimits(limits),
		transport.WithLogger(app.Logger),
		transport.WithRecorder(app.Metrics),
		transport.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
}

// Translator returns the catalog for lang, falling back to the language of
// the live configuration.
func (app *Application) Translator(lang models.Language) i18n.Translator {
	if c, ok := app.Catalogs[lang]; ok {
		return c
	}
	if app.Store != nil {
		if c, ok := app.Catalogs[app.Store.Current().Language]; ok {
			return c
		}
	}
	return app.Catalogs[models.LanguageGerman]
}

// Shutdown stops background work and flushes metrics.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.GtfsManager != nil {
		app.GtfsManager.Shutdown()
	}
	return app.Metrics.Shutdown(ctx)
}
