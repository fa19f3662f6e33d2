package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
	"github.com/ironpinguin/departure-monitor-sub000/internal/appconf"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/metrics"
	"github.com/ironpinguin/departure-monitor-sub000/internal/restapi"
	"github.com/ironpinguin/departure-monitor-sub000/internal/webui"
)

// parseConfig reads the command-line flags into an appconf.Config.
func parseConfig(args []string, output io.Writer) (appconf.Config, error) {
	cfg := appconf.Default()
	var env, apiKeys, exporter string

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.StringVar(&cfg.GtfsURL, "gtfs-url", "", "URL or path of a static GTFS zip used to check stop references")
	fs.DurationVar(&cfg.GtfsRefresh, "gtfs-refresh", 24*time.Hour, "How often a remote GTFS feed is reloaded (0 disables)")
	fs.StringVar(&cfg.ConfigFile, "config-file", "", "Path of the persisted configuration (empty keeps it in memory)")
	fs.Int64Var(&cfg.MaxFileSize, "max-file-size", cfg.MaxFileSize, "Maximum import file size in bytes")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second per API key (negative disables)")
	fs.StringVar(&exporter, "metrics", string(metrics.ExporterNone), "Metrics exporter (none|stdout|otlp-http)")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", "", "OTLP HTTP endpoint, host:port")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.ApiKeys = appconf.ParseAPIKeys(apiKeys)
	cfg.MaxBodySize = cfg.MaxFileSize + 64<<10

	var err error
	if cfg.MetricsExporter, err = metrics.ParseExporterType(exporter); err != nil {
		return appconf.Config{}, err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return appconf.Config{}, err
	}
	if cfg.MaxFileSize <= 0 {
		return appconf.Config{}, fmt.Errorf("max-file-size must be positive, got %d", cfg.MaxFileSize)
	}
	return cfg, nil
}

// newServer builds the HTTP server serving the API and the debug page.
func newServer(api *restapi.RestAPI) *http.Server {
	router := httprouter.New()
	api.SetRoutes(router)
	if api.Config.Env != appconf.Production {
		ui := &webui.WebUI{Application: api.Application}
		ui.SetWebUIRoutes(router)
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		Handler:      api.Handler(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		ErrorLog:     slog.NewLogLogger(api.Logger.Handler(), slog.LevelError),
	}
}

func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger) error {
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	api := restapi.NewRestAPI(application)
	srv := newServer(api)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = errors.Join(err, srv.Shutdown(shutdownCtx))
	api.Close()
	err = errors.Join(err, application.Shutdown(shutdownCtx))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewStructuredLogger(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err, slog.String("component", "main"))
		stop()
		os.Exit(1)
	}
}
