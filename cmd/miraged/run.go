package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mirageim/mirage-go"
	"github.com/mirageim/mirage-go/internal/config"
	"github.com/mirageim/mirage-go/pkg/event"
)

func runCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sign in and keep the session online",
		Long: `Run loads the configuration, signs the account in, and blocks
until interrupted. Received events are logged; /healthz, /status and
/metrics are served on the configured listen address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to miraged.json")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	credential, err := cfg.Credential()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := mirage.CreateClient(cfg.AccountID,
		mirage.WithLogger(logger),
		mirage.WithPlatform(mirage.Platform(cfg.Platform)),
		mirage.WithDataDir(cfg.DataDir),
		mirage.WithRemoteAddr(cfg.RemoteAddr),
		mirage.WithReconnInterval(cfg.ReconnInterval),
		mirage.WithKickoffCounter(cfg.KickoffCounter),
		mirage.WithMetrics(registry),
	)
	if err != nil {
		return err
	}

	logEvents(client, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r := client.Login(ctx, credential); !r.OK() {
		if r.Retcode == mirage.RetAsync {
			return errors.New("login requires a challenge; answer it interactively and restart")
		}
		return fmt.Errorf("login: %s (%s)", r.Status, r.Error.Message)
	}
	logger.Info("signed in", "account", cfg.AccountID)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: newRouter(client, registry),
	}
	go func() {
		logger.Info("debug listener up", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("debug listener failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	client.Logout(shutdownCtx)
	return nil
}

func newRouter(client *mirage.Client, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(client.GetStatus())
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// logEvents subscribes to every category and logs what arrives.
func logEvents(client *mirage.Client, logger *slog.Logger) {
	client.On("message", func(ev *event.Event) {
		logger.Info("message",
			"name", ev.Name(),
			"sender", ev.UserID,
			"group", ev.GroupID,
			"text", ev.Message,
		)
	})
	client.On("notice", func(ev *event.Event) {
		logger.Info("notice", "name", ev.Name(), "user", ev.UserID, "group", ev.GroupID)
	})
	client.On("request", func(ev *event.Event) {
		logger.Info("request", "name", ev.Name(), "user", ev.UserID, "flag", ev.Flag)
	})
	client.On("system", func(ev *event.Event) {
		logger.Info("system", "name", ev.Name())
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
