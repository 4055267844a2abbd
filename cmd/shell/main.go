package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventfeedback/internal/backend"
	"eventfeedback/internal/config"
	"eventfeedback/internal/downloads"
	"eventfeedback/internal/feedback"
	"eventfeedback/internal/logging"
	"eventfeedback/internal/scheduler"
	"eventfeedback/internal/screens"
	transporthttp "eventfeedback/internal/transport/http"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Init(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := backend.NewClient(
		backend.WithBaseURL(cfg.BackendURL),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		backend.WithMetrics(backend.NewMetrics(reg)),
	)

	dir, err := downloads.NewDir(cfg.DownloadDir, logger)
	if err != nil {
		logger.Error("init downloads", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inbox := &screens.Inbox{}
	notifier := screens.LogNotifier{Logger: logger, Next: inbox}

	dashboard := screens.NewDashboard(client, notifier, logger.With(slog.String("screen", "dashboard")))
	sc := transporthttp.Screens{
		Clubs:     screens.NewClubs(cfg.Clubs),
		Dashboard: dashboard,
		Reports:   screens.NewReports(client, screens.ContextConfirmer{}, notifier, logger.With(slog.String("screen", "reports"))),
		Upload: screens.NewUpload(client, dir, notifier, logger.With(slog.String("screen", "upload")),
			screens.WithDownloadName(cfg.DownloadName)),
		Inbox: inbox,
	}

	sched := scheduler.New(logger)
	refresh := scheduler.NewRefreshJob("dashboard", scheduler.RefreshFunc(func(ctx context.Context) bool {
		_, ok := dashboard.Refresh(ctx)
		return ok
	}), cfg.RequestTimeout, logger)
	if err := sched.Add(cfg.RefreshCron, refresh); err != nil {
		logger.Error("init scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sched.Start()

	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	server := transporthttp.NewServer(sc, feedback.NewSummaryExporter(), metrics, cfg.RequestTimeout, logger)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      transporthttp.WithLogging(logger, transporthttp.WithCORS(transporthttp.WithMetrics(reg, server.Routes()))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("feedback shell listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("backend", client.BaseURL()),
			slog.String("downloads", dir.Path()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("signal received, shutting down", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop(ctx)
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
