package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	scansim "github.com/radieske/parlay-feed/internal/scan-simulator"
	"github.com/radieske/parlay-feed/internal/shared/config"
	"github.com/radieske/parlay-feed/internal/shared/logger"
	"github.com/radieske/parlay-feed/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_sim_requests_total",
		Help: "Requisições simuladas por resultado",
	}, []string{"outcome"})
	prometheus.MustRegister(requests)

	h := &scansim.Handler{
		Log:       log,
		FailEvery: int64(cfg.ScanSimFailEvery),
		OnRequest: func(o string) { requests.WithLabelValues(o).Inc() },
	}

	// ==== MUX PÚBLICO: mesmo caminho da Messages API
	mux := http.NewServeMux()
	mux.Handle("/v1/messages", h)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("scan simulator running",
			zap.String("addr", srv.Addr),
			zap.String("paths", "/v1/messages"),
			zap.Int("fail_every", cfg.ScanSimFailEvery),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
