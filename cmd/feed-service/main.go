package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/access"
	fhttp "github.com/radieske/parlay-feed/internal/feed-service/http"
	"github.com/radieske/parlay-feed/internal/feed-service/kv"
	"github.com/radieske/parlay-feed/internal/feed-service/live"
	"github.com/radieske/parlay-feed/internal/feed-service/notify"
	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/feed-service/scan"
	"github.com/radieske/parlay-feed/internal/feed-service/view"
	"github.com/radieske/parlay-feed/internal/shared/cache"
	"github.com/radieske/parlay-feed/internal/shared/config"
	"github.com/radieske/parlay-feed/internal/shared/kafka"
	"github.com/radieske/parlay-feed/internal/shared/logger"
	"github.com/radieske/parlay-feed/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Key-value store: REST quando configurado, senão Redis nativo
	var rdb *redis.Client
	var store kv.Store
	if cfg.UseKVRest() {
		store = kv.NewRESTClient(cfg.KVRestURL, cfg.KVRestToken)
		log.Info("kv store: rest", zap.String("url", cfg.KVRestURL))
		// Redis aqui é opcional, só para o pub/sub entre instâncias
		if cfg.RedisAddr != "" {
			if rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr); err != nil {
				log.Warn("redis unavailable, live updates stay in-process", zap.Error(err))
				rdb = nil
			}
		}
	} else {
		if rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr); err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		store = kv.NewRedisStore(rdb)
		log.Info("kv store: redis", zap.String("addr", cfg.RedisAddr))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	repo := plays.NewRepository(store, cfg.PlaysKey)

	// Métricas Prometheus
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_plays_created_total", Help: "plays publicadas"})
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "feed_scans_total", Help: "scans de slip por resultado"}, []string{"outcome"})
	notifyErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "feed_notify_failures_total", Help: "falhas de notificação por tipo de evento"}, []string{"type"})
	prometheus.MustRegister(created, scans, notifyErrors)

	// Notificações: Kafka > HTTP > nenhuma
	var dispatcher notify.Dispatcher = notify.Nop{}
	switch {
	case cfg.KafkaBrokers != "":
		if err := kafka.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.TopicPlayEvents); err != nil {
			log.Warn("kafka ensure topic failed", zap.String("topic", cfg.TopicPlayEvents), zap.Error(err))
		}
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPlayEvents)
		defer writer.Close()
		dispatcher = notify.NewKafkaDispatcher(writer)
		log.Info("notifications via kafka", zap.String("topic", cfg.TopicPlayEvents))
	case cfg.NotifyURL != "":
		dispatcher = notify.NewHTTPDispatcher(cfg.NotifyURL)
		log.Info("notifications via http", zap.String("url", cfg.NotifyURL))
	default:
		log.Warn("no notification target configured")
	}
	notifier := notify.NewNotifier(dispatcher, log)
	notifier.OnError = func(eventType string) { notifyErrors.WithLabelValues(eventType).Inc() }

	// Feed ao vivo: anúncio via Redis pub/sub quando há Redis, senão em processo
	hub := live.NewHub()
	var announcer live.Announcer = hub
	if rdb != nil {
		if err := live.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log); err != nil {
			log.Fatal("redis subscribe failed", zap.Error(err))
		}
		announcer = live.NewRedisAnnouncer(rdb, cfg.RedisPubSubChannel)
	}

	loc, err := time.LoadLocation(cfg.DisplayTZ)
	if err != nil {
		log.Warn("invalid DISPLAY_TZ, using UTC", zap.String("tz", cfg.DisplayTZ), zap.Error(err))
		loc = time.UTC
	}
	renderer, err := view.NewRenderer(loc)
	if err != nil {
		log.Fatal("templates", zap.Error(err))
	}

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin endpoints are disabled")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Warn("ANTHROPIC_API_KEY not set, slip scanning will fail")
	}

	api := fhttp.NewServer(log, fhttp.Deps{
		Plays:        repo,
		Scanner:      scan.New(cfg.AnthropicAPIKey, cfg.AnthropicURL, cfg.ScanModel),
		Events:       notifier,
		Announcer:    announcer,
		Hub:          hub,
		Access:       access.Resolver{AdminToken: cfg.AdminToken},
		Renderer:     renderer,
		PollInterval: cfg.PollInterval,
		Origins:      splitCSV(cfg.CORSOrigins),
	})
	api.OnPlayCreated = created.Inc
	api.OnScan = func(outcome string) { scans.WithLabelValues(outcome).Inc() }

	// métricas/health em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Check{Name: "kv", Fn: store.Ping})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("feed-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	notifier.Wait() // notificações em voo
	log.Info("feed-service stopped")
}

func splitCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
