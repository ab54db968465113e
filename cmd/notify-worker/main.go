package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/notify-worker/consumer"
	"github.com/radieske/parlay-feed/internal/notify-worker/discord"
	"github.com/radieske/parlay-feed/internal/notify-worker/ledger"
	"github.com/radieske/parlay-feed/internal/shared/config"
	"github.com/radieske/parlay-feed/internal/shared/db"
	"github.com/radieske/parlay-feed/internal/shared/kafka"
	"github.com/radieske/parlay-feed/internal/shared/logger"
	"github.com/radieske/parlay-feed/internal/shared/metrics"
	"github.com/radieske/parlay-feed/pkg/contracts/events"
	"github.com/radieske/parlay-feed/pkg/contracts/topics"
)

// logOnly é usado quando não há webhook configurado
type logOnly struct{ log *zap.Logger }

func (l logOnly) Notify(_ context.Context, e events.PlayEvent) error {
	l.log.Info("new parlay (no webhook configured)",
		zap.String("play_id", e.PlayID),
		zap.String("team", e.Team),
		zap.String("odds", e.Odds),
	)
	return nil
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.KafkaBrokers == "" {
		log.Fatal("KAFKA_BROKERS is required")
	}

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	led := ledger.NewPostgres(pg)
	if err := led.EnsureSchema(ctx); err != nil {
		log.Fatal("ledger schema", zap.Error(err))
	}

	var notifier consumer.Notifier = logOnly{log: log}
	if cfg.DiscordWebhookID != "" && cfg.DiscordWebhookTok != "" {
		s, err := discord.New(cfg.DiscordWebhookID, cfg.DiscordWebhookTok)
		if err != nil {
			log.Fatal("discord", zap.Error(err))
		}
		notifier = s
		log.Info("discord webhook configured")
	}

	for _, t := range []string{cfg.TopicPlayEvents, topics.PlayEventsDLQ} {
		if err := kafka.EnsureTopic(ctx, cfg.KafkaBrokers, t); err != nil {
			log.Warn("kafka ensure topic failed", zap.String("topic", t), zap.Error(err))
		}
	}

	// consumer group notify-worker
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicPlayEvents, "notify-worker")
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, topics.PlayEventsDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "notify_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "notify_ledger_writes_total", Help: "eventos gravados no ledger"})
	notified := prometheus.NewCounter(prometheus.CounterOpts{Name: "notify_webhooks_sent_total", Help: "notificações enviadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notify_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, notified, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Ledger:     led,
		Notifier:   notifier,
		DLQ:        dlq,
		OnConsumed: consumed.Inc,
		OnPersist:  persisted.Inc,
		OnNotified: notified.Inc,
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Check{Name: "postgres", Fn: pg.PingContext})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	log.Info("notify-worker started", zap.String("topic", cfg.TopicPlayEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("notify-worker stopped")
}
