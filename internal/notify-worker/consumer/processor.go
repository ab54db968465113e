package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Ledger interface {
	Insert(ctx context.Context, e events.PlayEvent) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, e events.PlayEvent) error
}

// Processor consome play_events: grava todo evento no ledger e notifica as
// plays novas. Mensagens inválidas ou que o ledger recusou vão para a DLQ.
type Processor struct {
	Log      *zap.Logger
	Reader   MessageReader
	Ledger   Ledger
	Notifier Notifier
	DLQ      MessageWriter // opcional

	OnConsumed func()       // métricas (counter++)
	OnNotified func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de consumo; retorna ctx.Err() quando o contexto é cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		p.handle(ctx, m)

		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.Error(err), zap.Int64("offset", m.Offset))
			p.fail("commit")
		}
	}
}

func (p *Processor) handle(ctx context.Context, m kafka.Message) {
	var ev events.PlayEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.Type == "" || ev.PlayID == "" {
		p.Log.Warn("invalid play event", zap.Error(err), zap.ByteString("key", m.Key))
		p.fail("decode")
		p.deadLetter(ctx, m, "decode")
		return
	}

	// o ledger deduplica reentregas, então ele decide se a notificação sai
	inserted, err := p.Ledger.Insert(ctx, ev)
	if err != nil {
		p.Log.Warn("ledger insert failed", zap.String("play_id", ev.PlayID), zap.Error(err))
		p.fail("ledger")
		p.deadLetter(ctx, m, "ledger")
		return
	}
	if !inserted {
		p.Log.Debug("duplicate play event skipped", zap.String("type", ev.Type), zap.String("play_id", ev.PlayID))
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}

	if ev.Type != events.PlayPosted {
		return
	}
	// best-effort: sem retry, só log e métrica
	if err := p.Notifier.Notify(ctx, ev); err != nil {
		p.Log.Warn("notify failed", zap.String("play_id", ev.PlayID), zap.Error(err))
		p.fail("notify")
		return
	}
	if p.OnNotified != nil {
		p.OnNotified()
	}
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, stage string) {
	if p.DLQ == nil {
		return
	}
	err := p.DLQ.WriteMessages(ctx, kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: "stage", Value: []byte(stage)},
			{Key: "source", Value: []byte(fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset))},
		},
	})
	if err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
