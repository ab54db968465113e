package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

// Notifier dispara eventos em background (best-effort): falhas são apenas
// logadas e contadas, nunca devolvidas para quem fez a mutação.
type Notifier struct {
	Dispatcher Dispatcher
	Log        *zap.Logger
	Timeout    time.Duration

	OnError func(eventType string) // métricas

	now func() time.Time
	wg  sync.WaitGroup
}

func NewNotifier(d Dispatcher, log *zap.Logger) *Notifier {
	return &Notifier{Dispatcher: d, Log: log, Timeout: 5 * time.Second, now: time.Now}
}

// PostedEvent descreve uma play nova pela primeira leg e pela odd do parlay
func PostedEvent(p plays.Play, ts time.Time) events.PlayEvent {
	leg := p.FirstLeg()
	team, sport := leg.Team, leg.Sport
	if team == "" {
		team = "Parlay"
	}
	if sport == "" {
		sport = plays.DefaultSport
	}
	return events.PlayEvent{
		Type:     events.PlayPosted,
		PlayID:   p.ID,
		Team:     team,
		Sport:    sport,
		Odds:     p.ParlayOdds,
		Units:    p.Units,
		LegCount: len(p.Legs),
		Ts:       ts,
	}
}

func (n *Notifier) Posted(p plays.Play) {
	n.fire(PostedEvent(p, n.now()))
}

func (n *Notifier) Graded(p plays.Play) {
	n.fire(events.PlayEvent{
		Type:   events.PlayGraded,
		PlayID: p.ID,
		Odds:   p.ParlayOdds,
		Result: string(p.Result),
		Ts:     n.now(),
	})
}

func (n *Notifier) Deleted(id string) {
	n.fire(events.PlayEvent{Type: events.PlayDeleted, PlayID: id, Ts: n.now()})
}

// Wait bloqueia até todos os disparos em andamento terminarem (shutdown/testes)
func (n *Notifier) Wait() { n.wg.Wait() }

func (n *Notifier) fire(e events.PlayEvent) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		// contexto próprio: o da requisição HTTP morre quando a resposta sai
		ctx, cancel := context.WithTimeout(context.Background(), n.Timeout)
		defer cancel()

		if err := n.Dispatcher.Dispatch(ctx, e); err != nil {
			n.Log.Warn("notification dispatch failed",
				zap.String("type", e.Type),
				zap.String("play_id", e.PlayID),
				zap.Error(err),
			)
			if n.OnError != nil {
				n.OnError(e.Type)
			}
			return
		}
		n.Log.Debug("notification dispatched", zap.String("type", e.Type), zap.String("play_id", e.PlayID))
	}()
}
