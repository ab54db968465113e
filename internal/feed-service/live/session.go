package live

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
)

type Lister interface {
	List(ctx context.Context) ([]plays.Play, error)
}

type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
)

// Snapshot é o estado do feed entregue a uma conexão
type Snapshot struct {
	State State
	Plays []plays.Play
}

// Session mantém o feed de uma conexão atualizado: carrega ao abrir, a cada
// intervalo e sempre que uma mutação é anunciada (Refresh).
type Session struct {
	lister   Lister
	interval time.Duration
	log      *zap.Logger

	nudge chan struct{}
	last  []plays.Play
}

func NewSession(l Lister, interval time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		lister:   l,
		interval: interval,
		log:      log,
		nudge:    make(chan struct{}, 1),
		last:     []plays.Play{},
	}
}

// Refresh pede uma recarga; pedidos acumulados viram uma só
func (s *Session) Refresh() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// Run emite loading e depois loaded, e segue recarregando até ctx ser
// cancelado (nil) ou emit falhar (erro da conexão). O ticker morre junto.
func (s *Session) Run(ctx context.Context, emit func(Snapshot) error) error {
	if err := emit(Snapshot{State: StateLoading}); err != nil {
		return err
	}
	if err := emit(s.load(ctx)); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-s.nudge:
		}
		if err := emit(s.load(ctx)); err != nil {
			return err
		}
	}
}

// load mantém a última lista boa quando o store falha
func (s *Session) load(ctx context.Context) Snapshot {
	list, err := s.lister.List(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("live feed refresh failed", zap.Error(err))
		}
		return Snapshot{State: StateLoaded, Plays: s.last}
	}
	s.last = list
	return Snapshot{State: StateLoaded, Plays: list}
}
