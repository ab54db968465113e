package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

const schema = `
	CREATE TABLE IF NOT EXISTS play_events (
	  id          BIGSERIAL PRIMARY KEY,
	  type        TEXT        NOT NULL,
	  play_id     TEXT        NOT NULL,
	  team        TEXT        NOT NULL DEFAULT '',
	  sport       TEXT        NOT NULL DEFAULT '',
	  odds        TEXT        NOT NULL DEFAULT '',
	  units       TEXT        NOT NULL DEFAULT '',
	  leg_count   INT         NOT NULL DEFAULT 0,
	  result      TEXT        NOT NULL DEFAULT '',
	  ts          TIMESTAMPTZ NOT NULL,
	  payload     JSONB       NOT NULL,
	  received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  UNIQUE (type, play_id, ts)
	)
`

// Postgres guarda o histórico de eventos das plays (tabela play_events)
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// EnsureSchema cria a tabela se ainda não existir
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure play_events: %w", err)
	}
	return nil
}

// Insert grava o evento. Reentregas do Kafka (mesmo type/play_id/ts) são
// ignoradas pelo ON CONFLICT; inserted=false nesse caso.
func (p *Postgres) Insert(ctx context.Context, e events.PlayEvent) (inserted bool, err error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("marshal event: %w", err)
	}
	const q = `
		INSERT INTO play_events
		  (type, play_id, team, sport, odds, units, leg_count, result, ts, payload)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (type, play_id, ts) DO NOTHING
	`
	res, err := p.DB.ExecContext(ctx, q,
		e.Type, e.PlayID, e.Team, e.Sport, e.Odds, e.Units, e.LegCount, e.Result, e.Ts, payload,
	)
	if err != nil {
		return false, fmt.Errorf("insert play event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
