package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/parlay-feed/internal/shared/kafka"
	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

// Dispatcher entrega um PlayEvent para fora do processo
type Dispatcher interface {
	Dispatch(ctx context.Context, e events.PlayEvent) error
}

// KafkaDispatcher publica todos os eventos no tópico de plays; a chave é o playId
type KafkaDispatcher struct {
	Writer *kafka.Writer
}

func NewKafkaDispatcher(w *kafka.Writer) *KafkaDispatcher {
	return &KafkaDispatcher{Writer: w}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, e events.PlayEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, d.Writer, e.PlayID, b)
}

// HTTPDispatcher faz POST {team, odds, sport} no endpoint de notificação.
// Só eventos play_posted geram chamada.
type HTTPDispatcher struct {
	URL  string
	HTTP *http.Client
}

func NewHTTPDispatcher(url string) *HTTPDispatcher {
	return &HTTPDispatcher{URL: url, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

type httpPayload struct {
	Team  string `json:"team"`
	Odds  string `json:"odds"`
	Sport string `json:"sport"`
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, e events.PlayEvent) error {
	if e.Type != events.PlayPosted {
		return nil
	}
	body, _ := json.Marshal(httpPayload{Team: e.Team, Odds: e.Odds, Sport: e.Sport})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := d.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("notify http %d", res.StatusCode)
	}
	return nil
}

// Nop descarta os eventos (nenhum transporte configurado)
type Nop struct{}

func (Nop) Dispatch(context.Context, events.PlayEvent) error { return nil }
