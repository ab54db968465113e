package live

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/access"
)

// RenderFunc transforma o snapshot no fragmento HTML que o tier pode ver
type RenderFunc func(tier access.Tier, snap Snapshot) (string, error)

type wireMsg struct {
	State State  `json:"state"`
	HTML  string `json:"html,omitempty"`
}

// Handler atende GET /ws: uma Session por conexão
type Handler struct {
	Hub      *Hub
	Lister   Lister
	Interval time.Duration
	Resolve  func(*http.Request) access.Tier
	Render   RenderFunc
	Log      *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler cria o handler com política de origem customizada (CORS)
func NewHandler(hub *Hub, l Lister, interval time.Duration, resolve func(*http.Request) access.Tier, render RenderFunc, allowOrigin func(*http.Request) bool, log *zap.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Lister:   l,
		Interval: interval,
		Resolve:  resolve,
		Render:   render,
		Log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tier := h.Resolve(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade já respondeu ao cliente
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// o cliente não manda nada; ler serve só para perceber o fechamento
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s := NewSession(h.Lister, h.Interval, h.Log)
	unregister := h.Hub.Register(s)
	defer unregister()

	err = s.Run(ctx, func(snap Snapshot) error {
		html, err := h.Render(tier, snap)
		if err != nil {
			return err
		}
		msg := wireMsg{State: snap.State, HTML: html}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(msg)
	})
	if err != nil && ctx.Err() == nil {
		h.Log.Debug("live session ended", zap.Error(err))
	}
}
