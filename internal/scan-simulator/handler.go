package scansim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/scan-simulator/dto"
)

// Slip é uma extração pronta devolvida pelo simulador
type Slip struct {
	Legs       []plays.Leg `json:"legs"`
	ParlayOdds string      `json:"parlayOdds"`
	Units      string      `json:"units"`
}

// Catálogo fixo de slips simulados
var Catalog = []Slip{
	{
		Legs: []plays.Leg{
			{Team: "Duke -9.5", BetType: "SPREAD", Odds: "-110", Matchup: "UNC vs DUKE", Sport: "NCAAB"},
			{Team: "Jalen Johnson Over 8.5 Rebounds", BetType: "PLAYER PROP", Odds: "-192", Matchup: "ATL vs WAS", Sport: "NBA"},
		},
		ParlayOdds: "+264",
		Units:      "1U",
	},
	{
		Legs: []plays.Leg{
			{Team: "Chiefs ML", BetType: "MONEYLINE", Odds: "-150", Matchup: "BUF vs KC", Sport: "NFL"},
			{Team: "Over 47.5", BetType: "GAME TOTAL", Odds: "-110", Matchup: "BUF vs KC", Sport: "NFL"},
			{Team: "Eagles -3", BetType: "SPREAD", Odds: "-115", Matchup: "DAL vs PHI", Sport: "NFL"},
		},
		ParlayOdds: "+596",
		Units:      "2U",
	},
}

// Handler imita POST /v1/messages: responde com um slip do catálogo em JSON
// cercado por fence markdown, como o modelo real costuma fazer.
// FailEvery > 0 faz a n-ésima requisição devolver texto que não é JSON.
type Handler struct {
	Log       *zap.Logger
	FailEvery int64

	OnRequest func(outcome string) // métricas

	n atomic.Int64
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("x-api-key") == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication_error", "x-api-key header is required")
		return
	}

	var req dto.MessagesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request_error", "bad json")
		return
	}
	if !hasImage(req) {
		h.writeError(w, http.StatusBadRequest, "invalid_request_error", "an image block is required")
		return
	}

	n := h.n.Add(1)
	text := "Sorry, I can't make out the slip in this image."
	outcome := "unreadable"
	if h.FailEvery <= 0 || n%h.FailEvery != 0 {
		b, _ := json.Marshal(Catalog[rand.Intn(len(Catalog))])
		text = "```json\n" + string(b) + "\n```"
		outcome = "ok"
	}
	h.count(outcome)

	resp := dto.MessagesResp{
		ID:         fmt.Sprintf("msg_sim_%d", n),
		Type:       "message",
		Role:       "assistant",
		Model:      req.Model,
		Content:    []dto.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.Log.Debug("scan simulated", zap.Int64("request", n), zap.String("outcome", outcome))
}

func hasImage(req dto.MessagesReq) bool {
	for _, m := range req.Messages {
		for _, c := range m.Content {
			if c.Type == "image" && c.Source != nil && c.Source.Data != "" {
				return true
			}
		}
	}
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, status int, typ, msg string) {
	h.count(typ)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResp{Type: "error", Error: dto.ErrorDetail{Type: typ, Message: msg}})
}

func (h *Handler) count(outcome string) {
	if h.OnRequest != nil {
		h.OnRequest(outcome)
	}
}
