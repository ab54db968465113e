package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/feed-service/scan"
	"github.com/radieske/parlay-feed/internal/feed-service/view"
)

// listPlays devolve {plays} já com o paywall aplicado
func (s *Server) listPlays(w http.ResponseWriter, r *http.Request) {
	list, err := s.plays.List(r.Context())
	if err != nil {
		s.log.Error("list plays", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load plays")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plays": view.Redact(list, s.access.Resolve(r))})
}

func (s *Server) createPlay(w http.ResponseWriter, r *http.Request) {
	var in plays.NewPlay
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	p, err := s.plays.Create(r.Context(), in)
	if err != nil {
		s.writeRepoError(w, "create play", err)
		return
	}
	s.posted(p)
	writeJSON(w, http.StatusCreated, map[string]any{"play": p})
}

type updateRequest struct {
	ID     string       `json:"id"`
	Result plays.Result `json:"result"`
}

// updateResult é o PATCH literal: grava o resultado pedido
func (s *Server) updateResult(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id and result required")
		return
	}
	p, changed, err := s.plays.UpdateResult(r.Context(), req.ID, req.Result)
	if err != nil {
		s.writeRepoError(w, "update result", err)
		return
	}
	// mesmo resultado: nada mudou, nada a anunciar
	if changed {
		s.events.Graded(p)
		s.mutated()
	}
	writeJSON(w, http.StatusOK, map[string]any{"play": p})
}

type deleteRequest struct {
	ID string `json:"id"`
}

// deletePlay é idempotente: id ausente também responde 200
func (s *Server) deletePlay(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	removed, err := s.plays.Delete(r.Context(), req.ID)
	if err != nil {
		s.writeRepoError(w, "delete play", err)
		return
	}
	if removed {
		s.events.Deleted(req.ID)
		s.mutated()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": removed})
}

func (s *Server) posted(p plays.Play) {
	s.events.Posted(p)
	s.mutated()
	if s.OnPlayCreated != nil {
		s.OnPlayCreated()
	}
}

// writeRepoError mapeia os erros do repositório; o resto vira 500 genérico
func (s *Server) writeRepoError(w http.ResponseWriter, op string, err error) {
	var verr *plays.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid play", "fields": verr.Fields})
	case errors.Is(err, plays.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.log.Error(op, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type scanRequest struct {
	ImageData string `json:"imageData"`
	MediaType string `json:"mediaType"`
}

// scanSlip: 500 sem credencial, 400 sem imagem, 502 quando o upstream falha,
// 500 quando a resposta não é JSON
func (s *Server) scanSlip(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.scanned("bad_input")
		writeError(w, http.StatusBadRequest, "Missing imageData or mediaType")
		return
	}
	ext, err := s.scanner.Scan(r.Context(), req.ImageData, req.MediaType)
	if err != nil {
		s.writeScanError(w, err)
		return
	}
	s.scanned("ok")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": ext})
}

func (s *Server) writeScanError(w http.ResponseWriter, err error) {
	s.scanned(scanOutcome(err))
	var uerr *scan.UpstreamError
	switch {
	case errors.Is(err, scan.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "ANTHROPIC_API_KEY not configured")
	case errors.Is(err, scan.ErrMissingInput):
		writeError(w, http.StatusBadRequest, "Missing imageData or mediaType")
	case errors.As(err, &uerr):
		s.log.Warn("vision api failed", zap.Int("status", uerr.Status))
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "AI scan failed", "details": upstreamDetails(uerr.Body)})
	default:
		s.log.Warn("scan failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to process bet slip")
	}
}

// scanOutcome é o label da métrica de scans
func scanOutcome(err error) string {
	var uerr *scan.UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, scan.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, scan.ErrMissingInput):
		return "bad_input"
	case errors.As(err, &uerr):
		return "upstream_error"
	case errors.Is(err, scan.ErrUnparseable):
		return "unparseable"
	}
	return "failed"
}

func upstreamDetails(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
