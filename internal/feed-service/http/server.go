package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/access"
	"github.com/radieske/parlay-feed/internal/feed-service/live"
	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/feed-service/scan"
	"github.com/radieske/parlay-feed/internal/feed-service/view"
)

// PlayStore é o que o servidor usa do repositório de plays
type PlayStore interface {
	List(ctx context.Context) ([]plays.Play, error)
	Create(ctx context.Context, in plays.NewPlay) (plays.Play, error)
	UpdateResult(ctx context.Context, id string, res plays.Result) (plays.Play, bool, error)
	ToggleResult(ctx context.Context, id string, res plays.Result) (plays.Play, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Scanner interface {
	Scan(ctx context.Context, imageData, mediaType string) (*scan.Extraction, error)
}

// Events recebe as mutações bem-sucedidas (notificações best-effort)
type Events interface {
	Posted(p plays.Play)
	Graded(p plays.Play)
	Deleted(id string)
}

type Deps struct {
	Plays        PlayStore
	Scanner      Scanner
	Events       Events
	Announcer    live.Announcer
	Hub          *live.Hub
	Access       access.Resolver
	Renderer     *view.Renderer
	PollInterval time.Duration
	Origins      []string // CORS; vazio = "*"
}

// Server expõe a API JSON, as páginas HTML e o feed ao vivo
type Server struct {
	log      *zap.Logger
	plays    PlayStore
	scanner  Scanner
	events   Events
	announce live.Announcer
	access   access.Resolver
	render   *view.Renderer
	live     http.Handler
	origins  []string

	// métricas (opcionais)
	OnPlayCreated func()
	OnScan        func(outcome string)
}

func NewServer(log *zap.Logger, d Deps) *Server {
	s := &Server{
		log:      log,
		plays:    d.Plays,
		scanner:  d.Scanner,
		events:   d.Events,
		announce: d.Announcer,
		access:   d.Access,
		render:   d.Renderer,
		origins:  d.Origins,
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.live = live.NewHandler(d.Hub, d.Plays, d.PollInterval, s.access.Resolve, s.renderPlays, s.allowOrigin, log)
	return s
}

// Router retorna o roteador HTTP com CORS aplicado
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.feedPage)
	r.Get("/ws", s.live.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/plays", s.listPlays)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/plays", s.createPlay)
			r.Patch("/plays", s.updateResult)
			r.Delete("/plays", s.deletePlay)
			r.Post("/scan", s.scanSlip)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.adminLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/plays", s.adminSubmit)
			r.Post("/scan", s.adminScan)
			r.Post("/plays/{id}/grade", s.adminGrade)
			r.Post("/plays/{id}/delete", s.adminDelete)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", access.MemberTierHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *Server) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// mutated avisa as sessões ao vivo; falha só é logada
func (s *Server) mutated() {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := s.announce.Announce(ctx); err != nil {
		s.log.Warn("plays change announce failed", zap.Error(err))
	}
}

func (s *Server) scanned(outcome string) {
	if s.OnScan != nil {
		s.OnScan(outcome)
	}
}

func (s *Server) renderPlays(tier access.Tier, snap live.Snapshot) (string, error) {
	page := view.Page{
		Feed:    view.Build(snap.Plays, tier),
		Loading: snap.State == live.StateLoading,
	}
	var buf bytes.Buffer
	if err := s.render.Plays(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
