package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page é o que a página principal precisa para renderizar
type Page struct {
	Feed    Feed
	Form    *Form // nil para quem não é admin
	Loading bool
}

type cardData struct {
	Card  Card
	Admin bool
}

// slipImageURL só libera data URIs de imagem e URLs https para o src
func slipImageURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") {
		return template.URL(s)
	}
	return ""
}

type Renderer struct {
	t *template.Template
}

var sportIcons = map[string]string{
	"NCAAB": "🏀", "NBA": "🏀", "NFL": "🏈", "NCAAF": "🏈", "NHL": "🏒",
	"MLB": "⚾", "Soccer": "⚽", "UFC": "🥊", "Tennis": "🎾",
}

// NewRenderer carrega os templates embutidos; loc define o fuso dos horários
func NewRenderer(loc *time.Location) (*Renderer, error) {
	funcs := template.FuncMap{
		"when":      func(s string) string { return DisplayTime(s, loc) },
		"sportIcon": func(s string) string { return sportIcons[s] },
		"inc":       func(i int) int { return i + 1 },
		"betTypes":  func() []string { return plays.BetTypes },
		"sports":    func() []string { return plays.Sports },
		"results": func() []plays.Result {
			return []plays.Result{plays.ResultWin, plays.ResultLoss, plays.ResultPush}
		},
		"cardData":  func(c Card, admin bool) cardData { return cardData{Card: c, Admin: admin} },
		"slipImage": slipImageURL,
	}
	t, err := template.New("feed").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// Page renderiza o documento completo
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.t.ExecuteTemplate(w, "page.html", p)
}

// Plays renderiza só a seção do feed (usada nas atualizações ao vivo)
func (r *Renderer) Plays(w io.Writer, p Page) error {
	return r.t.ExecuteTemplate(w, "plays", p)
}
