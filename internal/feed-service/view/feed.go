package view

import (
	"time"

	"github.com/radieske/parlay-feed/internal/feed-service/access"
	"github.com/radieske/parlay-feed/internal/feed-service/plays"
)

// Card é o que um visitante recebe de uma play. Locked=true significa que
// o visitante não tem acesso: só id, horário e número de legs são expostos.
type Card struct {
	ID         string       `json:"id"`
	PostedAt   string       `json:"postedAt"`
	LegCount   int          `json:"legCount"`
	Locked     bool         `json:"locked"`
	Result     plays.Result `json:"result,omitempty"`
	Legs       []plays.Leg  `json:"legs,omitempty"`
	ParlayOdds string       `json:"parlayOdds,omitempty"`
	Units      string       `json:"units,omitempty"`
	SlipImage  string       `json:"slipImage,omitempty"`
}

// Feed é o estado da tela para um tier de acesso
type Feed struct {
	Tier    access.Tier   `json:"-"`
	Admin   bool          `json:"admin"`
	Pending []Card        `json:"pending"`
	Graded  []Card        `json:"graded,omitempty"` // só admin
	Record  *plays.Record `json:"record,omitempty"` // só admin
}

// Build separa pendentes de graduadas e aplica o paywall: quem não é
// premium/admin recebe cards bloqueados para as pendentes e nada das graduadas.
func Build(list []plays.Play, tier access.Tier) Feed {
	f := Feed{Tier: tier, Admin: tier == access.Admin, Pending: []Card{}}
	for _, p := range list {
		if p.Result == plays.ResultPending {
			if tier.Elevated() {
				f.Pending = append(f.Pending, fullCard(p))
			} else {
				f.Pending = append(f.Pending, lockedCard(p))
			}
			continue
		}
		if f.Admin {
			f.Graded = append(f.Graded, fullCard(p))
		}
	}
	if f.Admin {
		rec := plays.RecordOf(list)
		f.Record = &rec
	}
	return f
}

// Redact devolve a visão da API para o tier: lista completa só para admin;
// os demais recebem os mesmos cards de pendentes que o feed HTML mostra.
func Redact(list []plays.Play, tier access.Tier) any {
	if tier == access.Admin {
		return list
	}
	return Build(list, tier).Pending
}

func fullCard(p plays.Play) Card {
	return Card{
		ID:         p.ID,
		PostedAt:   p.PostedAt,
		LegCount:   len(p.Legs),
		Result:     p.Result,
		Legs:       p.Legs,
		ParlayOdds: p.ParlayOdds,
		Units:      p.Units,
		SlipImage:  p.SlipImage,
	}
}

func lockedCard(p plays.Play) Card {
	return Card{ID: p.ID, PostedAt: p.PostedAt, LegCount: len(p.Legs), Locked: true}
}

// DisplayTime formata o postedAt RFC 3339; valores legados são mostrados como vieram
func DisplayTime(postedAt string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, postedAt)
	if err != nil {
		return postedAt
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2, 3:04 PM")
}
