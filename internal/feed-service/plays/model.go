package plays

import (
	"encoding/json"
)

type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPush    Result = "push"
)

func (r Result) Valid() bool {
	switch r {
	case ResultPending, ResultWin, ResultLoss, ResultPush:
		return true
	}
	return false
}

// BetTypes na ordem exibida no formulário do admin
var BetTypes = []string{
	"SPREAD", "MONEYLINE", "OVER/UNDER", "ALTERNATE SPREAD",
	"PLAYER PROP", "FIRST HALF SPREAD", "FIRST HALF ML", "GAME TOTAL",
}

// Sports na ordem exibida no formulário do admin
var Sports = []string{
	"NCAAB", "NBA", "NFL", "NCAAF", "NHL", "MLB", "Soccer", "UFC", "Tennis",
}

const (
	DefaultBetType = "SPREAD"
	DefaultSport   = "NBA"
	DefaultUnits   = "1U"
)

func ValidBetType(s string) bool { return contains(BetTypes, s) }
func ValidSport(s string) bool   { return contains(Sports, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Leg é uma aposta individual dentro do parlay
type Leg struct {
	Team    string `json:"team"`
	BetType string `json:"betType"`
	Odds    string `json:"odds"`
	Matchup string `json:"matchup"`
	Sport   string `json:"sport"`
}

// Play é um parlay publicado no feed
type Play struct {
	ID         string `json:"id"`
	Legs       []Leg  `json:"legs"`
	ParlayOdds string `json:"parlayOdds"`
	Units      string `json:"units"`
	SlipImage  string `json:"slipImage,omitempty"`
	PostedAt   string `json:"postedAt"`
	Result     Result `json:"result"`
}

// storedPlay aceita tanto o formato multi-leg quanto o registro legado de
// aposta simples (team/betType/odds/matchup/sport no topo, sem legs).
type storedPlay struct {
	ID         string `json:"id"`
	Legs       *[]Leg `json:"legs"`
	ParlayOdds string `json:"parlayOdds"`
	Units      string `json:"units"`
	SlipImage  string `json:"slipImage"`
	PostedAt   string `json:"postedAt"`
	Result     Result `json:"result"`
	Team       string `json:"team"`
	BetType    string `json:"betType"`
	Odds       string `json:"odds"`
	Matchup    string `json:"matchup"`
	Sport      string `json:"sport"`
}

// UnmarshalJSON converte registros legados em uma play de uma leg:
// parlayOdds recebe a odd da aposta simples e units assume 1U.
func (p *Play) UnmarshalJSON(b []byte) error {
	var s storedPlay
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*p = Play{
		ID:         s.ID,
		ParlayOdds: s.ParlayOdds,
		Units:      s.Units,
		SlipImage:  s.SlipImage,
		PostedAt:   s.PostedAt,
		Result:     s.Result,
	}
	if !p.Result.Valid() {
		p.Result = ResultPending
	}

	if s.Legs != nil {
		p.Legs = *s.Legs
		return nil
	}

	leg := Leg{Team: s.Team, BetType: s.BetType, Odds: s.Odds, Matchup: s.Matchup, Sport: s.Sport}
	if leg.BetType == "" {
		leg.BetType = DefaultBetType
	}
	if leg.Sport == "" {
		leg.Sport = DefaultSport
	}
	p.Legs = []Leg{leg}
	p.ParlayOdds = s.Odds
	p.Units = DefaultUnits
	return nil
}

// FirstLeg devolve a primeira leg ou uma leg vazia
func (p Play) FirstLeg() Leg {
	if len(p.Legs) == 0 {
		return Leg{}
	}
	return p.Legs[0]
}

// NewPlay é o payload de criação vindo do formulário/API
type NewPlay struct {
	Legs       []Leg  `json:"legs"`
	ParlayOdds string `json:"parlayOdds"`
	Units      string `json:"units"`
	SlipImage  string `json:"slipImage,omitempty"`
}

// Record conta o histórico de resultados (cabeçalho do admin)
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Pushes int `json:"pushes"`
}

func RecordOf(list []Play) Record {
	var r Record
	for _, p := range list {
		switch p.Result {
		case ResultWin:
			r.Wins++
		case ResultLoss:
			r.Losses++
		case ResultPush:
			r.Pushes++
		}
	}
	return r
}
