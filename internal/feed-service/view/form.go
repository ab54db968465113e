package view

import (
	"errors"
	"net/url"
	"strings"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/feed-service/scan"
)

const (
	minFormLegs = 2

	ScanFailedMessage = "Couldn't read that slip. Fill in manually."
)

// Form é o estado editável do formulário de autoria do admin
type Form struct {
	Legs       []plays.Leg
	ParlayOdds string
	Units      string
	SlipImage  string // data URI do slip enviado, exibido como preview
	ScanError  string
	Errors     []string
}

func EmptyLeg() plays.Leg {
	return plays.Leg{BetType: plays.DefaultBetType, Sport: plays.DefaultSport}
}

// NewForm começa com duas legs vazias e 1U
func NewForm() Form {
	return Form{Legs: []plays.Leg{EmptyLeg(), EmptyLeg()}, Units: plays.DefaultUnits}
}

func (f *Form) AddLeg() { f.Legs = append(f.Legs, EmptyLeg()) }

// RemoveLeg nunca deixa o formulário com menos de duas legs
func (f *Form) RemoveLeg(i int) {
	if len(f.Legs) <= minFormLegs || i < 0 || i >= len(f.Legs) {
		return
	}
	f.Legs = append(f.Legs[:i], f.Legs[i+1:]...)
}

// CanPost: toda leg com team e matchup, e odd do parlay preenchida
func (f Form) CanPost() bool {
	if len(f.Legs) == 0 || strings.TrimSpace(f.ParlayOdds) == "" {
		return false
	}
	for _, l := range f.Legs {
		if strings.TrimSpace(l.Team) == "" || strings.TrimSpace(l.Matchup) == "" {
			return false
		}
	}
	return true
}

// MergeScan aplica uma extração já validada: legs só são trocadas quando o
// scan encontrou alguma; odds e units só quando vieram preenchidas.
func (f *Form) MergeScan(e *scan.Extraction) {
	if e == nil {
		return
	}
	if len(e.Legs) > 0 {
		f.Legs = append([]plays.Leg(nil), e.Legs...)
	}
	if e.ParlayOdds != "" {
		f.ParlayOdds = e.ParlayOdds
	}
	if e.Units != "" {
		f.Units = e.Units
	}
}

// ScanFailed marca a falha do scan sem bloquear a edição manual
func (f *Form) ScanFailed() { f.ScanError = ScanFailedMessage }

func (f Form) NewPlay() plays.NewPlay {
	return plays.NewPlay{
		Legs:       append([]plays.Leg(nil), f.Legs...),
		ParlayOdds: f.ParlayOdds,
		Units:      f.Units,
		SlipImage:  f.SlipImage,
	}
}

// SetValidation copia os campos rejeitados pelo repositório para o formulário
func (f *Form) SetValidation(err error) bool {
	var verr *plays.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	f.Errors = verr.Fields
	return true
}

// FormFromValues reconstrói o formulário a partir dos campos repetidos
// (team, betType, odds, matchup, sport) na ordem em que aparecem.
func FormFromValues(v url.Values) Form {
	n := 0
	for _, k := range []string{"team", "betType", "odds", "matchup", "sport"} {
		if l := len(v[k]); l > n {
			n = l
		}
	}
	if n == 0 {
		f := NewForm()
		f.ParlayOdds = v.Get("parlayOdds")
		if u := v.Get("units"); u != "" {
			f.Units = u
		}
		f.SlipImage = v.Get("slipImage")
		return f
	}

	at := func(k string, i int) string {
		if i < len(v[k]) {
			return v[k][i]
		}
		return ""
	}
	f := Form{
		Legs:       make([]plays.Leg, n),
		ParlayOdds: v.Get("parlayOdds"),
		Units:      v.Get("units"),
		SlipImage:  v.Get("slipImage"),
	}
	for i := 0; i < n; i++ {
		f.Legs[i] = plays.Leg{
			Team:    at("team", i),
			BetType: at("betType", i),
			Odds:    at("odds", i),
			Matchup: at("matchup", i),
			Sport:   at("sport", i),
		}
		if f.Legs[i].BetType == "" {
			f.Legs[i].BetType = plays.DefaultBetType
		}
		if f.Legs[i].Sport == "" {
			f.Legs[i].Sport = plays.DefaultSport
		}
	}
	return f
}
