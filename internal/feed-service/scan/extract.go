package scan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
)

// Extraction é o resultado do scan já validado: nenhum campo fica ausente
type Extraction struct {
	Legs       []plays.Leg `json:"legs"`
	ParlayOdds string      `json:"parlayOdds"`
	Units      string      `json:"units"`
}

// StripFences remove uma cerca markdown de abertura (``` ou ```json, tag sem
// diferenciar maiúsculas) e uma de fechamento, se presentes, e apara espaços.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
		if len(s) >= len("json") && strings.EqualFold(s[:len("json")], "json") {
			s = s[len("json"):]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse interpreta o texto do modelo como JSON e aplica Coerce.
func Parse(text string) (*Extraction, error) {
	cleaned := StripFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnparseable)
	}
	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrUnparseable)
	}
	return Coerce(obj), nil
}

// Coerce aplica defaults campo a campo sobre a saída não confiável do modelo:
// string ausente ou de outro tipo vira "", betType/sport fora do enum viram
// SPREAD/NBA, legs que não são objetos são descartadas.
func Coerce(obj map[string]any) *Extraction {
	out := &Extraction{
		Legs:       []plays.Leg{},
		ParlayOdds: str(obj["parlayOdds"]),
		Units:      str(obj["units"]),
	}

	items, _ := obj["legs"].([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		leg := plays.Leg{
			Team:    str(m["team"]),
			BetType: str(m["betType"]),
			Odds:    str(m["odds"]),
			Matchup: str(m["matchup"]),
			Sport:   str(m["sport"]),
		}
		if !plays.ValidBetType(leg.BetType) {
			leg.BetType = plays.DefaultBetType
		}
		if !plays.ValidSport(leg.Sport) {
			leg.Sport = plays.DefaultSport
		}
		out.Legs = append(out.Legs, leg)
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
