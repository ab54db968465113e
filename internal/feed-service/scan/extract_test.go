package scan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/radieske/parlay-feed/internal/feed-service/plays"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"legs\":[]}\n```", `{"legs":[]}`},
		{"```\n{\"legs\":[]}\n```", `{"legs":[]}`},
		{"  {\"legs\":[]}  ", `{"legs":[]}`},
		{"```json{\"a\":1}```", `{"a":1}`},
		{"{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"legs\":[]}\n```", `{"legs":[]}`},
		{"```Json {\"a\":1} ```", `{"a":1}`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParseUppercaseFenceTag(t *testing.T) {
	got, err := Parse("```JSON\n{\"parlayOdds\":\"+450\",\"legs\":[]}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ParlayOdds != "+450" {
		t.Errorf("expected +450, got %q", got.ParlayOdds)
	}
}

func TestParseFencedEmptyLegs(t *testing.T) {
	got, err := Parse("```json\n{\"legs\":[]}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Legs == nil || len(got.Legs) != 0 {
		t.Errorf("expected empty legs, got %#v", got.Legs)
	}
	if got.ParlayOdds != "" || got.Units != "" {
		t.Errorf("expected empty defaults, got %+v", got)
	}
}

func TestParseFullExtraction(t *testing.T) {
	text := `{"legs":[
		{"team":"Duke -9.5","betType":"SPREAD","odds":"-110","matchup":"UNC vs Duke","sport":"NCAAB"},
		{"team":"Jalen Johnson Over 8.5 Rebounds","betType":"PLAYER PROP","odds":"","matchup":"ATL vs WAS","sport":"NBA"}
	],"parlayOdds":"+450","units":"2U"}`

	got, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := &Extraction{
		Legs: []plays.Leg{
			{Team: "Duke -9.5", BetType: "SPREAD", Odds: "-110", Matchup: "UNC vs Duke", Sport: "NCAAB"},
			{Team: "Jalen Johnson Over 8.5 Rebounds", BetType: "PLAYER PROP", Odds: "", Matchup: "ATL vs WAS", Sport: "NBA"},
		},
		ParlayOdds: "+450",
		Units:      "2U",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestParseCoercesUntrustedShapes(t *testing.T) {
	text := `{"legs":[
		{"team":42,"betType":"TEASER","odds":-192,"sport":"Cricket"},
		"not an object",
		{"team":"Over 220.5","betType":"GAME TOTAL","matchup":"LAL vs DEN","sport":"NBA"}
	],"parlayOdds":450,"units":null}`

	got, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.Legs) != 2 {
		t.Fatalf("expected non-object leg dropped, got %d legs", len(got.Legs))
	}
	wantFirst := plays.Leg{Team: "", BetType: "SPREAD", Odds: "", Matchup: "", Sport: "NBA"}
	if got.Legs[0] != wantFirst {
		t.Errorf("expected %+v, got %+v", wantFirst, got.Legs[0])
	}
	if got.Legs[1].BetType != "GAME TOTAL" {
		t.Errorf("valid bet type should survive, got %q", got.Legs[1].BetType)
	}
	if got.ParlayOdds != "" || got.Units != "" {
		t.Errorf("wrong-shaped top-level fields should default, got %+v", got)
	}
}

func TestParseLegsWrongShape(t *testing.T) {
	got, err := Parse(`{"legs":{"team":"x"},"parlayOdds":"+100"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.Legs) != 0 || got.ParlayOdds != "+100" {
		t.Errorf("unexpected %+v", got)
	}
}

func TestParseFailures(t *testing.T) {
	for _, text := range []string{
		"",
		"```json\n```",
		"I could not read this slip, sorry!",
		`["legs"]`,
		`{"legs":[`,
	} {
		if _, err := Parse(text); !errors.Is(err, ErrUnparseable) {
			t.Errorf("Parse(%q): expected ErrUnparseable, got %v", text, err)
		}
	}
}
