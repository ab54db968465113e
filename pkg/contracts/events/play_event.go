package events

import "time"

// Tipos de PlayEvent
const (
	PlayPosted  = "play_posted"
	PlayGraded  = "play_graded"
	PlayDeleted = "play_deleted"
)

// PlayEvent é publicado pelo feed-service a cada mutação da coleção de plays.
// Team/Sport referem-se à primeira leg; Odds é a odd do parlay.
type PlayEvent struct {
	Type     string    `json:"type"`
	PlayID   string    `json:"playId"`
	Team     string    `json:"team,omitempty"`
	Sport    string    `json:"sport,omitempty"`
	Odds     string    `json:"odds,omitempty"`
	Units    string    `json:"units,omitempty"`
	LegCount int       `json:"legCount,omitempty"`
	Result   string    `json:"result,omitempty"`
	Ts       time.Time `json:"ts"`
}
