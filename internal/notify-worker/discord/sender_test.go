package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

type fakeExec struct {
	calls  int
	id     string
	token  string
	params *discordgo.WebhookParams
	err    error
}

func (f *fakeExec) WebhookExecute(webhookID, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls++
	f.id, f.token, f.params = webhookID, token, data
	return &discordgo.Message{}, f.err
}

func TestNotifyPosted(t *testing.T) {
	exec := &fakeExec{}
	s := &Sender{webhookID: "123", token: "tok", exec: exec}

	ev := events.PlayEvent{
		Type: events.PlayPosted, PlayID: "p1", Team: "Lakers -3", Sport: "NBA",
		Odds: "+264", LegCount: 2, Ts: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	if err := s.Notify(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if exec.calls != 1 || exec.id != "123" || exec.token != "tok" {
		t.Fatalf("unexpected webhook call: %+v", exec)
	}
	if exec.params.Content != teaser {
		t.Errorf("unexpected content %q", exec.params.Content)
	}
	embed := exec.params.Embeds[0]
	if embed.Title != "NEW PARLAY" || len(embed.Fields) != 4 {
		t.Fatalf("unexpected embed: %+v", embed)
	}
	if embed.Fields[0].Value != "Lakers -3" || embed.Fields[2].Value != "+264" {
		t.Errorf("unexpected fields: %+v %+v", embed.Fields[0], embed.Fields[2])
	}
	if embed.Timestamp != "2026-03-01T18:00:00Z" {
		t.Errorf("unexpected timestamp %q", embed.Timestamp)
	}
}

func TestNotifyIgnoresOtherEvents(t *testing.T) {
	exec := &fakeExec{}
	s := &Sender{exec: exec}
	for _, typ := range []string{events.PlayGraded, events.PlayDeleted} {
		if err := s.Notify(context.Background(), events.PlayEvent{Type: typ, PlayID: "p1"}); err != nil {
			t.Fatal(err)
		}
	}
	if exec.calls != 0 {
		t.Fatalf("expected no webhook calls, got %d", exec.calls)
	}
}

func TestNotifyError(t *testing.T) {
	exec := &fakeExec{err: errors.New("429 too many requests")}
	s := &Sender{exec: exec}
	if err := s.Notify(context.Background(), events.PlayEvent{Type: events.PlayPosted}); err == nil {
		t.Fatal("expected error")
	}
}

func TestParamsEmptyFields(t *testing.T) {
	p := Params(events.PlayEvent{Type: events.PlayPosted})
	for _, f := range p.Embeds[0].Fields {
		if f.Value != "-" {
			t.Errorf("empty field %s should render as dash, got %q", f.Name, f.Value)
		}
	}
	if len(p.Embeds[0].Fields) != 3 {
		t.Errorf("legs field should be omitted without a count")
	}
}
