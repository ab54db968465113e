package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/radieske/parlay-feed/pkg/contracts/events"
)

// Texto público: o detalhe das legs fica atrás do paywall
const teaser = "New parlay dropped! Upgrade to view"

const embedColor = 0xD4A843

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sender publica o aviso de play nova em um webhook do Discord
type Sender struct {
	webhookID string
	token     string
	exec      webhookExecutor
}

func New(webhookID, token string) (*Sender, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Sender{webhookID: webhookID, token: token, exec: s}, nil
}

// Notify só age em play_posted; demais eventos são ignorados
func (s *Sender) Notify(ctx context.Context, e events.PlayEvent) error {
	if e.Type != events.PlayPosted {
		return nil
	}
	_, err := s.exec.WebhookExecute(s.webhookID, s.token, false, Params(e), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

// Params monta a mensagem do webhook para uma play nova
func Params(e events.PlayEvent) *discordgo.WebhookParams {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Team", Value: orDash(e.Team), Inline: true},
		{Name: "Sport", Value: orDash(e.Sport), Inline: true},
		{Name: "Odds", Value: orDash(e.Odds), Inline: true},
	}
	if e.LegCount > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Legs", Value: strconv.Itoa(e.LegCount), Inline: true})
	}
	embed := &discordgo.MessageEmbed{
		Title:  "NEW PARLAY",
		Color:  embedColor,
		Fields: fields,
	}
	if !e.Ts.IsZero() {
		embed.Timestamp = e.Ts.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return &discordgo.WebhookParams{
		Content: teaser,
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
