package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicVersion = "2023-06-01"
	maxTokens        = 2000
)

// Prompt pede ao modelo um objeto JSON estrito com todas as legs do slip
const Prompt = "You are reading a sportsbook bet slip screenshot. This may be a parlay with multiple legs. " +
	"Extract ALL legs and respond ONLY with JSON, no markdown, no backticks:\n" +
	`{"legs":[{"team":"Pick including line e.g. Duke -9.5 or Jalen Johnson Over 8.5 Rebounds",` +
	`"betType":"SPREAD or MONEYLINE or OVER/UNDER or PLAYER PROP or GAME TOTAL or ALTERNATE SPREAD or FIRST HALF SPREAD or FIRST HALF ML",` +
	`"odds":"Leg odds if shown e.g. -192 or empty string","matchup":"Away vs Home e.g. ATL vs WAS",` +
	`"sport":"NBA or NFL or NCAAB or NCAAF or NHL or MLB or Soccer or UFC or Tennis"}],` +
	`"parlayOdds":"Total odds if shown e.g. +450 or 2.00x","units":"Units if shown e.g. 2U or 1U"}` +
	"\nExtract EVERY leg. For player props put player name stat and line in team field."

// Client encaminha a imagem do slip para a Messages API e interpreta a resposta.
// Sem retry e sem timeout próprio: o contexto da requisição manda.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func New(apiKey, baseURL, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		HTTP:    &http.Client{},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Scan envia imageData (base64, sem prefixo data:) e devolve a extração validada
func (c *Client) Scan(ctx context.Context, imageData, mediaType string) (*Extraction, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if imageData == "" || mediaType == "" {
		return nil, ErrMissingInput
	}

	body, err := json.Marshal(messageRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: mediaType, Data: imageData}},
				{Type: "text", Text: Prompt},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision api request: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamError{Status: res.StatusCode, Body: respBody}
	}

	var out messageResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	var text strings.Builder
	for _, b := range out.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	return Parse(text.String())
}
