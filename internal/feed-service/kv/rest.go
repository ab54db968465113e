package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTClient fala com um key-value store exposto por REST no formato Upstash:
// GET {base}/get/{key} e POST {base}/set/{key}, autenticados por bearer token.
type RESTClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewRESTClient(base, token string) *RESTClient {
	return &RESTClient{
		BaseURL: strings.TrimRight(base, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// restResponse: result é string (GET), "OK" (SET) ou null; error vem preenchido em falhas
type restResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error,omitempty"`
}

func (c *RESTClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var out restResponse
	if err := c.do(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	if out.Result == nil || *out.Result == "" {
		return nil, false, nil
	}
	return Normalize([]byte(*out.Result)), true, nil
}

func (c *RESTClient) Set(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv set %s: marshal: %w", key, err)
	}
	if err := c.do(ctx, http.MethodPost, "/set/"+url.PathEscape(key), body, nil); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Ping usa o comando PING da API REST
func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *RESTClient) do(ctx context.Context, method, path string, body []byte, dst *restResponse) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var out restResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response (http %d): %w", res.StatusCode, err)
	}
	if out.Error != "" {
		return fmt.Errorf("http %d: %s", res.StatusCode, out.Error)
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("http %d", res.StatusCode)
	}
	if dst != nil {
		*dst = out
	}
	return nil
}
