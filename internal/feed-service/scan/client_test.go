package scan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newVisionServer(t *testing.T, status int, body string, check func(*http.Request, messageRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestScanSendsImageAndPrompt(t *testing.T) {
	text1 := "```json\n{\"legs\":[{\"team\":\"Duke -9.5\",\"betType\":\"SPREAD\",\"odds\":\"-110\",\"matchup\":\"UNC vs Duke\",\"sport\":\"NCAAB\"}],"
	text2 := "\"parlayOdds\":\"+450\",\"units\":\"1U\"}\n```"
	resp, _ := json.Marshal(map[string]any{
		"content": []map[string]string{
			{"type": "text", "text": text1},
			{"type": "tool_use"},
			{"type": "text", "text": text2},
		},
	})
	body := string(resp)

	srv := newVisionServer(t, http.StatusOK, body, func(r *http.Request, req messageRequest) {
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("missing version header")
		}
		if req.Model != "test-model" || req.MaxTokens != maxTokens {
			t.Errorf("unexpected model/max_tokens: %s/%d", req.Model, req.MaxTokens)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected message shape: %+v", req.Messages)
			return
		}
		img := req.Messages[0].Content[0]
		if img.Type != "image" || img.Source == nil || img.Source.Data != "aGVsbG8=" || img.Source.MediaType != "image/png" {
			t.Errorf("unexpected image block: %+v", img)
		}
		if req.Messages[0].Content[1].Text != Prompt {
			t.Errorf("unexpected prompt")
		}
	})
	defer srv.Close()

	c := New("key", srv.URL, "test-model")
	got, err := c.Scan(context.Background(), "aGVsbG8=", "image/png")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got.Legs) != 1 || got.Legs[0].Team != "Duke -9.5" || got.ParlayOdds != "+450" || got.Units != "1U" {
		t.Errorf("unexpected extraction %+v", got)
	}
}

func TestScanNotConfiguredFailsFast(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	_, err := New("", srv.URL, "m").Scan(context.Background(), "aGVsbG8=", "image/png")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if called {
		t.Error("upstream must not be called without an API key")
	}
}

func TestScanMissingInput(t *testing.T) {
	c := New("key", "http://127.0.0.1:0", "m")
	if _, err := c.Scan(context.Background(), "", "image/png"); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
	if _, err := c.Scan(context.Background(), "aGVsbG8=", ""); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}

func TestScanUpstreamError(t *testing.T) {
	srv := newVisionServer(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error"}}`, nil)
	defer srv.Close()

	_, err := New("key", srv.URL, "m").Scan(context.Background(), "aGVsbG8=", "image/png")
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if up.Status != http.StatusUnauthorized || !json.Valid(up.Body) {
		t.Errorf("unexpected upstream error %+v", up)
	}
}

func TestScanNonJSONText(t *testing.T) {
	srv := newVisionServer(t, http.StatusOK, `{"content":[{"type":"text","text":"Sorry, that image is blurry."}]}`, nil)
	defer srv.Close()

	_, err := New("key", srv.URL, "m").Scan(context.Background(), "aGVsbG8=", "image/png")
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}

func TestScanEmptyContent(t *testing.T) {
	srv := newVisionServer(t, http.StatusOK, `{"content":[]}`, nil)
	defer srv.Close()

	_, err := New("key", srv.URL, "m").Scan(context.Background(), "aGVsbG8=", "image/png")
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}
