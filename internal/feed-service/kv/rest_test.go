package kv

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeUpstash guarda valores como strings, igual ao REST do Upstash
type fakeUpstash struct {
	mu    sync.Mutex
	data  map[string]string
	token string
}

func newFakeUpstash(token string) *fakeUpstash {
	return &fakeUpstash{data: map[string]string{}, token: token}
}

func (f *fakeUpstash) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.URL.Path == "/ping":
		_, _ = w.Write([]byte(`{"result":"PONG"}`))
	case strings.HasPrefix(r.URL.Path, "/get/"):
		v, ok := f.data[strings.TrimPrefix(r.URL.Path, "/get/")]
		if !ok {
			_, _ = w.Write([]byte(`{"result":null}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": v})
	case strings.HasPrefix(r.URL.Path, "/set/") && r.Method == http.MethodPost:
		b, _ := io.ReadAll(r.Body)
		f.data[strings.TrimPrefix(r.URL.Path, "/set/")] = string(b)
		_, _ = w.Write([]byte(`{"result":"OK"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown command"}`))
	}
}

func TestRESTClientRoundTrip(t *testing.T) {
	fake := newFakeUpstash("secret")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewRESTClient(srv.URL+"/", "secret")
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "plays"); err != nil || ok {
		t.Fatalf("expected absent key without error, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "plays", []map[string]string{{"id": "a"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := fake.data["plays"]; got != `[{"id":"a"}]` {
		t.Errorf("expected single-encoded write, got %s", got)
	}

	var dst []map[string]string
	ok, err := GetJSON(ctx, c, "plays", &dst)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(dst) != 1 || dst[0]["id"] != "a" {
		t.Errorf("unexpected value %v", dst)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestRESTClientLegacyValues(t *testing.T) {
	fake := newFakeUpstash("secret")
	fake.data["double"] = `"[{\"id\":\"a\"}]"`
	fake.data["raw"] = `not json`
	fake.data["empty"] = ``
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	ctx := context.Background()

	raw, ok, err := c.Get(ctx, "double")
	if err != nil || !ok || string(raw) != `[{"id":"a"}]` {
		t.Errorf("double-encoded: got %s ok=%v err=%v", raw, ok, err)
	}

	raw, ok, err = c.Get(ctx, "raw")
	if err != nil || !ok || string(raw) != `"not json"` {
		t.Errorf("raw string: got %s ok=%v err=%v", raw, ok, err)
	}

	if _, ok, err = c.Get(ctx, "empty"); err != nil || ok {
		t.Errorf("empty result should be absent, got ok=%v err=%v", ok, err)
	}
}

func TestRESTClientAuthFailure(t *testing.T) {
	srv := httptest.NewServer(newFakeUpstash("secret"))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "wrong")
	if _, _, err := c.Get(context.Background(), "plays"); err == nil || !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("expected auth error, got %v", err)
	}
	if err := c.Set(context.Background(), "plays", []int{}); err == nil {
		t.Error("expected auth error on set")
	}
}

func TestRESTClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewRESTClient(url, "secret")
	if _, _, err := c.Get(context.Background(), "plays"); err == nil {
		t.Error("expected network error")
	}
}
