package config

import (
	"testing"
	"time"
)

func TestLoadPortsPerService(t *testing.T) {
	tests := []struct {
		svc         string
		httpPort    string
		metricsPort string
	}{
		{"feed-service", "8080", "9095"},
		{"notify-worker", "", "9096"},
		{"scan-simulator", "8081", "9094"},
		{"", "8080", "9095"},
	}
	for _, tt := range tests {
		t.Run(tt.svc, func(t *testing.T) {
			t.Setenv("SERVICE_NAME", tt.svc)
			cfg := Load()
			if cfg.HTTPPort != tt.httpPort {
				t.Errorf("HTTPPort: expected %q, got %q", tt.httpPort, cfg.HTTPPort)
			}
			if cfg.MetricsPort != tt.metricsPort {
				t.Errorf("MetricsPort: expected %q, got %q", tt.metricsPort, cfg.MetricsPort)
			}
		})
	}
}

func TestLoadKVBackend(t *testing.T) {
	t.Setenv("KV_REST_API_URL", "")
	if Load().UseKVRest() {
		t.Fatal("expected redis backend when KV_REST_API_URL is empty")
	}
	t.Setenv("KV_REST_API_URL", "https://example.upstash.io")
	if !Load().UseKVRest() {
		t.Fatal("expected REST backend when KV_REST_API_URL is set")
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		val  string
		want time.Duration
	}{
		{"", 30 * time.Second},
		{"5s", 5 * time.Second},
		{"2m", 2 * time.Minute},
		{"45", 45 * time.Second},
		{"garbage", 30 * time.Second},
		{"-3s", 30 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("POLL_INTERVAL", tt.val)
		if got := getDuration("POLL_INTERVAL", 30*time.Second); got != tt.want {
			t.Errorf("getDuration(%q): expected %v, got %v", tt.val, tt.want, got)
		}
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("SCAN_SIM_FAIL_EVERY", "3")
	if got := getInt("SCAN_SIM_FAIL_EVERY", 0); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	t.Setenv("SCAN_SIM_FAIL_EVERY", "often")
	if got := getInt("SCAN_SIM_FAIL_EVERY", 0); got != 0 {
		t.Errorf("expected default for invalid value, got %d", got)
	}
}
