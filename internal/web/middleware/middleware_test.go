package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/storyimport/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	enabled := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}
	noKeys := &config.SecurityConfig{RequireAPIKey: true}
	disabled := &config.SecurityConfig{}

	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		headers map[string]string
		want    int
	}{
		{"disabled passes", disabled, nil, http.StatusOK},
		{"missing key", enabled, nil, http.StatusUnauthorized},
		{"invalid key", enabled, map[string]string{"X-API-Key": "nope"}, http.StatusForbidden},
		{"valid header key", enabled, map[string]string{"X-API-Key": "k2"}, http.StatusOK},
		{"valid bearer", enabled, map[string]string{"Authorization": "Bearer k1"}, http.StatusOK},
		{"lowercase bearer", enabled, map[string]string{"Authorization": "bearer k1"}, http.StatusOK},
		{"basic auth ignored", enabled, map[string]string{"Authorization": "Basic azE6"}, http.StatusUnauthorized},
		{"no keys configured", noKeys, map[string]string{"X-API-Key": "k1"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/stories/import", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(tt.cfg)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name     string
		trusted  []string
		remote   string
		realIP   string
		xff      string
		wantAddr string
	}{
		{"untrusted keeps remote", []string{"10.0.0.0/8"}, "203.0.113.5:4000", "1.2.3.4", "", "203.0.113.5:4000"},
		{"trusted uses X-Real-IP", []string{"10.0.0.0/8"}, "10.1.2.3:4000", "1.2.3.4", "", "1.2.3.4"},
		{"trusted uses first XFF", []string{"10.0.0.0/8"}, "10.1.2.3:4000", "", "5.6.7.8, 10.1.2.3", "5.6.7.8"},
		{"single IP entry", []string{"127.0.0.1"}, "127.0.0.1:1", "9.9.9.9", "", "9.9.9.9"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:4000", "not-an-ip", "", "10.1.2.3:4000"},
		{"no trusted proxies", nil, "10.1.2.3:4000", "1.2.3.4", "", "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()

			TrustedRealIP(tt.trusted)(okHandler()).ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.wantAddr {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.wantAddr)
			}
		})
	}
}

func TestParseTrustedNets(t *testing.T) {
	nets := parseTrustedNets([]string{"10.0.0.0/8", " ", "bogus", "::1", "192.168.1.1"})
	if len(nets) != 3 {
		t.Fatalf("parsed %d nets, want 3", len(nets))
	}
	if ones, bits := nets[2].Mask.Size(); ones != 32 || bits != 32 {
		t.Errorf("IPv4 host mask = /%d of %d", ones, bits)
	}
	if ones, _ := nets[1].Mask.Size(); ones != 128 {
		t.Errorf("IPv6 host mask = /%d", ones)
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusOK) // ignored
		w.Write([]byte("busy"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stories/import", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if rec.Body.String() != "busy" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
