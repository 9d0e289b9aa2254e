package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name    string
		build   func() *http.Request
		flagged bool
	}{
		{
			name:    "plain api request",
			build:   func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil) },
			flagged: false,
		},
		{
			name:    "path traversal",
			build:   func() *http.Request { return httptest.NewRequest(http.MethodGet, "/files/..%2f..%2fetc/passwd", nil) },
			flagged: true,
		},
		{
			name:    "env probe",
			build:   func() *http.Request { return httptest.NewRequest(http.MethodGet, "/.env", nil) },
			flagged: true,
		},
		{
			name:    "code injection in query",
			build:   func() *http.Request { return httptest.NewRequest(http.MethodGet, "/search?q=eval(alert)", nil) },
			flagged: true,
		},
		{
			name: "scanner user agent",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set("User-Agent", "sqlmap/1.7")
				return r
			},
			flagged: true,
		},
		{
			name: "curl is not a scanner",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set("User-Agent", "curl/8.0")
				return r
			},
			flagged: false,
		},
		{
			name:    "trace method",
			build:   func() *http.Request { return httptest.NewRequest("TRACE", "/", nil) },
			flagged: true,
		},
		{
			name: "oversized url",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/?pad="+strings.Repeat("a", 3000), nil)
			},
			flagged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DetectSuspiciousRequest(tt.build()); got != tt.flagged {
				t.Errorf("DetectSuspiciousRequest = %v, want %v", got, tt.flagged)
			}
		})
	}

	if d.SuspiciousSeen() == 0 {
		t.Error("SuspiciousSeen should count flagged requests")
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4521"
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("direct peer ip = %q, want 203.0.113.9", got)
	}

	// Forwarded headers from an untrusted peer are ignored.
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("untrusted XFF ip = %q, want 203.0.113.9", got)
	}

	// A trusted proxy's forwarded chain resolves to the first hop.
	r.RemoteAddr = "10.0.0.5:80"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.5")
	if got := d.ExtractClientIP(r); got != "198.51.100.7" {
		t.Errorf("trusted XFF ip = %q, want 198.51.100.7", got)
	}

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "198.51.100.8")
	if got := d.ExtractClientIP(r); got != "198.51.100.8" {
		t.Errorf("X-Real-IP = %q, want 198.51.100.8", got)
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.1:80"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := d.ExtractClientIP(r); got != "198.51.100.7" {
		t.Errorf("ip behind added proxy = %q, want 198.51.100.7", got)
	}

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("invalid CIDR should error")
	}
}
