package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsSuspicious(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		query     string
		userAgent string
		want      bool
	}{
		{"normal api call", "/api/items", "limit=10", "Mozilla/5.0", false},
		{"path traversal", "/../etc/passwd", "", "", true},
		{"dotenv probe", "/.env", "", "", true},
		{"sql injection in query", "/api/items", "q=1 UNION SELECT", "", true},
		{"scanner agent", "/", "", "sqlmap/1.7", true},
		{"curl is fine", "/api/summary", "", "curl/8.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuspicious(tt.path, tt.query, tt.userAgent); got != tt.want {
				t.Errorf("IsSuspicious(%q, %q, %q) = %v, want %v", tt.path, tt.query, tt.userAgent, got, tt.want)
			}
		})
	}
}

func newEngine(d *Detector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Headers(DefaultHeadersConfig()), d.Middleware())
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestHeaders(t *testing.T) {
	r := newEngine(NewDetector())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS must not be sent over plain HTTP")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Errorf("expected HSTS over TLS")
	}
}

func TestDetectorMiddleware(t *testing.T) {
	d := NewDetector()
	r := newEngine(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("suspicious requests are logged, not blocked; got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("TRACE", "/", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("TRACE status = %d, want 405", w.Code)
	}

	suspicious, rejected := d.Counts()
	if suspicious != 1 || rejected != 1 {
		t.Fatalf("Counts = %d, %d", suspicious, rejected)
	}
}

func TestTrustedProxies(t *testing.T) {
	d := NewDetector()
	d.AddTrustedProxy("203.0.113.0/24")
	got := d.TrustedProxies()
	if got[len(got)-1] != "203.0.113.0/24" {
		t.Fatalf("unexpected proxies %v", got)
	}
	if err := gin.New().SetTrustedProxies(got); err != nil {
		t.Fatalf("gin rejected proxies: %v", err)
	}
}
