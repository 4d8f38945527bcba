package security

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	applog "ichinichi/internal/log"
)

// Private and loopback ranges whose forwarding headers are trusted.
var defaultTrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"::1/128",
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

var suspiciousAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
}

// Detector flags requests that look like probes. Flagged requests are logged
// and counted; only unusual methods are rejected.
type Detector struct {
	suspicious atomic.Int64
	rejected   atomic.Int64
	proxies    []string
}

// NewDetector creates a new security detector
func NewDetector() *Detector {
	return &Detector{proxies: append([]string(nil), defaultTrustedProxies...)}
}

// TrustedProxies returns the CIDRs to pass to gin.Engine.SetTrustedProxies.
func (d *Detector) TrustedProxies() []string {
	return append([]string(nil), d.proxies...)
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) {
	d.proxies = append(d.proxies, cidr)
}

// IsSuspicious analyzes request patterns for potential threats
func IsSuspicious(path, rawQuery, userAgent string) bool {
	path = strings.ToLower(path)
	query := strings.ToLower(rawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}
	agent := strings.ToLower(userAgent)
	for _, a := range suspiciousAgents {
		if strings.Contains(agent, a) {
			return true
		}
	}
	return len(path)+len(query) > 2048
}

// Middleware logs suspicious requests and rejects TRACE, TRACK and CONNECT.
func (d *Detector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "TRACE", "TRACK", "CONNECT":
			d.rejected.Add(1)
			c.AbortWithStatus(405)
			return
		}

		r := c.Request
		if IsSuspicious(r.URL.Path, r.URL.RawQuery, r.UserAgent()) {
			d.suspicious.Add(1)
			slog.WarnContext(r.Context(), "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, c.ClientIP(),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.UserAgent())
		}
		c.Next()
	}
}

// Counts returns the number of flagged and rejected requests.
func (d *Detector) Counts() (suspicious, rejected int64) {
	return d.suspicious.Load(), d.rejected.Load()
}
