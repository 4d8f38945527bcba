package security

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	// Additional security headers
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string
}

// DefaultHeadersConfig returns defaults for a JSON API that also serves one
// self-contained HTML report page.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; " +
			"style-src 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"form-action 'none'",

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-site",
	}
}

// Headers returns a gin middleware that applies the configured headers.
func Headers(config HeadersConfig) gin.HandlerFunc {
	hsts := ""
	if config.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		set := func(k, v string) {
			if v != "" {
				h.Set(k, v)
			}
		}
		set("X-Content-Type-Options", config.XContentTypeOptions)
		set("X-Frame-Options", config.XFrameOptions)
		set("Content-Security-Policy", config.CSP)
		set("Referrer-Policy", config.ReferrerPolicy)
		set("Permissions-Policy", config.PermissionsPolicy)
		set("Cross-Origin-Opener-Policy", config.CrossOriginOpener)
		set("Cross-Origin-Resource-Policy", config.CrossOriginResource)

		// HSTS only makes sense over TLS
		if c.Request.TLS != nil {
			set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}
