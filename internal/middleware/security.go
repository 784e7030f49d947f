package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders configures the security headers applied to every response.
type SecureHeaders struct {
	// ContentSecurityPolicy overrides the default CSP when non-empty
	ContentSecurityPolicy string
	// StrictTransportSecurity is only sent over TLS
	StrictTransportSecurity string
	// PermissionsPolicy restricts browser features
	PermissionsPolicy string
	// DevMode relaxes the CSP for local development
	DevMode bool
}

// DefaultSecureHeaders returns the production header configuration.
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		StrictTransportSecurity: "max-age=31536000; includeSubDomains",
	}
}

// Handler applies the configured security headers.
func (s *SecureHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := s.ContentSecurityPolicy
		if csp == "" {
			csp = s.defaultCSP()
		}
		w.Header().Set("Content-Security-Policy", csp)

		if s.PermissionsPolicy != "" {
			w.Header().Set("Permissions-Policy", s.PermissionsPolicy)
		} else {
			w.Header().Set("Permissions-Policy", defaultPermissionsPolicy())
		}

		if r.TLS != nil && s.StrictTransportSecurity != "" {
			w.Header().Set("Strict-Transport-Security", s.StrictTransportSecurity)
		}

		next.ServeHTTP(w, r)
	})
}

// defaultCSP builds the content security policy. The dashboard pulls
// Chart.js from jsdelivr, everything else stays same-origin.
func (s *SecureHeaders) defaultCSP() string {
	directives := []string{
		"default-src 'self'",
		"script-src 'self' https://cdn.jsdelivr.net",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"font-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}

	if s.DevMode {
		// Local development allows inline scripts for quick iteration
		// on the embedded dashboard page.
		directives[1] = "script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net"
	}

	return strings.Join(directives, "; ")
}

func defaultPermissionsPolicy() string {
	return "geolocation=(), microphone=(), camera=(), payment=(), usb=()"
}
