package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authshield"
)

// DefaultClientCookie holds the per-browser token slot key.
const DefaultClientCookie = "authshield_client"

// ClientContext attaches the caller IP and a client key to the request
// context. The key comes from cookieName, and a fresh random cookie is set
// when the request has none.
func ClientContext(cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultClientCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if c, err := r.Cookie(cookieName); err == nil {
				key = c.Value
			}
			if key == "" {
				fresh, err := authshield.NewCSRFToken()
				if err != nil {
					writeError(w, http.StatusInternalServerError, "client key generation failed")
					return
				}
				key = fresh
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    key,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
					Expires:  time.Now().Add(30 * 24 * time.Hour),
				})
			}

			ctx := authshield.WithClientKey(r.Context(), key)
			ctx = authshield.WithClientIP(ctx, clientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
