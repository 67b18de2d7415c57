package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const TokenKey contextKey = "token"

// TokenCookie is the cookie the browser session keeps the bearer token in
const TokenCookie = "token"

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token cookie. The token is opaque; nothing here
// checks it, the scoring service does.
func TokenFromRequest(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		// Support both "Bearer <token>" and "<token>" formats
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			auth = auth[7:]
		}
		if token := strings.TrimSpace(auth); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// BearerToken stores the request's token in the context so handlers can
// pass it on explicitly. Requests without a token are let through.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), TokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromContext extracts the token stored by BearerToken
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

// ClientKey identifies whose submission this is: the token when present,
// otherwise the client address.
func ClientKey(r *http.Request) string {
	if token := TokenFromContext(r.Context()); token != "" {
		return "token:" + token
	}
	return "ip:" + clientIP(r)
}

// clientIP is the direct peer address. X-Forwarded-For only counts once
// TrustedRealIP has vetted it and rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.Trim(host, "[]")
}
