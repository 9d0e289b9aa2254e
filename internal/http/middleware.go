package http

import (
	"context"
	"net/http"

	"fintrack/internal/auth"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// withSession authenticates the request from the session cookie and stores the
// verified claims in the request context.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil || cookie.Value == "" {
			fail(w, http.StatusUnauthorized, "Unauthorized No token provided")
			return
		}

		claims, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			fail(w, http.StatusForbidden, "Token verification failed:"+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// withAdmin requires an authenticated admin session.
func (s *Server) withAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.withSession(func(w http.ResponseWriter, r *http.Request) {
		if !sessionClaims(r).IsAdmin {
			fail(w, http.StatusForbidden, "Access denied. Admins only.")
			return
		}
		next(w, r)
	})
}

// withAPIKey gates a handler behind the configured API key, passed as the
// "key" query parameter. When no key is configured the gate is a no-op.
func (s *Server) withAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next(w, r)
			return
		}
		key := r.URL.Query().Get("key")
		if key == "" {
			fail(w, http.StatusUnauthorized, "API key is required")
			return
		}
		if key != s.apiKey {
			fail(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next(w, r)
	}
}

// sessionClaims returns the claims stored by withSession. Only call from
// handlers behind the session middleware.
func sessionClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}
