package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"statuswatch/app/internal/database"
	"statuswatch/app/internal/ratelimit"
)

// Auth gates the HTTP API: bearer tokens for read access, an admin
// credential for mutations.
type Auth struct {
	limiter   *ratelimit.Limiter
	adminHash []byte
}

// New creates an Auth instance. adminHash may be empty, which disables the
// admin surface entirely.
func New(limiter *ratelimit.Limiter, adminHash []byte) *Auth {
	return &Auth{limiter: limiter, adminHash: adminHash}
}

// GenerateToken mints a new opaque API token
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Authorize wraps a handler with bearer-token authorization and per-token
// rate limiting. Rejections happen before any data access.
func (a *Auth) Authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "not authorized", http.StatusUnauthorized)
			return
		}

		if !a.limiter.Allow(token) {
			http.Error(w, "too many requests, rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		ok, err := database.TokenExists(token)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// RequireAdmin wraps a handler with the admin credential check
func (a *Auth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(a.adminHash) == 0 {
			http.Error(w, "admin access disabled", http.StatusForbidden)
			return
		}

		pw := r.Header.Get("X-Admin-Password")
		if pw == "" {
			http.Error(w, "not authorized", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword(a.adminHash, []byte(pw)) != nil {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// bearerToken extracts the token from the Authorization header, accepting
// both "Bearer <token>" and a bare token value.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(h)
}
