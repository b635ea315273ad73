// Package auth authenticates callers. The identity collaborator issues a
// Bearer JWT whose subject is the caller's on-chain address; this middleware
// verifies the signature and injects the address into the request context.
// The core performs no identity verification beyond the token check.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"landshare/pkg/domain"
	"landshare/pkg/requestcontext"
)

// Verifier validates a bearer token and returns the caller address.
type Verifier interface {
	Verify(token string) (domain.Address, error)
}

// HS256Verifier checks HS256-signed tokens from the identity collaborator.
type HS256Verifier struct {
	key []byte
}

func NewHS256Verifier(signingKey string) *HS256Verifier {
	return &HS256Verifier{key: []byte(signingKey)}
}

func (v *HS256Verifier) Verify(tokenString string) (domain.Address, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	addr, err := domain.ParseAddress(sub)
	if err != nil {
		return "", fmt.Errorf("token subject is not an address: %w", err)
	}
	return addr, nil
}

// RequireCaller rejects requests without a valid bearer token and injects
// the caller address for downstream role and ownership checks.
func RequireCaller(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing_token", "bearer token required")
				return
			}

			addr, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected bearer token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "invalid_token", "bearer token rejected")
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), addr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}
