package handler

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/Ashab-Asir/order-management/internal/domain/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the authenticated caller stored in the request
// context, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// Authenticator resolves API keys to caller identities using HMAC-SHA256
// hashed lookups.
type Authenticator struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewAuthenticator creates an Authenticator with the given API key
// repository and HMAC pepper.
func NewAuthenticator(apikeys auth.Repository, pepper []byte) *Authenticator {
	return &Authenticator{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Middleware authenticates the request via the X-API-Key header (or an
// Authorization: Bearer token), stores the resolved identity in the context,
// and rejects the request with 401 otherwise.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			if v := r.Header.Get("Authorization"); strings.HasPrefix(v, "Bearer ") {
				key = strings.TrimPrefix(v, "Bearer ")
			}
		}
		if key == "" {
			respondError(w, http.StatusUnauthorized, "api key required")
			return
		}

		hash := auth.HashKey(key, a.pepper)
		info, err := a.apikeys.FindByHash(r.Context(), hash)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		// The stored hash can differ from the computed one if the
		// repository returns a stale row, so compare in constant time.
		stored, err := hex.DecodeString(info.KeyHash)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		computed, err := hex.DecodeString(hash)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if subtle.ConstantTimeCompare(computed, stored) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		identity := auth.Identity{
			UserID: info.UserID,
			Name:   info.Name,
			Role:   info.Role,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// RequireRole rejects requests whose caller does not hold the given role.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok || id.Role != role {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
