package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned when an API key cannot be resolved to a caller.
var ErrUnauthorized = errors.New("unauthorized")

// Role is the access level attached to an API key.
type Role string

const (
	// RoleUser may preview and place orders and read its own history.
	RoleUser Role = "USER"
	// RoleAdmin may additionally read every order.
	RoleAdmin Role = "ADMIN"
)

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID int64
	Name   string
	Role   Role
}

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      int64
	KeyHash string
	Name    string
	Role    Role
	UserID  int64
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashKey computes the hex-encoded HMAC-SHA256 of a raw API key under the
// given pepper. Keys are stored and looked up only in this form.
func HashKey(key string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
