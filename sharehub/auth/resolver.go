// Package auth resolves a caller's identity from an inbound request.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

const tokenCacheSize = 1024

// ErrMissingIdentity is returned when no path yields a usable user id.
// Callers must reject the request with a client error.
var ErrMissingIdentity = errors.New("missing identity")

// Identity is a resolved caller.
type Identity struct {
	UserID   string
	UserName string
}

// Resolver turns a bearer credential (or a caller-supplied fallback) into an
// Identity. Exactly one implementation is trusted in a given deployment.
type Resolver interface {
	Resolve(authorization string, fallback Identity) (Identity, error)
}

type tokenPayload struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResolver decodes the payload of a bearer JWT. Signature verification
// is the API gateway's responsibility, not this component's; the token is
// treated as an opaque claims carrier.
//
// When allowUnverified is set, a request without a decodable token may
// instead assert its own user id. That shim exists for compatibility with the
// legacy unauthenticated flow and is off by default.
type TokenResolver struct {
	allowUnverified bool
	cache           *lru.Cache
}

func NewTokenResolver(allowUnverified bool) *TokenResolver {
	// Tokens are immutable, so the decoded identity can be cached by the raw
	// token string.
	cache, _ := lru.New(tokenCacheSize)
	return &TokenResolver{
		allowUnverified: allowUnverified,
		cache:           cache,
	}
}

func (r *TokenResolver) Resolve(authorization string, fallback Identity) (Identity, error) {
	if token, ok := bearerToken(authorization); ok {
		if ident, ok := r.fromToken(token); ok {
			return ident, nil
		}
	}

	if r.allowUnverified && fallback.UserID != "" {
		name := fallback.UserName
		if name == "" {
			name = "Unknown User"
		}
		return Identity{UserID: fallback.UserID, UserName: name}, nil
	}

	return Identity{}, ErrMissingIdentity
}

func bearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if len(authorization) > len(prefix) && strings.EqualFold(authorization[:len(prefix)], prefix) {
		return authorization[len(prefix):], true
	}
	return "", false
}

func (r *TokenResolver) fromToken(token string) (Identity, bool) {
	if cached, ok := r.cache.Get(token); ok {
		return cached.(Identity), true
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Identity{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Identity{}, false
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Sub == "" {
		return Identity{}, false
	}

	name := payload.Name
	if name == "" {
		name = payload.Email
	}

	ident := Identity{UserID: payload.Sub, UserName: name}
	r.cache.Add(token, ident)
	return ident, true
}
