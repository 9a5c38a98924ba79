package auth

import (
	"encoding/base64"
	"errors"
	"testing"
)

func makeToken(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".signature"
}

func TestResolveFromToken(t *testing.T) {
	r := NewTokenResolver(false)

	token := makeToken(t, `{"sub":"user-1","name":"Dana Lee","email":"dana@campus.edu"}`)
	ident, err := r.Resolve("Bearer "+token, Identity{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserID != "user-1" {
		t.Errorf("userID = %q, want user-1", ident.UserID)
	}
	if ident.UserName != "Dana Lee" {
		t.Errorf("userName = %q, want Dana Lee", ident.UserName)
	}
}

func TestResolveNameFallsBackToEmail(t *testing.T) {
	r := NewTokenResolver(false)

	token := makeToken(t, `{"sub":"user-1","email":"dana@campus.edu"}`)
	ident, err := r.Resolve("Bearer "+token, Identity{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserName != "dana@campus.edu" {
		t.Errorf("userName = %q, want email fallback", ident.UserName)
	}
}

func TestResolveCaseInsensitiveScheme(t *testing.T) {
	r := NewTokenResolver(false)

	token := makeToken(t, `{"sub":"user-1","name":"Dana"}`)
	ident, err := r.Resolve("bearer "+token, Identity{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserID != "user-1" {
		t.Errorf("userID = %q, want user-1", ident.UserID)
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	r := NewTokenResolver(false)

	tests := []struct {
		name          string
		authorization string
	}{
		{"empty header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"not a jwt", "Bearer just-a-string"},
		{"bad base64 payload", "Bearer aaa.!!!.ccc"},
		{"payload not json", "Bearer " + makeTokenRaw("not json at all")},
		{"payload without sub", "Bearer " + makeTokenRaw(`{"name":"Dana"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.authorization, Identity{})
			if !errors.Is(err, ErrMissingIdentity) {
				t.Errorf("Resolve() error = %v, want ErrMissingIdentity", err)
			}
		})
	}
}

func makeTokenRaw(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestResolveFallbackDisabledByDefault(t *testing.T) {
	r := NewTokenResolver(false)

	_, err := r.Resolve("", Identity{UserID: "user-1", UserName: "Dana"})
	if !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("Resolve() error = %v, want ErrMissingIdentity", err)
	}
}

func TestResolveFallbackWhenEnabled(t *testing.T) {
	r := NewTokenResolver(true)

	ident, err := r.Resolve("", Identity{UserID: "user-1", UserName: "Dana"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserID != "user-1" || ident.UserName != "Dana" {
		t.Errorf("identity = %+v, want user-1/Dana", ident)
	}

	ident, err = r.Resolve("", Identity{UserID: "user-2"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserName != "Unknown User" {
		t.Errorf("userName = %q, want Unknown User", ident.UserName)
	}

	// No user id means no identity even with the shim on.
	if _, err := r.Resolve("", Identity{UserName: "Dana"}); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("Resolve() error = %v, want ErrMissingIdentity", err)
	}
}

func TestResolveTokenBeatsFallback(t *testing.T) {
	r := NewTokenResolver(true)

	token := makeToken(t, `{"sub":"token-user","name":"Token Name"}`)
	ident, err := r.Resolve("Bearer "+token, Identity{UserID: "body-user", UserName: "Body Name"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ident.UserID != "token-user" {
		t.Errorf("userID = %q, want token-user", ident.UserID)
	}
}

func TestResolveCachesDecodedTokens(t *testing.T) {
	r := NewTokenResolver(false)

	token := makeToken(t, `{"sub":"user-1","name":"Dana"}`)
	if _, err := r.Resolve("Bearer "+token, Identity{}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := r.cache.Get(token); !ok {
		t.Error("decoded token not cached")
	}

	ident, err := r.Resolve("Bearer "+token, Identity{})
	if err != nil {
		t.Fatalf("Resolve() on cached token error = %v", err)
	}
	if ident.UserID != "user-1" {
		t.Errorf("cached userID = %q, want user-1", ident.UserID)
	}
}
