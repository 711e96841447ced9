package credential

import (
	"context"
	"errors"
	"os"
)

// ErrNoCredential is returned when no bearer token is available.
var ErrNoCredential = errors.New("no credential stored")

// Authenticator supplies the bearer token attached to every request.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// Static is an Authenticator that always returns the same token.
type Static string

// Token returns the static token, or ErrNoCredential when it is empty.
func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// KeyringAuthenticator reads the token from a Store on every call so that
// a `notifeed login` in another terminal is picked up without a restart.
type KeyringAuthenticator struct {
	store *Store
	key   string
}

// NewKeyringAuthenticator returns an Authenticator reading TokenKey.
func NewKeyringAuthenticator(s *Store) *KeyringAuthenticator {
	return &KeyringAuthenticator{store: s, key: TokenKey}
}

// Token implements Authenticator.
func (a *KeyringAuthenticator) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := a.store.Get(a.key)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// envAuthenticator prefers a token from the environment over the fallback.
type envAuthenticator struct {
	name     string
	fallback Authenticator
}

// FromEnv returns an Authenticator that uses the environment variable name
// when it is set and otherwise defers to fallback (which may be nil).
func FromEnv(name string, fallback Authenticator) Authenticator {
	return envAuthenticator{name: name, fallback: fallback}
}

func (e envAuthenticator) Token(ctx context.Context) (string, error) {
	if token := os.Getenv(e.name); token != "" {
		return token, nil
	}
	if e.fallback == nil {
		return "", ErrNoCredential
	}
	return e.fallback.Token(ctx)
}
