// Package auth authenticates Flight requests with bearer tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when the bearer token is missing or blank.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when authentication fails.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates bearer tokens and returns user identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate validates a bearer token and returns the identity used
	// for logging. Context allows timeouts for auth backend calls.
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

type noAuthenticator struct{}

// NoAuth returns an Authenticator that allows all requests as "anonymous".
// For development and tests only.
func NoAuth() Authenticator {
	return noAuthenticator{}
}

func (noAuthenticator) Authenticate(context.Context, string) (string, error) {
	return "anonymous", nil
}

// bearerAuthenticator wraps a user-provided validation function.
type bearerAuthenticator struct {
	validate func(token string) (identity string, err error)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	auth := BearerAuth(func(token string) (string, error) {
//	    user, err := lookupSession(token)
//	    if err != nil {
//	        return "", err
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return &bearerAuthenticator{validate: validate}
}

func (b *bearerAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.validate(token)
}

// tokenAuthenticator accepts a fixed set of tokens.
type tokenAuthenticator struct {
	tokens map[string]string
}

// TokenAuth returns an Authenticator accepting the keys of tokens, each
// mapped to its identity. An empty map rejects every token.
func TokenAuth(tokens map[string]string) Authenticator {
	cp := make(map[string]string, len(tokens))
	for token, identity := range tokens {
		cp[token] = identity
	}
	return &tokenAuthenticator{tokens: cp}
}

func (a *tokenAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	// Every candidate is compared in constant time.
	var identity string
	for candidate, id := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			identity = id
		}
	}
	if identity == "" {
		return "", ErrUnauthenticated
	}
	return identity, nil
}
