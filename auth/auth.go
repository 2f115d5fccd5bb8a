// Package auth defines the authentication callback used by the auth
// middleware and a static bearer-token implementation of it.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/Keksclan/goRawrQueue/contextx"
)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("auth: missing bearer token")

// ErrInvalidToken is returned when a bearer token is not recognized.
var ErrInvalidToken = errors.New("auth: invalid bearer token")

// AuthFunc authenticates r. On success it returns the request to forward,
// usually r with an [contextx.Actor] attached to its context. On failure it
// returns an error; gRPC status errors keep their code, anything else is
// answered with 401.
//
// Token parsing is the AuthFunc's job; the middleware only calls it.
type AuthFunc func(r *http.Request) (*http.Request, error)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// StaticTokens returns an AuthFunc that accepts the bearer tokens in tokens,
// each mapped to the actor it authenticates.
func StaticTokens(tokens map[string]contextx.Actor) AuthFunc {
	return func(r *http.Request) (*http.Request, error) {
		tok, ok := BearerToken(r)
		if !ok {
			return nil, ErrMissingToken
		}
		for known, actor := range tokens {
			if subtle.ConstantTimeCompare([]byte(tok), []byte(known)) == 1 {
				return r.WithContext(contextx.WithActor(r.Context(), actor)), nil
			}
		}
		return nil, ErrInvalidToken
	}
}
