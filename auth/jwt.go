package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Keksclan/goRawrQueue/contextx"
)

// Claims is the JWT payload HS256Tokens understands. Scope is a
// space-separated list as in OAuth 2.0 access tokens.
type Claims struct {
	Tenant   string `json:"tenant,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the identity stored on the request.
func (c *Claims) Actor() contextx.Actor {
	return contextx.Actor{
		Subject:  c.Subject,
		Tenant:   c.Tenant,
		ClientID: c.ClientID,
		Scopes:   strings.Fields(c.Scope),
	}
}

// HS256Tokens returns an AuthFunc that accepts HMAC-signed JWT bearer
// tokens. Expiry and not-before are enforced; a subject is required.
func HS256Tokens(secret []byte) AuthFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(r *http.Request) (*http.Request, error) {
		raw, ok := BearerToken(r)
		if !ok {
			return nil, ErrMissingToken
		}
		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if claims.Subject == "" {
			return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
		}
		return r.WithContext(contextx.WithActor(r.Context(), claims.Actor())), nil
	}
}

// Any tries each AuthFunc in order and returns the first success. When all
// of them fail the last error is returned.
func Any(fns ...AuthFunc) AuthFunc {
	return func(r *http.Request) (*http.Request, error) {
		err := ErrMissingToken
		for _, fn := range fns {
			var out *http.Request
			if out, err = fn(r); err == nil {
				return out, nil
			}
		}
		return nil, err
	}
}
