// Package identity decodes identity assertions issued by the external sign-in
// provider.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/club-schedule-board/internal/application"
)

var (
	// ErrEmptyCredential is returned for blank tokens.
	ErrEmptyCredential = errors.New("identity: empty credential")
	// ErrMissingEmail is returned when the token carries no email claim.
	ErrMissingEmail = errors.New("identity: credential has no email")
)

// Claims are the profile claims of a provider ID token.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Credential is the decoded identity of a sign-in.
type Credential struct {
	Email   string
	Name    string
	Picture string
}

// Assertion converts the credential into the board login input.
func (c Credential) Assertion() application.Assertion {
	return application.Assertion{Email: c.Email, Name: c.Name, Photo: c.Picture}
}

// ParseCredential decodes the claims of an ID token. The signature is not verified;
// the token is trusted as delivered by the sign-in flow.
func ParseCredential(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, ErrEmptyCredential
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Credential{}, fmt.Errorf("identity: decode credential: %w", err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return Credential{}, ErrMissingEmail
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = email
	}
	return Credential{Email: email, Name: name, Picture: strings.TrimSpace(claims.Picture)}, nil
}
