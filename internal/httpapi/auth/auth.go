// Package auth issues and validates the bearer JWTs the HTTP API uses for
// session authentication.
//
// Grounded on server/token.go: HS512 JWTs whose signing key is the server
// secret plus the subject's own password hash and last-logout timestamp, so
// that a password change or logout invalidates every previously issued
// token without a server-side revocation list.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brannigan/finautomata/internal/store"
)

// JWT issues and validates tokens using secret as the base of the signing
// key.
type JWT struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// New returns a JWT configured with a one-hour TTL and issuer "finautomata".
func New(secret []byte) *JWT {
	return &JWT{Secret: secret, Issuer: "finautomata", TTL: time.Hour}
}

// Generate issues a signed token for u.
func (j *JWT) Generate(u store.User) (string, error) {
	claims := &jwt.MapClaims{
		"iss": j.Issuer,
		"sub": u.ID.String(),
		"exp": time.Now().Add(j.TTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(j.signingKey(u))
}

// ValidateAndLookup parses and verifies tok, looking the subject up in
// users to build its signing key, and returns that user on success.
func (j *JWT) ValidateAndLookup(ctx context.Context, tok string, users store.UserRepository) (store.User, error) {
	var user store.User

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		user, err = users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("subject could not be validated")
		}

		return j.signingKey(user), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(j.Issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return store.User{}, err
	}
	return user, nil
}

func (j *JWT) signingKey(u store.User) []byte {
	var key []byte
	key = append(key, j.Secret...)
	key = append(key, []byte(u.PasswordHash)...)
	key = append(key, []byte(fmt.Sprintf("%d", u.LastLogoutTime.Unix()))...)
	return key
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}
