package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials is deliberately vague: the response never says
	// which of the two fields was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrRegistrationDisabled = errors.New("registration is not available")
	ErrUnauthorized         = errors.New("not authorized")
)

const tokenTTL = 30 * 24 * time.Hour

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Gate issues and verifies bearer tokens for a single operator account.
// This is intentionally not a user store: one hardcoded credential pair,
// no hashing, no lockout.
type Gate struct {
	secret   []byte
	email    string
	password string
}

func NewGate(secret, email, password string) *Gate {
	return &Gate{secret: []byte(secret), email: email, password: password}
}

// Login compares against the single configured credential pair and, on
// match, returns a signed token carrying the account email with a 30-day
// expiry.
func (g *Gate) Login(email, password string) (string, error) {
	if email != g.email || password != g.password {
		return "", ErrInvalidCredentials
	}
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the bound email.
func (g *Gate) Verify(token string) (string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	return claims.Email, nil
}

// Register always fails. The dashboard is a closed single-operator system;
// this is policy, not a stub to fill in later.
func (g *Gate) Register() error {
	return ErrRegistrationDisabled
}
