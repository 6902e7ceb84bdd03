// Package auth guards the admin endpoints. Callers present the admin secret
// directly or exchange it for a short-lived signed token.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/david/syncscout/internal/logging"
)

const (
	// HeaderAdminSecret carries the raw admin secret.
	HeaderAdminSecret = "X-Admin-Secret"

	subjectAdmin = "admin"
	issuer       = "syncscout"
)

var (
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Token is an issued admin token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Authenticator struct {
	secretHash []byte
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// New hashes adminSecret and prepares token signing. Empty secrets are
// replaced with ephemeral random values that live as long as the process.
func New(adminSecret, signingKey string, ttl time.Duration) (*Authenticator, error) {
	secret := strings.TrimSpace(adminSecret)
	if secret == "" {
		var err error
		if secret, err = randomSecret(); err != nil {
			return nil, fmt.Errorf("failed to generate admin secret fallback: %w", err)
		}
		logging.Warn().Msg("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	}

	key := strings.TrimSpace(signingKey)
	if key == "" {
		var err error
		if key, err = randomSecret(); err != nil {
			return nil, fmt.Errorf("failed to generate token key fallback: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secretHash: hash, signingKey: []byte(key), ttl: ttl, now: time.Now}, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CheckSecret reports whether secret is the admin secret.
func (a *Authenticator) CheckSecret(secret string) error {
	if secret == "" {
		return ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword(a.secretHash, []byte(secret)); err != nil {
		return ErrInvalidCreds
	}
	return nil
}

// IssueToken exchanges the admin secret for a signed token.
func (a *Authenticator) IssueToken(secret string) (Token, error) {
	if err := a.CheckSecret(secret); err != nil {
		return Token{}, err
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subjectAdmin,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ExpiresAt: exp.UTC()}, nil
}

// VerifyToken checks the signature, expiry and subject of an admin token.
func (a *Authenticator) VerifyToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub != subjectAdmin {
		return ErrInvalidToken
	}
	return nil
}

// Middleware admits requests carrying the admin secret in X-Admin-Secret,
// or a Bearer credential that is either a valid token or the secret itself.
func (a *Authenticator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if secret := c.Request().Header.Get(HeaderAdminSecret); secret != "" {
			if a.CheckSecret(secret) == nil {
				return next(c)
			}
		}

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			cred := strings.TrimSpace(authHeader[7:])
			if strings.Count(cred, ".") == 2 {
				if a.VerifyToken(cred) == nil {
					return next(c)
				}
			} else if a.CheckSecret(cred) == nil {
				return next(c)
			}
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}
