// Package token signs and verifies the HS256 access/refresh tokens.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 24 * time.Hour
)

// TTL is the lifetime minted for the given kind.
func TTL(k Kind) time.Duration {
	if k == KindRefresh {
		return RefreshTTL
	}
	return AccessTTL
}

var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  Kind   `json:"type"`
	jwt.RegisteredClaims
}

// Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// WithClock returns a copy of c that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{secret: c.secret, now: now}
}

// Sign sets the expiry to IssuedAt+ttl (IssuedAt defaults to now) and a fresh
// token id when none is set.
func (c *Codec) Sign(claims Claims, ttl time.Duration) (string, error) {
	if !claims.Type.Valid() {
		return "", ErrMalformed
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(c.now())
	}
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	claims.ExpiresAt = jwt.NewNumericDate(claims.IssuedAt.Time.Add(ttl))

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(c.secret)
}

func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	return c.parse(tokenStr,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
}

// Inspect checks structure and signature but not expiry. It is used to read
// the embedded expiry of a token that is about to be revoked.
func (c *Codec) Inspect(tokenStr string) (*Claims, error) {
	claims, err := c.parse(tokenStr, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) parse(tokenStr string, opts ...jwt.ParserOption) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if !claims.Type.Valid() || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return &claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}

// Reason maps a codec error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}

// Digest is the form tokens are stored in the revocation list.
func Digest(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}
