package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
)

const issuer = "courieragent"

// claims carries the driver id in the subject.
type claims struct {
	jwt.RegisteredClaims
}

// JWTStrategy implements session tokens as HS256-signed JWTs.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates a signed session token for the driver.
func (s *JWTStrategy) IssueToken(driverID string) (string, error) {
	if driverID == "" {
		return "", fmt.Errorf("issue token: empty driver id")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   driverID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the token and returns the driver id it was issued for.
func (s *JWTStrategy) ParseToken(raw string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domainErrors.ErrInvalidToken
	}
	if c.Subject == "" || !c.VerifyIssuer(issuer, true) {
		return "", domainErrors.ErrInvalidToken
	}
	return c.Subject, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
