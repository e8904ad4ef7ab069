package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
)

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
	if strategy.Name() != "jwt" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}

func TestNewJWTStrategy_CustomTTL(t *testing.T) {
	ttl := 2 * time.Hour
	strategy := NewJWTStrategy("secret", Options{TTL: ttl})
	if strategy.ttl != ttl {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken("uid-42")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact jwt, got %q", token)
	}
	driverID, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if driverID != "uid-42" {
		t.Fatalf("unexpected driver id: %s", driverID)
	}
}

func TestJWTStrategy_IssueRequiresDriver(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if _, err := strategy.IssueToken(""); err == nil {
		t.Fatal("expected error for empty driver id")
	}
}

func TestJWTStrategy_ParseRejects(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	valid, _ := strategy.IssueToken("uid-1")

	expired := NewJWTStrategy("secret", Options{TTL: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _ := expired.IssueToken("uid-1")

	otherSecret, _ := NewJWTStrategy("other", Options{}).IssueToken("uid-1")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "uid-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreignToken, _ := foreign.SignedString([]byte("secret"))

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "uid-1", Issuer: issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     valid[:len(valid)-2] + "xx",
		"expired":      expiredToken,
		"other secret": otherSecret,
		"issuer":       foreignToken,
		"alg none":     noneToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, domainErrors.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
