package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/courieragent/internal/config"
)

func TestNewTokenStrategy(t *testing.T) {
	strategy := newTokenStrategy(strategyParams{Config: &config.Config{JWTSecret: "top-secret", TokenTTL: time.Hour}})
	jwtStrategy, ok := strategy.(*JWTStrategy)
	if !ok {
		t.Fatalf("expected *JWTStrategy, got %T", strategy)
	}
	if string(jwtStrategy.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(jwtStrategy.secret))
	}
	if jwtStrategy.ttl != time.Hour {
		t.Fatalf("unexpected ttl: %s", jwtStrategy.ttl)
	}
}

func TestNewVerifier(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	v, err := newVerifier(verifierParams{
		Ctx:    context.Background(),
		Config: &config.Config{InsecureAuth: true},
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(InsecureVerifier); !ok {
		t.Fatalf("expected InsecureVerifier, got %T", v)
	}
}
