package auth

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/adapter/firebase"
	"github.com/polkiloo/courieragent/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newTokenStrategy),
	fx.Provide(newVerifier),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewJWTStrategy(p.Config.JWTSecret, Options{TTL: p.Config.TokenTTL})
}

type verifierParams struct {
	fx.In

	Ctx      context.Context
	Config   *config.Config
	Firebase *firebase.App
	Logger   *slog.Logger
}

func newVerifier(p verifierParams) (IDTokenVerifier, error) {
	if p.Config.InsecureAuth {
		p.Logger.Warn("identity tokens are not verified")
		return InsecureVerifier{}, nil
	}
	client, err := p.Firebase.Auth(p.Ctx)
	if err != nil {
		return nil, err
	}
	return NewFirebaseVerifier(client), nil
}
