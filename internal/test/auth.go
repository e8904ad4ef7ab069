package test

import (
	"context"

	pkgAuth "github.com/polkiloo/courieragent/internal/pkg/auth"
)

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(string) (string, error)
	ParseFn func(string) (string, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(driverID string) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(driverID)
	}
	return "token-" + driverID, nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return "driver-1", nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// VerifierStub accepts every identity token unless VerifyFn says otherwise.
type VerifierStub struct {
	VerifyFn func(context.Context, string) (*pkgAuth.Identity, error)
}

// Verify returns the identity named by the token itself.
func (s VerifierStub) Verify(ctx context.Context, idToken string) (*pkgAuth.Identity, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, idToken)
	}
	return &pkgAuth.Identity{UID: idToken}, nil
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      string
	Err     error
	ParseFn func(string) (string, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.ID, nil
}

var _ pkgAuth.Strategy = StrategyStub{}
var _ pkgAuth.IDTokenVerifier = VerifierStub{}
