package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	pkgAuth "github.com/polkiloo/courieragent/internal/pkg/auth"
)

// Session is the result of a sign in.
type Session struct {
	Token      string        `json:"token"`
	DriverID   string        `json:"driverId"`
	Email      string        `json:"email,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	Registered bool          `json:"registered"`
	Driver     *model.Driver `json:"driver,omitempty"`
}

// AuthUseCase exchanges identity-provider tokens for local sessions.
type AuthUseCase struct {
	verifier pkgAuth.IDTokenVerifier
	tokens   pkgAuth.Strategy
	drivers  *DriverStatusManager
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(verifier pkgAuth.IDTokenVerifier, strategy pkgAuth.Strategy, drivers *DriverStatusManager) *AuthUseCase {
	return &AuthUseCase{verifier: verifier, tokens: strategy, drivers: drivers}
}

// SignIn verifies idToken, loads the driver profile and issues a session
// token. A driver without a profile signs in unregistered.
func (u *AuthUseCase) SignIn(ctx context.Context, idToken string) (*Session, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, domainErrors.ErrInvalidToken
	}

	id, err := u.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	token, err := u.tokens.IssueToken(id.UID)
	if err != nil {
		return nil, err
	}

	session := &Session{Token: token, DriverID: id.UID, Email: id.Email, Phone: id.Phone}
	driver, err := u.drivers.LoadProfile(ctx, id.UID)
	var be *domainErrors.BackendError
	switch {
	case err == nil:
		session.Registered = true
		session.Driver = driver
	case errors.As(err, &be) && be.StatusCode == http.StatusNotFound:
	default:
		return nil, err
	}
	return session, nil
}

// ParseToken extracts the driver id from a session token.
func (u *AuthUseCase) ParseToken(token string) (string, error) {
	if token == "" {
		return "", domainErrors.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
