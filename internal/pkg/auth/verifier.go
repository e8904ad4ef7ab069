package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
)

// Identity is the authenticated user behind an identity-provider token.
type Identity struct {
	UID   string
	Email string
	Phone string
}

// IDTokenVerifier exchanges an identity-provider token for an Identity.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// firebaseTokenClient is the part of the admin SDK auth client in use.
type firebaseTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks signature, audience and expiry with the admin SDK.
type FirebaseVerifier struct {
	client firebaseTokenClient
}

func NewFirebaseVerifier(client firebaseTokenClient) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidToken, err)
	}
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if phone, ok := token.Claims["phone_number"].(string); ok {
		id.Phone = phone
	}
	return id, nil
}

// InsecureVerifier reads the claims of a token without checking its
// signature. It exists for local development against emulators.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, domainErrors.ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, domainErrors.ErrInvalidToken
	}

	var c struct {
		Sub         string `json:"sub"`
		UserID      string `json:"user_id"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, domainErrors.ErrInvalidToken
	}

	uid := c.UserID
	if uid == "" {
		uid = c.Sub
	}
	if uid == "" {
		return nil, domainErrors.ErrInvalidToken
	}
	return &Identity{UID: uid, Email: c.Email, Phone: c.PhoneNumber}, nil
}
