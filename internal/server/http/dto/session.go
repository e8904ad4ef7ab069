package dto

// SignInRequest carries the identity-provider ID token.
type SignInRequest struct {
	IDToken string `json:"idToken"`
}
