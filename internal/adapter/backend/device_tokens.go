package backend

import (
	"context"
	"net/http"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// DeviceTokens fetches GET /api/device-tokens for the user in X-User-ID.
func (c *HTTPClient) DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	var tokens []model.DeviceToken
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("device-tokens"), userID: userID, respond: &tokens}); err != nil {
		return nil, err
	}
	return tokens, nil
}

// RegisterDeviceToken calls POST /api/device-tokens for the user in X-User-ID.
func (c *HTTPClient) RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error) {
	var registered model.DeviceToken
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    apiPath("device-tokens"),
		userID:  userID,
		body:    deviceTokenRequest{Token: token, Platform: platform},
		respond: &registered,
	})
	if err != nil {
		return nil, err
	}
	return &registered, nil
}
