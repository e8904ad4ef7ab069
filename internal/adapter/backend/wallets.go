package backend

import (
	"context"
	"net/http"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// Wallet fetches GET /api/wallets/{userId}.
func (c *HTTPClient) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("wallets", userID), respond: &wallet}); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Transactions fetches GET /api/wallets/{userId}/transactions.
func (c *HTTPClient) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	var dtos []transactionDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("wallets", userID, "transactions"), respond: &dtos}); err != nil {
		return nil, err
	}
	result := make([]model.Transaction, 0, len(dtos))
	for _, d := range dtos {
		result = append(result, d.toModel())
	}
	return result, nil
}

// TopUp creates a payment via POST /api/sepay/topup/{userId}.
func (c *HTTPClient) TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error) {
	var topUp model.TopUp
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    apiPath("sepay", "topup", userID),
		body:    topUpRequest{Amount: amount},
		respond: &topUp,
	})
	if err != nil {
		return nil, err
	}
	return &topUp, nil
}
