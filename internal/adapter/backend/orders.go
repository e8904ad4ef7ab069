package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// OrderDetail fetches GET /api/orders/{id}.
func (c *HTTPClient) OrderDetail(ctx context.Context, orderID int64) (*model.OrderDetail, error) {
	var dto orderDetailDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("orders", orderID), respond: &dto}); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// OrderItems fetches GET /api/order-items/order/{orderId}.
func (c *HTTPClient) OrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("order-items", "order", orderID), respond: &items}); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateOrderStatus calls PATCH /api/orders/{id}/status?status=.
func (c *HTTPClient) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.OrderDetail, error) {
	var dto orderDetailDTO
	err := c.do(ctx, request{
		method:  http.MethodPatch,
		path:    apiPath("orders", orderID, "status"),
		query:   url.Values{"status": {status}},
		respond: &dto,
	})
	if err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// Address fetches GET /api/addresses/{id}.
func (c *HTTPClient) Address(ctx context.Context, addressID int64) (*model.Address, error) {
	var dto addressDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("addresses", addressID), respond: &dto}); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// ConfirmDriverLocation calls POST /api/orders/{id}/driver-location-confirm?lat=&lng=.
func (c *HTTPClient) ConfirmDriverLocation(ctx context.Context, orderID int64, latitude, longitude float64) (*model.OrderDetail, error) {
	var dto orderDetailDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   apiPath("orders", orderID, "driver-location-confirm"),
		query: url.Values{
			"lat": {strconv.FormatFloat(latitude, 'f', -1, 64)},
			"lng": {strconv.FormatFloat(longitude, 'f', -1, 64)},
		},
		respond: &dto,
	})
	if err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}
