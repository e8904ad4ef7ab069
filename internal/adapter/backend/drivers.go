package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// CreateDriver registers a driver profile via POST /api/drivers.
func (c *HTTPClient) CreateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	var dto driverDTO
	if err := c.do(ctx, request{method: http.MethodPost, path: apiPath("drivers"), body: driverFromModel(driver), respond: &dto}); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// Driver fetches GET /api/drivers/{id}.
func (c *HTTPClient) Driver(ctx context.Context, driverID string) (*model.Driver, error) {
	var dto driverDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("drivers", driverID), respond: &dto}); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// UpdateDriver replaces profile fields via PUT /api/drivers/{id}.
func (c *HTTPClient) UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	var dto driverDTO
	if err := c.do(ctx, request{method: http.MethodPut, path: apiPath("drivers", driver.ID), body: driverFromModel(driver), respond: &dto}); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// UpdateDriverStatus calls PATCH /api/drivers/{id}/status?status=.
func (c *HTTPClient) UpdateDriverStatus(ctx context.Context, driverID, status string) (*model.Driver, error) {
	var dto driverDTO
	err := c.do(ctx, request{
		method:  http.MethodPatch,
		path:    apiPath("drivers", driverID, "status"),
		query:   url.Values{"status": {status}},
		respond: &dto,
	})
	if err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}
