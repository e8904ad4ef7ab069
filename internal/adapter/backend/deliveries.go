package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// Deliveries fetches GET /api/deliveries/driver/{driverId}.
func (c *HTTPClient) Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error) {
	var deliveries []model.Delivery
	if err := c.do(ctx, request{method: http.MethodGet, path: apiPath("deliveries", "driver", driverID), respond: &deliveries}); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// IncomeStats fetches GET /api/deliveries/driver/{driverId}/income-stats?period=.
func (c *HTTPClient) IncomeStats(ctx context.Context, driverID string, period model.IncomePeriod) (*model.DeliveryIncome, error) {
	var income model.DeliveryIncome
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    apiPath("deliveries", "driver", driverID, "income-stats"),
		query:   url.Values{"period": {string(period)}},
		respond: &income,
	})
	if err != nil {
		return nil, err
	}
	return &income, nil
}
