package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
)

// OrderService is the order part of the REST backend.
type OrderService interface {
	OrderDetail(ctx context.Context, orderID int64) (*model.OrderDetail, error)
	OrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.OrderDetail, error)
	Address(ctx context.Context, addressID int64) (*model.Address, error)
	ConfirmDriverLocation(ctx context.Context, orderID int64, latitude, longitude float64) (*model.OrderDetail, error)
}

// DriverService is the driver profile part of the REST backend.
type DriverService interface {
	CreateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error)
	Driver(ctx context.Context, driverID string) (*model.Driver, error)
	UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error)
	UpdateDriverStatus(ctx context.Context, driverID, status string) (*model.Driver, error)
}

// WalletService is the wallet part of the REST backend.
type WalletService interface {
	Wallet(ctx context.Context, userID string) (*model.Wallet, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error)
}

// DeliveryService is the delivery history part of the REST backend.
type DeliveryService interface {
	Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error)
	IncomeStats(ctx context.Context, driverID string, period model.IncomePeriod) (*model.DeliveryIncome, error)
}

// DeviceTokenService registers push tokens.
type DeviceTokenService interface {
	DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error)
	RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error)
}

// Client exposes all operations of the platform REST backend.
type Client interface {
	OrderService
	DriverService
	WalletService
	DeliveryService
	DeviceTokenService
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

const defaultTimeout = 10 * time.Second

// NewHTTPClient creates a backend client. Non-positive timeouts use 10s.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend url must be absolute")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	userID  string
	body    any
	respond any
}

// errorResponse mirrors the error payload of the backend.
type errorResponse struct {
	Message     string `json:"message"`
	Error       string `json:"error"`
	Description string `json:"description"`
	Details     string `json:"details"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Message, e.Error, e.Description, e.Details} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *HTTPClient) do(ctx context.Context, r request) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, r.path)
	if len(r.query) > 0 {
		endpoint.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.userID != "" {
		req.Header.Set("X-User-ID", r.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domainErrors.ErrBackendUnreachable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("backend request failed",
			slog.String("method", r.method),
			slog.String("path", endpoint.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		var payload errorResponse
		_ = json.Unmarshal(data, &payload)
		return &domainErrors.BackendError{StatusCode: resp.StatusCode, Message: payload.text()}
	}

	if r.respond == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.respond); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint.Path, err)
	}
	return nil
}

func apiPath(parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, "/api")
	for _, p := range parts {
		segments = append(segments, fmt.Sprint(p))
	}
	return path.Join(segments...)
}
