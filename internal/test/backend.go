package test

import (
	"context"
	"sync"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
)

// BackendStub implements backend.Client with function overrides. Methods
// without an override return ErrNotFound wrapped as a 404 backend error.
type BackendStub struct {
	OrderDetailFn           func(context.Context, int64) (*model.OrderDetail, error)
	OrderItemsFn            func(context.Context, int64) ([]model.OrderItem, error)
	UpdateOrderStatusFn     func(context.Context, int64, string) (*model.OrderDetail, error)
	AddressFn               func(context.Context, int64) (*model.Address, error)
	ConfirmDriverLocationFn func(context.Context, int64, float64, float64) (*model.OrderDetail, error)

	CreateDriverFn       func(context.Context, model.Driver) (*model.Driver, error)
	DriverFn             func(context.Context, string) (*model.Driver, error)
	UpdateDriverFn       func(context.Context, model.Driver) (*model.Driver, error)
	UpdateDriverStatusFn func(context.Context, string, string) (*model.Driver, error)

	WalletFn       func(context.Context, string) (*model.Wallet, error)
	TransactionsFn func(context.Context, string) ([]model.Transaction, error)
	TopUpFn        func(context.Context, string, float64) (*model.TopUp, error)

	DeliveriesFn  func(context.Context, string) ([]model.Delivery, error)
	IncomeStatsFn func(context.Context, string, model.IncomePeriod) (*model.DeliveryIncome, error)

	DeviceTokensFn        func(context.Context, string) ([]model.DeviceToken, error)
	RegisterDeviceTokenFn func(context.Context, string, string, string) (*model.DeviceToken, error)

	mu    sync.Mutex
	calls map[string]int
}

// Calls returns how many times the named method ran.
func (s *BackendStub) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *BackendStub) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
}

func notFound() error {
	return &domainErrors.BackendError{StatusCode: 404, Message: "not found"}
}

func (s *BackendStub) OrderDetail(ctx context.Context, orderID int64) (*model.OrderDetail, error) {
	s.record("OrderDetail")
	if s.OrderDetailFn != nil {
		return s.OrderDetailFn(ctx, orderID)
	}
	return nil, notFound()
}

func (s *BackendStub) OrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	s.record("OrderItems")
	if s.OrderItemsFn != nil {
		return s.OrderItemsFn(ctx, orderID)
	}
	return []model.OrderItem{}, nil
}

func (s *BackendStub) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.OrderDetail, error) {
	s.record("UpdateOrderStatus")
	if s.UpdateOrderStatusFn != nil {
		return s.UpdateOrderStatusFn(ctx, orderID, status)
	}
	return &model.OrderDetail{ID: orderID, OrderStatus: status}, nil
}

func (s *BackendStub) Address(ctx context.Context, addressID int64) (*model.Address, error) {
	s.record("Address")
	if s.AddressFn != nil {
		return s.AddressFn(ctx, addressID)
	}
	return nil, notFound()
}

func (s *BackendStub) ConfirmDriverLocation(ctx context.Context, orderID int64, latitude, longitude float64) (*model.OrderDetail, error) {
	s.record("ConfirmDriverLocation")
	if s.ConfirmDriverLocationFn != nil {
		return s.ConfirmDriverLocationFn(ctx, orderID, latitude, longitude)
	}
	return &model.OrderDetail{ID: orderID, OrderStatus: "DELIVERED"}, nil
}

func (s *BackendStub) CreateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	s.record("CreateDriver")
	if s.CreateDriverFn != nil {
		return s.CreateDriverFn(ctx, driver)
	}
	driver.VerificationStatus = model.VerificationPending
	driver.Status = model.DriverStatusOffline
	return &driver, nil
}

func (s *BackendStub) Driver(ctx context.Context, driverID string) (*model.Driver, error) {
	s.record("Driver")
	if s.DriverFn != nil {
		return s.DriverFn(ctx, driverID)
	}
	return nil, notFound()
}

func (s *BackendStub) UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	s.record("UpdateDriver")
	if s.UpdateDriverFn != nil {
		return s.UpdateDriverFn(ctx, driver)
	}
	return &driver, nil
}

func (s *BackendStub) UpdateDriverStatus(ctx context.Context, driverID, status string) (*model.Driver, error) {
	s.record("UpdateDriverStatus")
	if s.UpdateDriverStatusFn != nil {
		return s.UpdateDriverStatusFn(ctx, driverID, status)
	}
	return &model.Driver{ID: driverID, Status: status, VerificationStatus: model.VerificationApproved}, nil
}

func (s *BackendStub) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	s.record("Wallet")
	if s.WalletFn != nil {
		return s.WalletFn(ctx, userID)
	}
	return &model.Wallet{UserID: userID}, nil
}

func (s *BackendStub) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	s.record("Transactions")
	if s.TransactionsFn != nil {
		return s.TransactionsFn(ctx, userID)
	}
	return []model.Transaction{}, nil
}

func (s *BackendStub) TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error) {
	s.record("TopUp")
	if s.TopUpFn != nil {
		return s.TopUpFn(ctx, userID, amount)
	}
	return &model.TopUp{Amount: amount, Status: "PENDING"}, nil
}

func (s *BackendStub) Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error) {
	s.record("Deliveries")
	if s.DeliveriesFn != nil {
		return s.DeliveriesFn(ctx, driverID)
	}
	return []model.Delivery{}, nil
}

func (s *BackendStub) IncomeStats(ctx context.Context, driverID string, period model.IncomePeriod) (*model.DeliveryIncome, error) {
	s.record("IncomeStats")
	if s.IncomeStatsFn != nil {
		return s.IncomeStatsFn(ctx, driverID, period)
	}
	return &model.DeliveryIncome{Period: string(period)}, nil
}

func (s *BackendStub) DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	s.record("DeviceTokens")
	if s.DeviceTokensFn != nil {
		return s.DeviceTokensFn(ctx, userID)
	}
	return []model.DeviceToken{}, nil
}

func (s *BackendStub) RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error) {
	s.record("RegisterDeviceToken")
	if s.RegisterDeviceTokenFn != nil {
		return s.RegisterDeviceTokenFn(ctx, userID, token, platform)
	}
	return &model.DeviceToken{UserID: userID, Token: token, Platform: platform}, nil
}

var _ backend.Client = (*BackendStub)(nil)
