// Package facades holds facade stubs for the HTTP layer tests.
package facades

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/usecase"
)

// SessionFacadeStub provides controllable sign in behaviour.
type SessionFacadeStub struct {
	SignInFn func(context.Context, string) (*usecase.Session, error)
	ParseFn  func(string) (string, error)
}

// SignIn delegates to SignInFn or signs in a registered driver named by the token.
func (s SessionFacadeStub) SignIn(ctx context.Context, idToken string) (*usecase.Session, error) {
	if s.SignInFn != nil {
		return s.SignInFn(ctx, idToken)
	}
	driver := &model.Driver{ID: idToken, VerificationStatus: model.VerificationApproved, Status: model.DriverStatusOffline}
	return &usecase.Session{Token: "token-" + idToken, DriverID: idToken, Registered: true, Driver: driver}, nil
}

// ParseToken accepts every token as driver-1 unless ParseFn says otherwise.
func (s SessionFacadeStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return "driver-1", nil
}

// DriverFacadeStub simulates driver operations.
type DriverFacadeStub struct {
	ProfileFn        func(context.Context, string) (*model.Driver, error)
	RegisterFn       func(context.Context, model.Driver) (*model.Driver, error)
	UpdateFn         func(context.Context, model.Driver) (*model.Driver, error)
	SetOnlineFn      func(context.Context, bool) (*usecase.ToggleResult, error)
	LocationFn       func(context.Context, string) (*model.DriverLocation, error)
	ReportLocationFn func(float64, float64) (model.GeoPoint, error)
}

func (s DriverFacadeStub) Profile(ctx context.Context, driverID string) (*model.Driver, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, driverID)
	}
	return &model.Driver{ID: driverID, FullName: "Driver", VerificationStatus: model.VerificationApproved, Status: model.DriverStatusOffline}, nil
}

func (s DriverFacadeStub) RegisterDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, driver)
	}
	driver.VerificationStatus = model.VerificationPending
	driver.Status = model.DriverStatusOffline
	return &driver, nil
}

func (s DriverFacadeStub) UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, driver)
	}
	return &driver, nil
}

func (s DriverFacadeStub) SetOnline(ctx context.Context, online bool) (*usecase.ToggleResult, error) {
	if s.SetOnlineFn != nil {
		return s.SetOnlineFn(ctx, online)
	}
	status := model.DriverStatusOffline
	if online {
		status = model.DriverStatusOnline
	}
	d := model.Driver{ID: "driver-1", VerificationStatus: model.VerificationApproved, Status: status}
	return &usecase.ToggleResult{Driver: d, IsOnline: online, ToggleEnabled: true}, nil
}

func (s DriverFacadeStub) DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	if s.LocationFn != nil {
		return s.LocationFn(ctx, driverID)
	}
	return nil, domainErrors.ErrNotFound
}

func (s DriverFacadeStub) ReportLocation(latitude, longitude float64) (model.GeoPoint, error) {
	if s.ReportLocationFn != nil {
		return s.ReportLocationFn(latitude, longitude)
	}
	return model.GeoPoint{Latitude: latitude, Longitude: longitude, RecordedAt: time.Unix(0, 0)}, nil
}

// OrderFacadeStub simulates the order session.
type OrderFacadeStub struct {
	CurrentFn      func(context.Context, string) *model.TrackingSnapshot
	OpenFn         func(context.Context, int64) (*usecase.OrderView, error)
	ViewFn         func(int64) (*usecase.OrderView, error)
	UpdateStatusFn func(context.Context, int64, string) (*model.Order, error)
	ConfirmFn      func(context.Context, int64, float64, float64) (*usecase.OrderView, error)
	CloseFn        func(int64) error
}

func (s OrderFacadeStub) CurrentOrder(ctx context.Context, driverID string) *model.TrackingSnapshot {
	if s.CurrentFn != nil {
		return s.CurrentFn(ctx, driverID)
	}
	return nil
}

func (s OrderFacadeStub) OpenOrder(ctx context.Context, orderID int64) (*usecase.OrderView, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, orderID)
	}
	return &usecase.OrderView{Order: model.Order{ID: orderID, CustomerName: model.DefaultCustomerName, Status: model.OrderStatusPending}, Items: []model.OrderItem{}}, nil
}

func (s OrderFacadeStub) OrderView(orderID int64) (*usecase.OrderView, error) {
	if s.ViewFn != nil {
		return s.ViewFn(orderID)
	}
	return nil, domainErrors.ErrNoActiveSession
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status)
	}
	return &model.Order{ID: orderID, Status: model.MapOrderStatus(status)}, nil
}

func (s OrderFacadeStub) ConfirmDelivery(ctx context.Context, orderID int64, latitude, longitude float64) (*usecase.OrderView, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID, latitude, longitude)
	}
	return &usecase.OrderView{Order: model.Order{ID: orderID, Status: model.OrderStatusDelivered}, Completed: true}, nil
}

func (s OrderFacadeStub) CloseOrder(orderID int64) error {
	if s.CloseFn != nil {
		return s.CloseFn(orderID)
	}
	return nil
}

// NotificationFacadeStub records popups instead of presenting them.
type NotificationFacadeStub struct {
	ShowFn    func(notify.PushMessage) notify.Popup
	DismissFn func(string) bool
}

func (s NotificationFacadeStub) ShowPush(msg notify.PushMessage) notify.Popup {
	if s.ShowFn != nil {
		return s.ShowFn(msg)
	}
	p := notify.FromPush(msg)
	p.ID = "popup-1"
	return p
}

func (s NotificationFacadeStub) DismissPopup(id string) bool {
	if s.DismissFn != nil {
		return s.DismissFn(id)
	}
	return id == "popup-1"
}

// WalletFacadeStub simulates wallet, delivery and device token reads.
type WalletFacadeStub struct {
	WalletFn        func(context.Context, string) (*model.Wallet, error)
	TransactionsFn  func(context.Context, string) ([]model.Transaction, error)
	TopUpFn         func(context.Context, string, float64) (*model.TopUp, error)
	DeliveriesFn    func(context.Context, string) ([]model.Delivery, error)
	IncomeFn        func(context.Context, string, string) (*model.DeliveryIncome, error)
	DeviceTokensFn  func(context.Context, string) ([]model.DeviceToken, error)
	RegisterTokenFn func(context.Context, string, string, string) (*model.DeviceToken, error)
}

func (s WalletFacadeStub) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	if s.WalletFn != nil {
		return s.WalletFn(ctx, userID)
	}
	return &model.Wallet{UserID: userID, Balance: 100}, nil
}

func (s WalletFacadeStub) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if s.TransactionsFn != nil {
		return s.TransactionsFn(ctx, userID)
	}
	return []model.Transaction{}, nil
}

func (s WalletFacadeStub) TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error) {
	if s.TopUpFn != nil {
		return s.TopUpFn(ctx, userID, amount)
	}
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	return &model.TopUp{Amount: amount, Status: "PENDING"}, nil
}

func (s WalletFacadeStub) Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error) {
	if s.DeliveriesFn != nil {
		return s.DeliveriesFn(ctx, driverID)
	}
	return []model.Delivery{}, nil
}

func (s WalletFacadeStub) Income(ctx context.Context, driverID, period string) (*model.DeliveryIncome, error) {
	if s.IncomeFn != nil {
		return s.IncomeFn(ctx, driverID, period)
	}
	p, ok := model.ParseIncomePeriod(period)
	if !ok {
		return nil, domainErrors.ErrInvalidPeriod
	}
	return &model.DeliveryIncome{Period: string(p)}, nil
}

func (s WalletFacadeStub) DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	if s.DeviceTokensFn != nil {
		return s.DeviceTokensFn(ctx, userID)
	}
	return []model.DeviceToken{}, nil
}

func (s WalletFacadeStub) RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error) {
	if s.RegisterTokenFn != nil {
		return s.RegisterTokenFn(ctx, userID, token, platform)
	}
	if token == "" {
		return nil, domainErrors.ErrInvalidDeviceToken
	}
	return &model.DeviceToken{UserID: userID, Token: token, Platform: platform}, nil
}

// CourierFacadeStub aggregates all facade stubs.
type CourierFacadeStub struct {
	SessionFacadeStub
	DriverFacadeStub
	OrderFacadeStub
	NotificationFacadeStub
	WalletFacadeStub
}
