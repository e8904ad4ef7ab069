package handlers

import (
	"context"

	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/usecase"
)

// SessionFacade describes sign in and token checks.
type SessionFacade interface {
	SignIn(ctx context.Context, idToken string) (*usecase.Session, error)
	ParseToken(token string) (string, error)
}

// DriverFacade covers the driver profile, availability and device location.
type DriverFacade interface {
	Profile(ctx context.Context, driverID string) (*model.Driver, error)
	RegisterDriver(ctx context.Context, driver model.Driver) (*model.Driver, error)
	UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error)
	SetOnline(ctx context.Context, online bool) (*usecase.ToggleResult, error)
	DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error)
	ReportLocation(latitude, longitude float64) (model.GeoPoint, error)
}

// OrderFacade covers the open order session.
type OrderFacade interface {
	CurrentOrder(ctx context.Context, driverID string) *model.TrackingSnapshot
	OpenOrder(ctx context.Context, orderID int64) (*usecase.OrderView, error)
	OrderView(orderID int64) (*usecase.OrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error)
	ConfirmDelivery(ctx context.Context, orderID int64, latitude, longitude float64) (*usecase.OrderView, error)
	CloseOrder(orderID int64) error
}

// NotificationFacade shows and dismisses popups.
type NotificationFacade interface {
	ShowPush(msg notify.PushMessage) notify.Popup
	DismissPopup(id string) bool
}

// WalletFacade covers wallet, delivery history and device tokens.
type WalletFacade interface {
	Wallet(ctx context.Context, userID string) (*model.Wallet, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error)
	Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error)
	Income(ctx context.Context, driverID, period string) (*model.DeliveryIncome, error)
	DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error)
	RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error)
}

// CourierFacade aggregates every operation used across handlers.
type CourierFacade interface {
	SessionFacade
	DriverFacade
	OrderFacade
	NotificationFacade
	WalletFacade
}
