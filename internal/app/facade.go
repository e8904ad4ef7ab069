package app

import (
	"context"
	"log/slog"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/usecase"
	"github.com/polkiloo/courieragent/internal/worker"
)

// CourierFacade is the single entry point of the local API into the agent.
type CourierFacade struct {
	auth       *usecase.AuthUseCase
	drivers    *usecase.DriverStatusManager
	tracker    *usecase.OrderTracker
	wallets    *usecase.WalletUseCase
	deliveries *usecase.DeliveryUseCase
	tokens     *usecase.DeviceTokenUseCase
	locations  repository.DriverLocationStore
	tracking   repository.TrackingStore
	device     *worker.DeviceLocation
	popups     *notify.PopupManager
	logger     *slog.Logger
}

// FacadeDeps groups the collaborators of CourierFacade.
type FacadeDeps struct {
	Auth       *usecase.AuthUseCase
	Drivers    *usecase.DriverStatusManager
	Tracker    *usecase.OrderTracker
	Wallets    *usecase.WalletUseCase
	Deliveries *usecase.DeliveryUseCase
	Tokens     *usecase.DeviceTokenUseCase
	Locations  repository.DriverLocationStore
	Tracking   repository.TrackingStore
	Device     *worker.DeviceLocation
	Popups     *notify.PopupManager
	Logger     *slog.Logger
}

func NewCourierFacade(d FacadeDeps) *CourierFacade {
	return &CourierFacade{
		auth:       d.Auth,
		drivers:    d.Drivers,
		tracker:    d.Tracker,
		wallets:    d.Wallets,
		deliveries: d.Deliveries,
		tokens:     d.Tokens,
		locations:  d.Locations,
		tracking:   d.Tracking,
		device:     d.Device,
		popups:     d.Popups,
		logger:     d.Logger,
	}
}

func (f *CourierFacade) SignIn(ctx context.Context, idToken string) (*usecase.Session, error) {
	return f.auth.SignIn(ctx, idToken)
}

func (f *CourierFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

// Profile returns the cached profile of driverID or loads it.
func (f *CourierFacade) Profile(ctx context.Context, driverID string) (*model.Driver, error) {
	if driver, err := f.drivers.Profile(); err == nil && driver.ID == driverID {
		return driver, nil
	}
	return f.drivers.LoadProfile(ctx, driverID)
}

func (f *CourierFacade) RegisterDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	return f.drivers.Register(ctx, driver)
}

func (f *CourierFacade) UpdateDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	return f.drivers.UpdateProfile(ctx, driver)
}

func (f *CourierFacade) SetOnline(ctx context.Context, online bool) (*usecase.ToggleResult, error) {
	return f.drivers.Toggle(ctx, online)
}

func (f *CourierFacade) DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	return f.locations.DriverLocation(ctx, driverID)
}

// ReportLocation records a device fix for the samplers.
func (f *CourierFacade) ReportLocation(latitude, longitude float64) (model.GeoPoint, error) {
	if !usecase.ValidateCoordinates(latitude, longitude) {
		return model.GeoPoint{}, domainErrors.ErrInvalidLocation
	}
	return f.device.Update(latitude, longitude), nil
}

func (f *CourierFacade) CurrentOrder(ctx context.Context, driverID string) *model.TrackingSnapshot {
	return usecase.CurrentOrder(ctx, f.tracking, driverID, f.logger)
}

func (f *CourierFacade) OpenOrder(ctx context.Context, orderID int64) (*usecase.OrderView, error) {
	return f.tracker.Open(ctx, orderID)
}

// OrderView returns the view of orderID if it is the open session.
func (f *CourierFacade) OrderView(orderID int64) (*usecase.OrderView, error) {
	view, err := f.tracker.Current()
	if err != nil {
		return nil, err
	}
	if view.Order.ID != orderID {
		return nil, domainErrors.ErrNoActiveSession
	}
	return view, nil
}

func (f *CourierFacade) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	return f.tracker.UpdateOrderStatus(ctx, orderID, status)
}

func (f *CourierFacade) ConfirmDelivery(ctx context.Context, orderID int64, latitude, longitude float64) (*usecase.OrderView, error) {
	return f.tracker.Confirm(ctx, orderID, latitude, longitude)
}

func (f *CourierFacade) CloseOrder(orderID int64) error {
	return f.tracker.Release(orderID)
}

func (f *CourierFacade) ShowPush(msg notify.PushMessage) notify.Popup {
	return f.popups.Show(notify.FromPush(msg))
}

func (f *CourierFacade) DismissPopup(id string) bool {
	return f.popups.Dismiss(id)
}

func (f *CourierFacade) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	return f.wallets.Wallet(ctx, userID)
}

func (f *CourierFacade) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return f.wallets.Transactions(ctx, userID)
}

func (f *CourierFacade) TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error) {
	return f.wallets.TopUp(ctx, userID, amount)
}

func (f *CourierFacade) Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error) {
	return f.deliveries.Deliveries(ctx, driverID)
}

func (f *CourierFacade) Income(ctx context.Context, driverID, period string) (*model.DeliveryIncome, error) {
	return f.deliveries.Income(ctx, driverID, period)
}

func (f *CourierFacade) DeviceTokens(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	return f.tokens.List(ctx, userID)
}

func (f *CourierFacade) RegisterDeviceToken(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error) {
	return f.tokens.Register(ctx, userID, token, platform)
}
