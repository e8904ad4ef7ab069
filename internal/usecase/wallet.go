package usecase

import (
	"context"
	"strings"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
)

// WalletUseCase manages the driver balance.
type WalletUseCase struct {
	wallets backend.WalletService
}

// NewWalletUseCase constructs WalletUseCase.
func NewWalletUseCase(wallets backend.WalletService) *WalletUseCase {
	return &WalletUseCase{wallets: wallets}
}

// Wallet returns the balance summary.
func (u *WalletUseCase) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	return u.wallets.Wallet(ctx, userID)
}

// Transactions returns the wallet history.
func (u *WalletUseCase) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return u.wallets.Transactions(ctx, userID)
}

// TopUp starts a deposit through the payment provider.
func (u *WalletUseCase) TopUp(ctx context.Context, userID string, amount float64) (*model.TopUp, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.wallets.TopUp(ctx, userID, amount)
}

// DeliveryUseCase reads the delivery history.
type DeliveryUseCase struct {
	deliveries backend.DeliveryService
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(deliveries backend.DeliveryService) *DeliveryUseCase {
	return &DeliveryUseCase{deliveries: deliveries}
}

func (u *DeliveryUseCase) Deliveries(ctx context.Context, driverID string) ([]model.Delivery, error) {
	return u.deliveries.Deliveries(ctx, driverID)
}

// Income returns earnings for daily, weekly or monthly periods.
func (u *DeliveryUseCase) Income(ctx context.Context, driverID, period string) (*model.DeliveryIncome, error) {
	p, ok := model.ParseIncomePeriod(period)
	if !ok {
		return nil, domainErrors.ErrInvalidPeriod
	}
	return u.deliveries.IncomeStats(ctx, driverID, p)
}

// DefaultPlatform is registered when the caller names none.
const DefaultPlatform = "ANDROID"

// DeviceTokenUseCase registers push tokens.
type DeviceTokenUseCase struct {
	tokens backend.DeviceTokenService
}

// NewDeviceTokenUseCase constructs DeviceTokenUseCase.
func NewDeviceTokenUseCase(tokens backend.DeviceTokenService) *DeviceTokenUseCase {
	return &DeviceTokenUseCase{tokens: tokens}
}

func (u *DeviceTokenUseCase) List(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	return u.tokens.DeviceTokens(ctx, userID)
}

// Register stores a push token for the user.
func (u *DeviceTokenUseCase) Register(ctx context.Context, userID, token, platform string) (*model.DeviceToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainErrors.ErrInvalidDeviceToken
	}
	platform = strings.ToUpper(strings.TrimSpace(platform))
	if platform == "" {
		platform = DefaultPlatform
	}
	return u.tokens.RegisterDeviceToken(ctx, userID, token, platform)
}
