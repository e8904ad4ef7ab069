package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
)

// StatusListener is told about every change of the online state.
type StatusListener func(ctx context.Context, driver model.Driver)

// ToggleResult is what the availability switch shows after a toggle.
type ToggleResult struct {
	Driver        model.Driver `json:"driver"`
	IsOnline      bool         `json:"isOnline"`
	ToggleEnabled bool         `json:"toggleEnabled"`
}

// DriverStatusManager keeps the last server view of the driver and drives the
// OFFLINE/ONLINE/BUSY transitions against the backend.
type DriverStatusManager struct {
	drivers backend.DriverService
	logger  *slog.Logger

	mu        sync.RWMutex
	driver    *model.Driver
	listeners []StatusListener
}

// NewDriverStatusManager constructs DriverStatusManager.
func NewDriverStatusManager(drivers backend.DriverService, logger *slog.Logger) *DriverStatusManager {
	return &DriverStatusManager{drivers: drivers, logger: logger}
}

// OnStatusChange registers l. Listeners run after the cached driver changed
// its online state, outside of any lock.
func (m *DriverStatusManager) OnStatusChange(l StatusListener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Profile returns the cached driver.
func (m *DriverStatusManager) Profile() (*model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.driver == nil {
		return nil, domainErrors.ErrProfileNotLoaded
	}
	d := *m.driver
	return &d, nil
}

// LoadProfile re-derives the state from the backend.
func (m *DriverStatusManager) LoadProfile(ctx context.Context, driverID string) (*model.Driver, error) {
	driver, err := m.drivers.Driver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	m.replace(ctx, *driver)
	return driver, nil
}

// Register creates the driver profile.
func (m *DriverStatusManager) Register(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	created, err := m.drivers.CreateDriver(ctx, driver)
	if err != nil {
		return nil, err
	}
	m.replace(ctx, *created)
	return created, nil
}

// UpdateProfile saves profile edits.
func (m *DriverStatusManager) UpdateProfile(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	updated, err := m.drivers.UpdateDriver(ctx, driver)
	if err != nil {
		return nil, err
	}
	m.replace(ctx, *updated)
	return updated, nil
}

// SetStatus asks the backend for the target status. On failure the cached
// driver is left untouched.
func (m *DriverStatusManager) SetStatus(ctx context.Context, target string) (*model.Driver, error) {
	current, err := m.Profile()
	if err != nil {
		return nil, err
	}
	driver, err := m.drivers.UpdateDriverStatus(ctx, current.ID, target)
	if err != nil {
		return nil, fmt.Errorf("set driver status %s: %w", target, err)
	}
	m.replace(ctx, *driver)
	return driver, nil
}

// Toggle applies the availability switch. Going online requires an approved
// driver that is not on a delivery; going offline is always allowed.
func (m *DriverStatusManager) Toggle(ctx context.Context, online bool) (*ToggleResult, error) {
	current, err := m.Profile()
	if err != nil {
		return nil, err
	}

	target := model.DriverStatusOffline
	if online {
		if current.IsBusy() {
			return nil, domainErrors.ErrDriverBusy
		}
		switch current.VerificationStatus {
		case model.VerificationApproved:
		case model.VerificationRejected:
			return nil, domainErrors.ErrVerificationRejected
		default:
			return nil, domainErrors.ErrVerificationPending
		}
		target = model.DriverStatusOnline
	}

	driver, err := m.SetStatus(ctx, target)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{
		Driver:        *driver,
		IsOnline:      driver.IsOnline(),
		ToggleEnabled: !driver.IsBusy(),
	}, nil
}

// ForceOffline takes an online driver offline. Failures are logged only.
func (m *DriverStatusManager) ForceOffline(ctx context.Context) {
	current, err := m.Profile()
	if err != nil || !current.IsOnline() {
		return
	}
	if _, err := m.SetStatus(ctx, model.DriverStatusOffline); err != nil {
		m.logger.Warn("force offline failed", slog.String("driver", current.ID), slog.String("error", err.Error()))
	}
}

func (m *DriverStatusManager) replace(ctx context.Context, driver model.Driver) {
	m.mu.Lock()
	wasOnline := m.driver != nil && m.driver.IsOnline()
	changed := m.driver == nil || m.driver.ID != driver.ID || wasOnline != driver.IsOnline()
	m.driver = &driver
	listeners := append([]StatusListener(nil), m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Info("driver status changed", slog.String("driver", driver.ID), slog.String("status", driver.Status))
	for _, l := range listeners {
		l(ctx, driver)
	}
}
