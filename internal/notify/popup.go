package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/courieragent/internal/metrics"
)

// Kind selects the popup layout and its auto-dismiss timeout.
type Kind string

const (
	KindOrder   Kind = "order"
	KindWallet  Kind = "wallet"
	KindGeneric Kind = "generic"
)

// Popup is one overlay shown to the driver.
type Popup struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OrderID    string    `json:"orderId,omitempty"`
	WalletType string    `json:"walletType,omitempty"`
	ShownAt    time.Time `json:"shownAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Presenter renders popups on the UI shell.
type Presenter interface {
	ShowPopup(p Popup)
	DismissPopup(id string)
}

// Options holds auto-dismiss timeouts per kind.
type Options struct {
	OrderTimeout   time.Duration
	WalletTimeout  time.Duration
	GenericTimeout time.Duration
}

const (
	defaultOrderTimeout   = 10 * time.Second
	defaultWalletTimeout  = 8 * time.Second
	defaultGenericTimeout = 5 * time.Second
)

// PopupManager keeps at most one popup alive. Showing a popup dismisses the
// current one before the next is presented.
type PopupManager struct {
	presenter Presenter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
	newID     func() string

	mu      sync.Mutex
	current *Popup
	timer   *time.Timer
}

func NewPopupManager(presenter Presenter, m *metrics.Metrics, opts Options, logger *slog.Logger) *PopupManager {
	if opts.OrderTimeout <= 0 {
		opts.OrderTimeout = defaultOrderTimeout
	}
	if opts.WalletTimeout <= 0 {
		opts.WalletTimeout = defaultWalletTimeout
	}
	if opts.GenericTimeout <= 0 {
		opts.GenericTimeout = defaultGenericTimeout
	}
	return &PopupManager{
		presenter: presenter,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Show presents p and returns it with its id and expiry filled in.
func (m *PopupManager) Show(p Popup) Popup {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dismissLocked()

	if p.Kind == "" {
		p.Kind = KindGeneric
	}
	timeout := m.timeout(p.Kind)
	p.ID = m.newID()
	p.ShownAt = m.now()
	p.ExpiresAt = p.ShownAt.Add(timeout)

	m.presenter.ShowPopup(p)
	current := p
	m.current = &current
	id := p.ID
	m.timer = time.AfterFunc(timeout, func() { m.Dismiss(id) })

	if m.metrics != nil {
		m.metrics.Popups.WithLabelValues(string(p.Kind)).Inc()
	}
	m.logger.Debug("popup shown", slog.String("id", p.ID), slog.String("kind", string(p.Kind)))
	return p
}

// Dismiss removes the popup with id if it is still the current one.
func (m *PopupManager) Dismiss(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return false
	}
	m.dismissLocked()
	return true
}

// Current returns the popup on screen, if any.
func (m *PopupManager) Current() (Popup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Popup{}, false
	}
	return *m.current, true
}

// Close dismisses whatever is on screen.
func (m *PopupManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissLocked()
}

func (m *PopupManager) dismissLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.current == nil {
		return
	}
	id := m.current.ID
	m.current = nil
	m.presenter.DismissPopup(id)
	m.logger.Debug("popup dismissed", slog.String("id", id))
}

func (m *PopupManager) timeout(kind Kind) time.Duration {
	switch kind {
	case KindOrder:
		return m.opts.OrderTimeout
	case KindWallet:
		return m.opts.WalletTimeout
	default:
		return m.opts.GenericTimeout
	}
}
