package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/metrics"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/server/http/dto"
	"github.com/polkiloo/courieragent/internal/server/http/middleware"
	"github.com/polkiloo/courieragent/internal/server/ws"
	testhelpers "github.com/polkiloo/courieragent/internal/test"
	"github.com/polkiloo/courieragent/internal/test/facades"
	"github.com/polkiloo/courieragent/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		c.Set(middleware.DriverIDContextKey, "driver-1")
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestCurrentDriverID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentDriverID(c); got != "" {
		t.Fatalf("expected empty id when not set, got %q", got)
	}

	c.Set(middleware.DriverIDContextKey, "driver-42")
	if got := CurrentDriverID(c); got != "driver-42" {
		t.Fatalf("expected driver-42, got %q", got)
	}
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"backend 404", &domainErrors.BackendError{StatusCode: http.StatusNotFound}, http.StatusBadGateway, domainErrors.MessageConnectionLost},
		{"backend 500", fmt.Errorf("confirm: %w", &domainErrors.BackendError{StatusCode: http.StatusInternalServerError}), http.StatusBadGateway, domainErrors.MessageWrongLocation},
		{"unreachable", fmt.Errorf("%w: dial tcp", domainErrors.ErrBackendUnreachable), http.StatusBadGateway, domainErrors.MessageUnreachable},
		{"pending", domainErrors.ErrVerificationPending, http.StatusConflict, domainErrors.ErrVerificationPending.Error()},
		{"busy", domainErrors.ErrDriverBusy, http.StatusConflict, domainErrors.ErrDriverBusy.Error()},
		{"rejected", domainErrors.ErrVerificationRejected, http.StatusForbidden, domainErrors.ErrVerificationRejected.Error()},
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound, domainErrors.ErrNotFound.Error()},
		{"no session", domainErrors.ErrNoActiveSession, http.StatusNotFound, domainErrors.ErrNoActiveSession.Error()},
		{"no profile", domainErrors.ErrProfileNotLoaded, http.StatusNotFound, domainErrors.ErrProfileNotLoaded.Error()},
		{"invalid token", domainErrors.ErrInvalidToken, http.StatusUnauthorized, domainErrors.ErrInvalidToken.Error()},
		{"invalid amount", domainErrors.ErrInvalidAmount, http.StatusBadRequest, domainErrors.ErrInvalidAmount.Error()},
		{"invalid period", domainErrors.ErrInvalidPeriod, http.StatusBadRequest, domainErrors.ErrInvalidPeriod.Error()},
		{"invalid device token", domainErrors.ErrInvalidDeviceToken, http.StatusBadRequest, domainErrors.ErrInvalidDeviceToken.Error()},
		{"invalid location", domainErrors.ErrInvalidLocation, http.StatusUnprocessableEntity, domainErrors.ErrInvalidLocation.Error()},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, domainErrors.MessageGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodGet, "/", "/", func(c *gin.Context) { writeError(c, tc.err) }, nil)
			if resp.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.Code)
			}
			if got := decodeError(t, resp); got != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, got)
			}
		})
	}
}

func TestSessionHandlerSignIn(t *testing.T) {
	body, _ := json.Marshal(dto.SignInRequest{IDToken: "driver-7"})
	resp := performRequest(t, http.MethodPost, "/session", "/session", NewSessionHandler(facades.SessionFacadeStub{}).SignIn, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") != "Bearer token-driver-7" {
		t.Fatalf("expected auth header to be set, got %q", resp.Header().Get("Authorization"))
	}
	var session dto.SessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.DriverID != "driver-7" || !session.Registered || session.Driver == nil {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestSessionHandlerSignInErrors(t *testing.T) {
	handler := NewSessionHandler(facades.SessionFacadeStub{}).SignIn
	resp := performRequest(t, http.MethodPost, "/session", "/session", handler, []byte("{"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}

	handler = NewSessionHandler(facades.SessionFacadeStub{SignInFn: func(context.Context, string) (*usecase.Session, error) {
		return nil, domainErrors.ErrInvalidToken
	}}).SignIn
	body, _ := json.Marshal(dto.SignInRequest{IDToken: "bad"})
	resp = performRequest(t, http.MethodPost, "/session", "/session", handler, body)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") != "" {
		t.Fatalf("expected no auth header on failure")
	}
}

func TestDriverHandlerProfile(t *testing.T) {
	var gotID string
	handler := NewDriverHandler(facades.DriverFacadeStub{ProfileFn: func(_ context.Context, id string) (*model.Driver, error) {
		gotID = id
		return &model.Driver{ID: id, FullName: "Nguyen Van A", Status: model.DriverStatusOnline, VerificationStatus: model.VerificationApproved}, nil
	}}).Profile
	resp := performRequest(t, http.MethodGet, "/driver", "/driver", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotID != "driver-1" {
		t.Fatalf("expected driver id from context, got %q", gotID)
	}
	var driver dto.DriverResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &driver); err != nil {
		t.Fatalf("decode driver: %v", err)
	}
	if !driver.IsOnline || driver.FullName != "Nguyen Van A" {
		t.Fatalf("unexpected driver: %+v", driver)
	}

	handler = NewDriverHandler(facades.DriverFacadeStub{ProfileFn: func(context.Context, string) (*model.Driver, error) {
		return nil, domainErrors.ErrNotFound
	}}).Profile
	resp = performRequest(t, http.MethodGet, "/driver", "/driver", handler, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDriverHandlerRegister(t *testing.T) {
	handler := NewDriverHandler(facades.DriverFacadeStub{}).Register

	body, _ := json.Marshal(dto.DriverRequest{FullName: "Driver"})
	resp := performRequest(t, http.MethodPost, "/driver", "/driver", handler, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without phone, got %d", resp.Code)
	}

	body, _ = json.Marshal(dto.DriverRequest{FullName: "Driver", Phone: "0900000000", VehiclePlate: "59X1-12345"})
	resp = performRequest(t, http.MethodPost, "/driver", "/driver", handler, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var driver dto.DriverResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &driver); err != nil {
		t.Fatalf("decode driver: %v", err)
	}
	if driver.ID != "driver-1" || driver.VehiclePlate != "59X1-12345" {
		t.Fatalf("unexpected driver: %+v", driver)
	}
	if driver.VerificationStatus != string(model.VerificationPending) {
		t.Fatalf("expected pending verification, got %q", driver.VerificationStatus)
	}
}

func TestDriverHandlerUpdate(t *testing.T) {
	var got model.Driver
	handler := NewDriverHandler(facades.DriverFacadeStub{UpdateFn: func(_ context.Context, d model.Driver) (*model.Driver, error) {
		got = d
		return &d, nil
	}}).Update
	body, _ := json.Marshal(dto.DriverRequest{Address: "12 Le Loi"})
	resp := performRequest(t, http.MethodPut, "/driver", "/driver", handler, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got.ID != "driver-1" || got.Address != "12 Le Loi" {
		t.Fatalf("unexpected update: %+v", got)
	}

	resp = performRequest(t, http.MethodPut, "/driver", "/driver", handler, []byte("nope"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDriverHandlerSetStatus(t *testing.T) {
	handler := NewDriverHandler(facades.DriverFacadeStub{}).SetStatus

	resp := performRequest(t, http.MethodPost, "/status", "/status", handler, []byte(`{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without online flag, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/status", "/status", handler, []byte(`{"online":true}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var status dto.StatusResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.IsOnline || !status.ToggleEnabled || !status.Driver.IsOnline {
		t.Fatalf("unexpected status: %+v", status)
	}

	cases := []struct {
		err    error
		status int
	}{
		{domainErrors.ErrVerificationPending, http.StatusConflict},
		{domainErrors.ErrVerificationRejected, http.StatusForbidden},
		{domainErrors.ErrProfileNotLoaded, http.StatusNotFound},
	}
	for _, tc := range cases {
		handler = NewDriverHandler(facades.DriverFacadeStub{SetOnlineFn: func(context.Context, bool) (*usecase.ToggleResult, error) {
			return nil, tc.err
		}}).SetStatus
		resp = performRequest(t, http.MethodPost, "/status", "/status", handler, []byte(`{"online":true}`))
		if resp.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, resp.Code)
		}
	}
}

func TestDriverHandlerLocation(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/loc", "/loc", NewDriverHandler(facades.DriverFacadeStub{}).Location, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without location, got %d", resp.Code)
	}

	handler := NewDriverHandler(facades.DriverFacadeStub{LocationFn: func(_ context.Context, id string) (*model.DriverLocation, error) {
		return &model.DriverLocation{DriverID: id, Latitude: 10.7, Longitude: 106.6, IsOnline: true}, nil
	}}).Location
	resp = performRequest(t, http.MethodGet, "/loc", "/loc", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var loc model.DriverLocation
	if err := json.Unmarshal(resp.Body.Bytes(), &loc); err != nil {
		t.Fatalf("decode location: %v", err)
	}
	if loc.DriverID != "driver-1" || !loc.IsOnline {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestDriverHandlerReportLocation(t *testing.T) {
	handler := NewDriverHandler(facades.DriverFacadeStub{}).ReportLocation

	resp := performRequest(t, http.MethodPost, "/location", "/location", handler, []byte(`{"latitude":10.7}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without longitude, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/location", "/location", handler, []byte(`{"latitude":10.7,"longitude":106.6}`))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	var loc dto.LocationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &loc); err != nil {
		t.Fatalf("decode location: %v", err)
	}
	if loc.Latitude != 10.7 || loc.Longitude != 106.6 {
		t.Fatalf("unexpected location: %+v", loc)
	}

	handler = NewDriverHandler(facades.DriverFacadeStub{ReportLocationFn: func(float64, float64) (model.GeoPoint, error) {
		return model.GeoPoint{}, domainErrors.ErrInvalidLocation
	}}).ReportLocation
	resp = performRequest(t, http.MethodPost, "/location", "/location", handler, []byte(`{"latitude":0,"longitude":0}`))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestOrderHandlerCurrent(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/orders/current", "/orders/current", NewOrderHandler(facades.OrderFacadeStub{}).Current, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 without order, got %d", resp.Code)
	}

	handler := NewOrderHandler(facades.OrderFacadeStub{CurrentFn: func(_ context.Context, id string) *model.TrackingSnapshot {
		return &model.TrackingSnapshot{OrderID: 9, DriverID: id, Status: string(model.OrderStatusPickedUp)}
	}}).Current
	resp = performRequest(t, http.MethodGet, "/orders/current", "/orders/current", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snapshot model.TrackingSnapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.OrderID != 9 || snapshot.DriverID != "driver-1" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestOrderHandlerOpen(t *testing.T) {
	handler := NewOrderHandler(facades.OrderFacadeStub{}).Open
	resp := performRequest(t, http.MethodPost, "/orders/:id/open", "/orders/abc/open", handler, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPost, "/orders/:id/open", "/orders/0/open", handler, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero id, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/orders/:id/open", "/orders/15/open", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items list, got %s", resp.Body.String())
	}
	var view usecase.OrderView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Order.ID != 15 || view.Order.CustomerName != model.DefaultCustomerName {
		t.Fatalf("unexpected view: %+v", view)
	}

	handler = NewOrderHandler(facades.OrderFacadeStub{OpenFn: func(context.Context, int64) (*usecase.OrderView, error) {
		return nil, fmt.Errorf("load order: %w", domainErrors.ErrBackendUnreachable)
	}}).Open
	resp = performRequest(t, http.MethodPost, "/orders/:id/open", "/orders/15/open", handler, nil)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if got := decodeError(t, resp); got != domainErrors.MessageUnreachable {
		t.Fatalf("expected unreachable message, got %q", got)
	}
}

func TestOrderHandlerOpenPassesOrderID(t *testing.T) {
	orderID := testhelpers.RandomOrderID()
	handler := NewOrderHandler(facades.OrderFacadeStub{OpenFn: func(_ context.Context, got int64) (*usecase.OrderView, error) {
		if got != orderID {
			return nil, fmt.Errorf("unexpected order %d", got)
		}
		return &usecase.OrderView{Order: model.Order{ID: got}}, nil
	}}).Open
	resp := performRequest(t, http.MethodPost, "/orders/:id/open", fmt.Sprintf("/orders/%d/open", orderID), handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestOrderHandlerGet(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/orders/:id", "/orders/3", NewOrderHandler(facades.OrderFacadeStub{}).Get, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without session, got %d", resp.Code)
	}

	handler := NewOrderHandler(facades.OrderFacadeStub{ViewFn: func(id int64) (*usecase.OrderView, error) {
		return &usecase.OrderView{Order: model.Order{ID: id, Status: model.OrderStatusDelivering}}, nil
	}}).Get
	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/3", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestOrderHandlerUpdateStatus(t *testing.T) {
	var gotStatus string
	handler := NewOrderHandler(facades.OrderFacadeStub{UpdateStatusFn: func(_ context.Context, id int64, status string) (*model.Order, error) {
		gotStatus = status
		return &model.Order{ID: id, Status: model.MapOrderStatus(status)}, nil
	}}).UpdateStatus

	resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/4/status", handler, []byte(`{"status":" "}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank status, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/4/status", handler, []byte(`{"status":"shipping"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotStatus != "SHIPPING" {
		t.Fatalf("expected upper-cased status, got %q", gotStatus)
	}

	handler = NewOrderHandler(facades.OrderFacadeStub{UpdateStatusFn: func(context.Context, int64, string) (*model.Order, error) {
		return nil, &domainErrors.BackendError{StatusCode: http.StatusNotFound}
	}}).UpdateStatus
	resp = performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/4/status", handler, []byte(`{"status":"SHIPPING"}`))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if got := decodeError(t, resp); got != domainErrors.MessageConnectionLost {
		t.Fatalf("expected connection lost message, got %q", got)
	}
}

func TestOrderHandlerConfirm(t *testing.T) {
	var gotLat, gotLng float64
	handler := NewOrderHandler(facades.OrderFacadeStub{ConfirmFn: func(_ context.Context, id int64, lat, lng float64) (*usecase.OrderView, error) {
		gotLat, gotLng = lat, lng
		return &usecase.OrderView{Order: model.Order{ID: id, Status: model.OrderStatusDelivered}, Completed: true}, nil
	}}).Confirm

	resp := performRequest(t, http.MethodPost, "/orders/:id/confirm", "/orders/5/confirm", handler, []byte(`{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without coordinates, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/orders/:id/confirm", "/orders/5/confirm", handler, []byte(`{"latitude":10.77,"longitude":106.69}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotLat != 10.77 || gotLng != 106.69 {
		t.Fatalf("unexpected coordinates %v,%v", gotLat, gotLng)
	}
	var view usecase.OrderView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if !view.Completed {
		t.Fatalf("expected completed view")
	}

	handler = NewOrderHandler(facades.OrderFacadeStub{ConfirmFn: func(context.Context, int64, float64, float64) (*usecase.OrderView, error) {
		return nil, &domainErrors.BackendError{StatusCode: http.StatusInternalServerError}
	}}).Confirm
	resp = performRequest(t, http.MethodPost, "/orders/:id/confirm", "/orders/5/confirm", handler, []byte(`{"latitude":1,"longitude":1}`))
	if got := decodeError(t, resp); got != domainErrors.MessageWrongLocation {
		t.Fatalf("expected wrong location message, got %q", got)
	}
}

func TestOrderHandlerClose(t *testing.T) {
	resp := performRequest(t, http.MethodDelete, "/orders/:id", "/orders/5", NewOrderHandler(facades.OrderFacadeStub{}).Close, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	handler := NewOrderHandler(facades.OrderFacadeStub{CloseFn: func(int64) error {
		return domainErrors.ErrNoActiveSession
	}}).Close
	resp = performRequest(t, http.MethodDelete, "/orders/:id", "/orders/5", handler, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestNotificationHandlerPush(t *testing.T) {
	handler := NewNotificationHandler(facades.NotificationFacadeStub{}).Push
	body, _ := json.Marshal(dto.PushRequest{Data: map[string]string{"type": "delivery", "orderId": "77"}})
	resp := performRequest(t, http.MethodPost, "/notifications", "/notifications", handler, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var popup notify.Popup
	if err := json.Unmarshal(resp.Body.Bytes(), &popup); err != nil {
		t.Fatalf("decode popup: %v", err)
	}
	if popup.ID != "popup-1" || popup.Kind != notify.KindOrder || popup.OrderID != "77" {
		t.Fatalf("unexpected popup: %+v", popup)
	}
	if popup.Title != notify.DefaultTitle {
		t.Fatalf("expected default title, got %q", popup.Title)
	}

	resp = performRequest(t, http.MethodPost, "/notifications", "/notifications", handler, []byte("["))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestNotificationHandlerDismiss(t *testing.T) {
	handler := NewNotificationHandler(facades.NotificationFacadeStub{}).Dismiss
	resp := performRequest(t, http.MethodDelete, "/notifications/:id", "/notifications/popup-1", handler, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodDelete, "/notifications/:id", "/notifications/other", handler, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestWalletHandlerReads(t *testing.T) {
	h := NewWalletHandler(facades.WalletFacadeStub{})
	cases := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"wallet", h.Wallet},
		{"transactions", h.Transactions},
		{"deliveries", h.Deliveries},
		{"device tokens", h.DeviceTokens},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodGet, "/", "/", tc.handler, nil)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
		})
	}

	h = NewWalletHandler(facades.WalletFacadeStub{WalletFn: func(context.Context, string) (*model.Wallet, error) {
		return nil, fmt.Errorf("%w: timeout", domainErrors.ErrBackendUnreachable)
	}})
	resp := performRequest(t, http.MethodGet, "/", "/", h.Wallet, nil)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestWalletHandlerTopUp(t *testing.T) {
	handler := NewWalletHandler(facades.WalletFacadeStub{}).TopUp
	resp := performRequest(t, http.MethodPost, "/topup", "/topup", handler, []byte(`{"amount":50000}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPost, "/topup", "/topup", handler, []byte(`{"amount":-1}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestWalletHandlerIncome(t *testing.T) {
	handler := NewWalletHandler(facades.WalletFacadeStub{}).Income
	resp := performRequest(t, http.MethodGet, "/income", "/income?period=weekly", handler, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var income model.DeliveryIncome
	if err := json.Unmarshal(resp.Body.Bytes(), &income); err != nil {
		t.Fatalf("decode income: %v", err)
	}
	if income.Period != string(model.IncomeWeekly) {
		t.Fatalf("expected weekly period, got %q", income.Period)
	}

	resp = performRequest(t, http.MethodGet, "/income", "/income?period=decade", handler, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestWalletHandlerRegisterDeviceToken(t *testing.T) {
	handler := NewWalletHandler(facades.WalletFacadeStub{}).RegisterDeviceToken
	body, _ := json.Marshal(dto.DeviceTokenRequest{Token: "fcm-token", Platform: "android"})
	resp := performRequest(t, http.MethodPost, "/tokens", "/tokens", handler, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var token model.DeviceToken
	if err := json.Unmarshal(resp.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.UserID != "driver-1" || token.Token != "fcm-token" {
		t.Fatalf("unexpected token: %+v", token)
	}

	body, _ = json.Marshal(dto.DeviceTokenRequest{Platform: "android"})
	resp = performRequest(t, http.MethodPost, "/tokens", "/tokens", handler, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStreamHandlerOrderWithoutSession(t *testing.T) {
	hub := ws.NewHub(metrics.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := NewStreamHandler(hub, facades.OrderFacadeStub{}, slog.New(slog.NewTextHandler(io.Discard, nil))).Order

	resp := performRequest(t, http.MethodGet, "/orders/:id/stream", "/orders/8/stream", handler, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without open session, got %d", resp.Code)
	}
	if hub.ClientCount(ws.OrderTopic(8)) != 0 {
		t.Fatalf("expected no stream clients")
	}
}

func TestStreamHandlerRejectsPlainRequest(t *testing.T) {
	hub := ws.NewHub(metrics.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := NewStreamHandler(hub, facades.OrderFacadeStub{}, slog.New(slog.NewTextHandler(io.Discard, nil))).Feed

	resp := performRequest(t, http.MethodGet, "/feed", "/feed", handler, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non websocket request, got %d", resp.Code)
	}
}
