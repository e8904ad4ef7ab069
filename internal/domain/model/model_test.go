package model

import (
	"testing"
	"time"
)

func TestMapOrderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want OrderStatus
	}{
		{"PENDING", OrderStatusPending},
		{"CONFIRMED", OrderStatusAccepted},
		{"ACCEPTED", OrderStatusAccepted},
		{"PREPARING", OrderStatusAccepted},
		{"preparing", OrderStatusAccepted},
		{"READY_FOR_PICKUP", OrderStatusPickedUp},
		{"SHIPPING", OrderStatusDelivering},
		{"Shipping", OrderStatusDelivering},
		{"DELIVERED", OrderStatusDelivered},
		{"cancelled", OrderStatusCancelled},
		{"", OrderStatusPending},
		{"PICKED_UP", OrderStatusPending},
		{"DELIVERING", OrderStatusPending},
		{"REFUNDED", OrderStatusPending},
		{"garbage", OrderStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := MapOrderStatus(tc.in); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestIsTerminalOrderStatus(t *testing.T) {
	if !IsTerminalOrderStatus("delivered") || !IsTerminalOrderStatus("CANCELLED") {
		t.Fatal("expected delivered and cancelled to be terminal")
	}
	if IsTerminalOrderStatus("SHIPPING") {
		t.Fatal("did not expect shipping to be terminal")
	}
}

func TestParseVerificationStatus(t *testing.T) {
	cases := map[string]VerificationStatus{
		"APPROVED": VerificationApproved,
		"approved": VerificationApproved,
		"REJECTED": VerificationRejected,
		"PENDING":  VerificationPending,
		"":         VerificationPending,
		"unknown":  VerificationPending,
	}
	for in, want := range cases {
		if got := ParseVerificationStatus(in); got != want {
			t.Fatalf("input %q: expected %s, got %s", in, want, got)
		}
	}
}

func TestDriverIsOnline(t *testing.T) {
	cases := []struct {
		status string
		online bool
		busy   bool
	}{
		{DriverStatusOnline, true, false},
		{DriverStatusBusy, true, true},
		{"busy", true, true},
		{DriverStatusOffline, false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		d := Driver{Status: tc.status}
		if d.IsOnline() != tc.online {
			t.Fatalf("status %q: expected online=%v", tc.status, tc.online)
		}
		if d.IsBusy() != tc.busy {
			t.Fatalf("status %q: expected busy=%v", tc.status, tc.busy)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	if got := ParseTransactionType("delivery_income"); got != TransactionDeliveryIncome {
		t.Fatalf("expected DELIVERY_INCOME, got %s", got)
	}
	if got := ParseTransactionType("BONUS"); got != TransactionPayment {
		t.Fatalf("expected unknown type to decode as PAYMENT, got %s", got)
	}
	if !TransactionEarn.IsCredit() || TransactionWithdraw.IsCredit() {
		t.Fatal("unexpected credit classification")
	}
}

func TestParseTransactionStatus(t *testing.T) {
	if got := ParseTransactionStatus("failed"); got != TransactionFailed {
		t.Fatalf("expected FAILED, got %s", got)
	}
	if got := ParseTransactionStatus("SETTLED"); got != TransactionPending {
		t.Fatalf("expected unknown status to decode as PENDING, got %s", got)
	}
}

func TestParseIncomePeriod(t *testing.T) {
	if p, ok := ParseIncomePeriod(""); !ok || p != IncomeDaily {
		t.Fatalf("expected empty period to mean daily, got %q %v", p, ok)
	}
	if p, ok := ParseIncomePeriod("Weekly"); !ok || p != IncomeWeekly {
		t.Fatalf("expected weekly, got %q %v", p, ok)
	}
	if _, ok := ParseIncomePeriod("yearly"); ok {
		t.Fatal("expected yearly to be rejected")
	}
}

func TestParseISOMillis(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 2, 10, 20, 30, 456*int(time.Millisecond), time.UTC).UnixMilli()

	if got := ParseISOMillis("2024-03-02T10:20:30.456Z", now); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
	if got := ParseISOMillis("not a date", now); got != now.UnixMilli() {
		t.Fatalf("expected fallback to now, got %d", got)
	}
	if got := ParseISOMillis("2024-03-02T10:20:30+07:00", now); got != now.UnixMilli() {
		t.Fatalf("expected offset timestamp to be rejected by fixed layout, got %d", got)
	}
}

func TestParseFlexibleDate(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   string
		want int64
	}{
		{"offset", "2024-03-02T17:20:30+07:00", time.Date(2024, 3, 2, 10, 20, 30, 0, time.UTC).UnixMilli()},
		{"fraction", "2024-03-02T10:20:30.5Z", time.Date(2024, 3, 2, 10, 20, 30, 500*int(time.Millisecond), time.UTC).UnixMilli()},
		{"fixed layout", "2024-03-02T10:20:30.456Z", time.Date(2024, 3, 2, 10, 20, 30, 456*int(time.Millisecond), time.UTC).UnixMilli()},
		{"garbage", "yesterday", now.UnixMilli()},
		{"empty", "", now.UnixMilli()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseFlexibleDate(tc.in, now); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
