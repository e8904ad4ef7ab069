package model

import "strings"

// OrderStatus is the closed set of states shown to the driver.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusPickedUp   OrderStatus = "PICKED_UP"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// MapOrderStatus collapses a backend or tracking status string into OrderStatus.
// Matching is case-insensitive; anything unrecognized becomes OrderStatusPending.
func MapOrderStatus(s string) OrderStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return OrderStatusPending
	case "CONFIRMED", "ACCEPTED", "PREPARING":
		return OrderStatusAccepted
	case "READY_FOR_PICKUP":
		return OrderStatusPickedUp
	case "SHIPPING":
		return OrderStatusDelivering
	case "DELIVERED":
		return OrderStatusDelivered
	case "CANCELLED":
		return OrderStatusCancelled
	default:
		return OrderStatusPending
	}
}

// IsTerminalOrderStatus reports whether a raw status string ends the delivery.
func IsTerminalOrderStatus(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DELIVERED", "CANCELLED":
		return true
	}
	return false
}

// DefaultCustomerName is shown when no source knows the customer.
const DefaultCustomerName = "Customer"

// Order is the normalized view of a delivery presented to the driver.
type Order struct {
	ID              int64       `json:"id"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	PickupAddress   string      `json:"pickupAddress"`
	DeliveryAddress string      `json:"deliveryAddress"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	CreatedAt       int64       `json:"createdAt"`
}

// OrderDetail mirrors the persisted order record of the backend.
type OrderDetail struct {
	ID                   int64
	CustomerID           string
	StoreID              int64
	DriverID             string
	ShippingAddressID    int64
	TotalAmount          float64
	ShippingFee          float64
	AdminVoucherID       *int64
	SellerVoucherID      *int64
	PaymentMethod        string
	PaymentStatus        string
	PaidAt               string
	OrderStatus          string
	Note                 string
	CancelReason         string
	ExpectedDeliveryTime string
	RatingStatus         bool
	CreatedAt            string
	UpdatedAt            string
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"orderId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"totalPrice"`
}

// Address is a customer shipping address.
type Address struct {
	ID        int64
	Receiver  string
	Phone     string
	Address   string
	Latitude  float64
	Longitude float64
	IsDefault bool
	CreatedAt string
	UpdatedAt string
}
