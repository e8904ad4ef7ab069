package dto

// OrderStatusRequest sets the backend order status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}
