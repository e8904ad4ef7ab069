package model

import "strings"

// IncomePeriod selects the aggregation window of income statistics.
type IncomePeriod string

const (
	IncomeDaily   IncomePeriod = "daily"
	IncomeWeekly  IncomePeriod = "weekly"
	IncomeMonthly IncomePeriod = "monthly"
)

// ParseIncomePeriod validates a period name. Empty input means daily.
func ParseIncomePeriod(s string) (IncomePeriod, bool) {
	switch p := IncomePeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return IncomeDaily, true
	case IncomeDaily, IncomeWeekly, IncomeMonthly:
		return p, true
	default:
		return "", false
	}
}

// Delivery is a completed or running delivery in the driver history.
type Delivery struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"orderId"`
	DriverID        string  `json:"driverId"`
	DriverName      string  `json:"driverName"`
	DistanceKm      float64 `json:"distanceKm"`
	GoodsAmount     float64 `json:"goodsAmount"`
	ShippingFee     float64 `json:"shippingFee"`
	DriverIncome    float64 `json:"driverIncome"`
	PaymentMethod   string  `json:"paymentMethod"`
	StoreName       string  `json:"storeName"`
	ShippingAddress string  `json:"shippingAddress"`
	CustomerName    string  `json:"customerName"`
	Status          string  `json:"status"`
	StartedAt       string  `json:"startedAt"`
	CompletedAt     string  `json:"completedAt"`
}

// DeliveryIncome aggregates earnings over a period.
type DeliveryIncome struct {
	Period                     string  `json:"period"`
	StartDate                  string  `json:"startDate"`
	EndDate                    string  `json:"endDate"`
	TotalDeliveries            int     `json:"totalDeliveries"`
	TotalIncome                float64 `json:"totalIncome"`
	TotalShippingFee           float64 `json:"totalShippingFee"`
	TotalDistance              float64 `json:"totalDistance"`
	AverageIncomePerDelivery   float64 `json:"averageIncomePerDelivery"`
	AverageDistancePerDelivery float64 `json:"averageDistancePerDelivery"`
}

// DeviceToken is a push token registered for a user.
type DeviceToken struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
