package backend

import "github.com/polkiloo/courieragent/internal/domain/model"

// Wire formats of the REST backend. Nullable strings decode to "".

type orderDetailDTO struct {
	ID                   int64   `json:"id"`
	CustomerID           string  `json:"customerId"`
	StoreID              int64   `json:"storeId"`
	DriverID             string  `json:"driverId"`
	ShippingAddressID    int64   `json:"shippingAddressId"`
	TotalAmount          float64 `json:"totalAmount"`
	ShippingFee          float64 `json:"shippingFee"`
	AdminVoucherID       *int64  `json:"adminVoucherId"`
	SellerVoucherID      *int64  `json:"sellerVoucherId"`
	PaymentMethod        string  `json:"paymentMethod"`
	PaymentStatus        string  `json:"paymentStatus"`
	PaidAt               string  `json:"paidAt"`
	OrderStatus          string  `json:"orderStatus"`
	Note                 string  `json:"note"`
	CancelReason         string  `json:"cancelReason"`
	ExpectedDeliveryTime string  `json:"expectedDeliveryTime"`
	RatingStatus         bool    `json:"ratingStatus"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

func (d orderDetailDTO) toModel() *model.OrderDetail {
	return &model.OrderDetail{
		ID:                   d.ID,
		CustomerID:           d.CustomerID,
		StoreID:              d.StoreID,
		DriverID:             d.DriverID,
		ShippingAddressID:    d.ShippingAddressID,
		TotalAmount:          d.TotalAmount,
		ShippingFee:          d.ShippingFee,
		AdminVoucherID:       d.AdminVoucherID,
		SellerVoucherID:      d.SellerVoucherID,
		PaymentMethod:        d.PaymentMethod,
		PaymentStatus:        d.PaymentStatus,
		PaidAt:               d.PaidAt,
		OrderStatus:          d.OrderStatus,
		Note:                 d.Note,
		CancelReason:         d.CancelReason,
		ExpectedDeliveryTime: d.ExpectedDeliveryTime,
		RatingStatus:         d.RatingStatus,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

type addressDTO struct {
	ID        int64   `json:"id"`
	Receiver  string  `json:"receiver"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDefault bool    `json:"isDefault"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func (d addressDTO) toModel() *model.Address {
	return &model.Address{
		ID:        d.ID,
		Receiver:  d.Receiver,
		Phone:     d.Phone,
		Address:   d.Address,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		IsDefault: d.IsDefault,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type driverDTO struct {
	ID                          string `json:"id"`
	FullName                    string `json:"fullName,omitempty"`
	Phone                       string `json:"phone,omitempty"`
	AvatarURL                   string `json:"avatarUrl,omitempty"`
	DateOfBirth                 string `json:"dateOfBirth,omitempty"`
	Address                     string `json:"address,omitempty"`
	Email                       string `json:"email,omitempty"`
	VehicleType                 string `json:"vehicleType,omitempty"`
	VehiclePlate                string `json:"vehiclePlate,omitempty"`
	CCCDNumber                  string `json:"cccdNumber"`
	CCCDFrontImageURL           string `json:"cccdFrontImageUrl,omitempty"`
	CCCDBackImageURL            string `json:"cccdBackImageUrl,omitempty"`
	LicenseNumber               string `json:"licenseNumber"`
	LicenseImageURL             string `json:"licenseImageUrl,omitempty"`
	VehicleRegistrationImageURL string `json:"vehicleRegistrationImageUrl,omitempty"`
	VehiclePlateImageURL        string `json:"vehiclePlateImageUrl,omitempty"`
	Verified                    bool   `json:"verified"`
	VerificationStatus          string `json:"verificationStatus"`
	Status                      string `json:"status,omitempty"`
	CreatedAt                   string `json:"createdAt,omitempty"`
	UpdatedAt                   string `json:"updatedAt,omitempty"`
}

func (d driverDTO) toModel() *model.Driver {
	return &model.Driver{
		ID:                          d.ID,
		FullName:                    d.FullName,
		Phone:                       d.Phone,
		AvatarURL:                   d.AvatarURL,
		DateOfBirth:                 d.DateOfBirth,
		Address:                     d.Address,
		Email:                       d.Email,
		VehicleType:                 d.VehicleType,
		VehiclePlate:                d.VehiclePlate,
		CCCDNumber:                  d.CCCDNumber,
		CCCDFrontImageURL:           d.CCCDFrontImageURL,
		CCCDBackImageURL:            d.CCCDBackImageURL,
		LicenseNumber:               d.LicenseNumber,
		LicenseImageURL:             d.LicenseImageURL,
		VehicleRegistrationImageURL: d.VehicleRegistrationImageURL,
		VehiclePlateImageURL:        d.VehiclePlateImageURL,
		Verified:                    d.Verified,
		VerificationStatus:          model.ParseVerificationStatus(d.VerificationStatus),
		Status:                      d.Status,
		CreatedAt:                   d.CreatedAt,
		UpdatedAt:                   d.UpdatedAt,
	}
}

func driverFromModel(d model.Driver) driverDTO {
	return driverDTO{
		ID:                          d.ID,
		FullName:                    d.FullName,
		Phone:                       d.Phone,
		AvatarURL:                   d.AvatarURL,
		DateOfBirth:                 d.DateOfBirth,
		Address:                     d.Address,
		Email:                       d.Email,
		VehicleType:                 d.VehicleType,
		VehiclePlate:                d.VehiclePlate,
		CCCDNumber:                  d.CCCDNumber,
		CCCDFrontImageURL:           d.CCCDFrontImageURL,
		CCCDBackImageURL:            d.CCCDBackImageURL,
		LicenseNumber:               d.LicenseNumber,
		LicenseImageURL:             d.LicenseImageURL,
		VehicleRegistrationImageURL: d.VehicleRegistrationImageURL,
		VehiclePlateImageURL:        d.VehiclePlateImageURL,
		Verified:                    d.Verified,
		VerificationStatus:          string(d.VerificationStatus),
		Status:                      d.Status,
		CreatedAt:                   d.CreatedAt,
		UpdatedAt:                   d.UpdatedAt,
	}
}

type transactionDTO struct {
	ID              int64   `json:"id"`
	WalletID        int64   `json:"walletId"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transactionType"`
	Status          string  `json:"status"`
	BalanceBefore   float64 `json:"balanceBefore"`
	BalanceAfter    float64 `json:"balanceAfter"`
	Description     string  `json:"description"`
	ReferenceID     string  `json:"referenceId"`
	ReferenceType   string  `json:"referenceType"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func (d transactionDTO) toModel() model.Transaction {
	// The backend omits status for settled transactions.
	status := model.TransactionCompleted
	if d.Status != "" {
		status = model.ParseTransactionStatus(d.Status)
	}
	return model.Transaction{
		ID:            d.ID,
		WalletID:      d.WalletID,
		Amount:        d.Amount,
		Type:          model.ParseTransactionType(d.TransactionType),
		Status:        status,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		Description:   d.Description,
		ReferenceID:   d.ReferenceID,
		ReferenceType: d.ReferenceType,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type topUpRequest struct {
	Amount float64 `json:"amount"`
}

type deviceTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
