package dto

// DriverRequest is the editable part of the driver profile.
type DriverRequest struct {
	FullName                    string `json:"fullName"`
	Phone                       string `json:"phone"`
	AvatarURL                   string `json:"avatarUrl"`
	DateOfBirth                 string `json:"dateOfBirth"`
	Address                     string `json:"address"`
	Email                       string `json:"email"`
	VehicleType                 string `json:"vehicleType"`
	VehiclePlate                string `json:"vehiclePlate"`
	CCCDNumber                  string `json:"cccdNumber"`
	CCCDFrontImageURL           string `json:"cccdFrontImageUrl"`
	CCCDBackImageURL            string `json:"cccdBackImageUrl"`
	LicenseNumber               string `json:"licenseNumber"`
	LicenseImageURL             string `json:"licenseImageUrl"`
	VehicleRegistrationImageURL string `json:"vehicleRegistrationImageUrl"`
	VehiclePlateImageURL        string `json:"vehiclePlateImageUrl"`
}

// DriverResponse is the driver profile as shown by the UI.
type DriverResponse struct {
	ID                 string `json:"id"`
	FullName           string `json:"fullName"`
	Phone              string `json:"phone"`
	AvatarURL          string `json:"avatarUrl,omitempty"`
	DateOfBirth        string `json:"dateOfBirth,omitempty"`
	Address            string `json:"address,omitempty"`
	Email              string `json:"email,omitempty"`
	VehicleType        string `json:"vehicleType,omitempty"`
	VehiclePlate       string `json:"vehiclePlate,omitempty"`
	CCCDNumber         string `json:"cccdNumber,omitempty"`
	LicenseNumber      string `json:"licenseNumber,omitempty"`
	Verified           bool   `json:"verified"`
	VerificationStatus string `json:"verificationStatus"`
	Status             string `json:"status"`
	IsOnline           bool   `json:"isOnline"`
	CreatedAt          string `json:"createdAt,omitempty"`
	UpdatedAt          string `json:"updatedAt,omitempty"`
}

// StatusRequest switches the driver online or offline.
type StatusRequest struct {
	Online *bool `json:"online"`
}

// StatusResponse reports the outcome of a status switch.
type StatusResponse struct {
	Driver        DriverResponse `json:"driver"`
	IsOnline      bool           `json:"isOnline"`
	ToggleEnabled bool           `json:"toggleEnabled"`
}

// SessionResponse is returned after sign in.
type SessionResponse struct {
	Token      string          `json:"token"`
	DriverID   string          `json:"driverId"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Registered bool            `json:"registered"`
	Driver     *DriverResponse `json:"driver,omitempty"`
}
