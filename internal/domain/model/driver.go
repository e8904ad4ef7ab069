package model

import "strings"

// VerificationStatus describes document review state of a driver.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// ParseVerificationStatus maps backend strings case-insensitively.
// Unknown values decode as VerificationPending.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case VerificationApproved:
		return VerificationApproved
	case VerificationRejected:
		return VerificationRejected
	default:
		return VerificationPending
	}
}

// Well-known driver availability values. Driver.Status is kept as free text
// because the backend does not validate it.
const (
	DriverStatusOffline = "OFFLINE"
	DriverStatusOnline  = "ONLINE"
	DriverStatusBusy    = "BUSY"
)

// Driver mirrors the driver profile returned by the backend.
type Driver struct {
	ID                          string
	FullName                    string
	Phone                       string
	AvatarURL                   string
	DateOfBirth                 string
	Address                     string
	Email                       string
	VehicleType                 string
	VehiclePlate                string
	CCCDNumber                  string
	CCCDFrontImageURL           string
	CCCDBackImageURL            string
	LicenseNumber               string
	LicenseImageURL             string
	VehicleRegistrationImageURL string
	VehiclePlateImageURL        string
	Verified                    bool
	VerificationStatus          VerificationStatus
	Status                      string
	CreatedAt                   string
	UpdatedAt                   string
}

// IsOnline reports whether the driver is available or on a delivery.
func (d Driver) IsOnline() bool {
	switch strings.ToUpper(d.Status) {
	case DriverStatusOnline, DriverStatusBusy:
		return true
	}
	return false
}

// IsBusy reports whether the driver is on a delivery.
func (d Driver) IsBusy() bool {
	return strings.EqualFold(d.Status, DriverStatusBusy)
}
