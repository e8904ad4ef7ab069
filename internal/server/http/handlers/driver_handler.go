package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/server/http/dto"
)

// DriverHandler manages the driver profile, availability and location.
type DriverHandler struct {
	facade DriverFacade
}

// NewDriverHandler constructs DriverHandler.
func NewDriverHandler(facade DriverFacade) *DriverHandler {
	return &DriverHandler{facade: facade}
}

// Profile handles GET /api/driver.
func (h *DriverHandler) Profile(c *gin.Context) {
	driver, err := h.facade.Profile(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(*driver))
}

// Register handles POST /api/driver.
func (h *DriverHandler) Register(c *gin.Context) {
	var req dto.DriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.FullName == "" || req.Phone == "" {
		badRequest(c, "full name and phone are required")
		return
	}

	driver, err := h.facade.RegisterDriver(c.Request.Context(), fromDriverRequest(CurrentDriverID(c), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDriverResponse(*driver))
}

// Update handles PUT /api/driver.
func (h *DriverHandler) Update(c *gin.Context) {
	var req dto.DriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	driver, err := h.facade.UpdateDriver(c.Request.Context(), fromDriverRequest(CurrentDriverID(c), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(*driver))
}

// SetStatus handles POST /api/driver/status.
func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		badRequest(c, "online flag is required")
		return
	}

	result, err := h.facade.SetOnline(c.Request.Context(), *req.Online)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{
		Driver:        toDriverResponse(result.Driver),
		IsOnline:      result.IsOnline,
		ToggleEnabled: result.ToggleEnabled,
	})
}

// Location handles GET /api/driver/location.
func (h *DriverHandler) Location(c *gin.Context) {
	loc, err := h.facade.DriverLocation(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// ReportLocation handles POST /api/location.
func (h *DriverHandler) ReportLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		badRequest(c, "latitude and longitude are required")
		return
	}

	point, err := h.facade.ReportLocation(*req.Latitude, *req.Longitude)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.LocationResponse{
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		RecordedAt: point.RecordedAt.UnixMilli(),
	})
}

func toDriverResponse(d model.Driver) dto.DriverResponse {
	return dto.DriverResponse{
		ID:                 d.ID,
		FullName:           d.FullName,
		Phone:              d.Phone,
		AvatarURL:          d.AvatarURL,
		DateOfBirth:        d.DateOfBirth,
		Address:            d.Address,
		Email:              d.Email,
		VehicleType:        d.VehicleType,
		VehiclePlate:       d.VehiclePlate,
		CCCDNumber:         d.CCCDNumber,
		LicenseNumber:      d.LicenseNumber,
		Verified:           d.Verified,
		VerificationStatus: string(d.VerificationStatus),
		Status:             d.Status,
		IsOnline:           d.IsOnline(),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func fromDriverRequest(driverID string, req dto.DriverRequest) model.Driver {
	return model.Driver{
		ID:                          driverID,
		FullName:                    req.FullName,
		Phone:                       req.Phone,
		AvatarURL:                   req.AvatarURL,
		DateOfBirth:                 req.DateOfBirth,
		Address:                     req.Address,
		Email:                       req.Email,
		VehicleType:                 req.VehicleType,
		VehiclePlate:                req.VehiclePlate,
		CCCDNumber:                  req.CCCDNumber,
		CCCDFrontImageURL:           req.CCCDFrontImageURL,
		CCCDBackImageURL:            req.CCCDBackImageURL,
		LicenseNumber:               req.LicenseNumber,
		LicenseImageURL:             req.LicenseImageURL,
		VehicleRegistrationImageURL: req.VehicleRegistrationImageURL,
		VehiclePlateImageURL:        req.VehiclePlateImageURL,
	}
}
