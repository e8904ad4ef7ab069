package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/server/http/dto"
)

// WalletHandler exposes wallet, delivery history and device tokens of the
// signed in driver.
type WalletHandler struct {
	facade WalletFacade
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(facade WalletFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Wallet handles GET /api/wallet.
func (h *WalletHandler) Wallet(c *gin.Context) {
	wallet, err := h.facade.Wallet(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// Transactions handles GET /api/wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	txs, err := h.facade.Transactions(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// TopUp handles POST /api/wallet/topup.
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	topUp, err := h.facade.TopUp(c.Request.Context(), CurrentDriverID(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topUp)
}

// Deliveries handles GET /api/deliveries.
func (h *WalletHandler) Deliveries(c *gin.Context) {
	deliveries, err := h.facade.Deliveries(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

// Income handles GET /api/deliveries/income.
func (h *WalletHandler) Income(c *gin.Context) {
	income, err := h.facade.Income(c.Request.Context(), CurrentDriverID(c), c.Query("period"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, income)
}

// DeviceTokens handles GET /api/device-tokens.
func (h *WalletHandler) DeviceTokens(c *gin.Context) {
	tokens, err := h.facade.DeviceTokens(c.Request.Context(), CurrentDriverID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// RegisterDeviceToken handles POST /api/device-tokens.
func (h *WalletHandler) RegisterDeviceToken(c *gin.Context) {
	var req dto.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	token, err := h.facade.RegisterDeviceToken(c.Request.Context(), CurrentDriverID(c), req.Token, req.Platform)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}
