package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/server/http/dto"
	"github.com/polkiloo/courieragent/internal/server/http/middleware"
)

// SessionHandler exchanges identity-provider tokens for local sessions.
type SessionHandler struct {
	facade SessionFacade
}

// NewSessionHandler creates SessionHandler instance.
func NewSessionHandler(facade SessionFacade) *SessionHandler {
	return &SessionHandler{facade: facade}
}

// SignIn handles POST /api/session.
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.facade.SignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, session.Token)
	resp := dto.SessionResponse{
		Token:      session.Token,
		DriverID:   session.DriverID,
		Email:      session.Email,
		Phone:      session.Phone,
		Registered: session.Registered,
	}
	if session.Driver != nil {
		driver := toDriverResponse(*session.Driver)
		resp.Driver = &driver
	}
	c.JSON(http.StatusOK, resp)
}
