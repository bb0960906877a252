package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/media"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type syncInput struct {
	Avatar string `json:"avatar"` // object id or literal URL, optional
}

// Sync POST /api/users/sync — upsert from the verified token claims. The
// client calls this once per sign-in.
func (h *Handler) Sync(c *gin.Context) {
	externalID := c.GetString("external_id")
	name := c.GetString("claim_name")
	email := c.GetString("claim_email")

	var input syncInput
	_ = c.ShouldBindJSON(&input) // body is optional

	userID, err := h.service.Upsert(c.Request.Context(), externalID, name, email, media.ParseRef(input.Avatar))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

// Me GET /api/me — the resolved profile, or null when not provisioned yet.
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.service.GetCurrent(c.Request.Context(), c.GetString("external_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}
