package like

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xieumar/HNG-Framez/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Toggle POST /api/posts/:id/like
func (h *Handler) Toggle(c *gin.Context) {
	liked, err := h.service.Toggle(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ForPost GET /api/posts/:id/likes — the likers, plus whether the caller
// (when signed in) is among them.
func (h *Handler) ForPost(c *gin.Context) {
	postID := c.Param("id")

	likes, err := h.service.ForPost(c.Request.Context(), postID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	response := gin.H{"likes": likes, "like_count": len(likes)}
	if userID := c.GetString("user_id"); userID != "" {
		isLiked, err := h.service.HasLiked(c.Request.Context(), postID, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		response["is_liked"] = isLiked
	}

	c.JSON(http.StatusOK, response)
}
