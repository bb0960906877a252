package comment

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

type createInput struct {
	Text string `json:"text" binding:"required"`
}

// Create POST /api/posts/:id/comments
func (h *Handler) Create(c *gin.Context) {
	var input createInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commentID, postVersion, err := h.service.Create(
		c.Request.Context(), c.Param("id"), c.GetString("user_id"), input.Text)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment_id":   commentID,
		"post_version": postVersion,
	})
}

// Delete DELETE /api/comments/:id
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ForPost GET /api/posts/:id/comments
func (h *Handler) ForPost(c *gin.Context) {
	comments, err := h.service.ForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
