package post

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

type createInput struct {
	Content string `json:"content"`
	Image   string `json:"image"` // object id or literal URL, optional
}

type updateInput struct {
	Content string `json:"content" binding:"required,max=500"`
}

// Create POST /api/posts
func (h *Handler) Create(c *gin.Context) {
	var input createInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.Content) > MaxContentLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content exceeds 500 characters"})
		return
	}
	image := media.ParseRef(input.Image)
	if input.Content == "" && image.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post needs content or an image"})
		return
	}

	postID, err := h.service.Create(c.Request.Context(), c.GetString("user_id"), input.Content, image)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post_id": postID})
}

// Update PUT /api/posts/:id
func (h *Handler) Update(c *gin.Context) {
	var input updateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), input.Content)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post updated"})
}

// Delete DELETE /api/posts/:id
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// GetAll GET /api/posts
func (h *Handler) GetAll(c *gin.Context) {
	views, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": views})
}

// Mine GET /api/posts/mine
func (h *Handler) Mine(c *gin.Context) {
	views, err := h.service.GetForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": views})
}

// GetByID GET /api/posts/:id
func (h *Handler) GetByID(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": row})
}

// Share POST /api/posts/:id/share
func (h *Handler) Share(c *gin.Context) {
	if err := h.service.IncrementShares(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "share recorded"})
}
