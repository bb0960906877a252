package live

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xieumar/HNG-Framez/internal/logs"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // cross-origin mobile clients; auth happens via token
	},
}

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Stream GET /api/live/:query — upgrades to a websocket and pushes every
// result of the subscription as a JSON message. Query arguments come from the
// URL query string. Closing the socket tears the subscription down; an
// in-flight re-run simply has nobody left to deliver to.
func (h *Handler) Stream(c *gin.Context) {
	name := c.Param("query")
	args := Args{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}
	// subscriber identity for queries that need the caller
	if userID := c.GetString("user_id"); userID != "" {
		args["callerId"] = userID
	}

	sub, err := h.registry.Subscribe(c.Request.Context(), name, args)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown query"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Unsubscribe()
		logs.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// reader exists only to notice the client going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Unsubscribe()
				return
			}
		}
	}()

	for res := range sub.Results {
		if err := conn.WriteJSON(res); err != nil {
			sub.Unsubscribe()
			return
		}
	}
}
