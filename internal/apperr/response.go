package apperr

import "github.com/gin-gonic/gin"

// Respond writes the standard error body for a failed operation.
func Respond(c *gin.Context, err error) {
	c.JSON(HTTPStatus(CodeOf(err)), gin.H{"error": Message(err)})
}
