package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/cmd/server/internal/recall"
)

// errorResponse writes a JSON error body.
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// successResponse writes a JSON success body.
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// upstreamDetail extracts the provider's status and detail from an
// error. Transport faults have no provider status and surface as 500.
func upstreamDetail(err error) (int, string) {
	var upstream *recall.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode, upstream.Detail
	}
	return 500, err.Error()
}
