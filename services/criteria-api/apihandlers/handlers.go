package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "Criteria Validation System",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type HttpEndpoints struct {
	apiKeys []string
}

func NewHTTPHandler(
	apiKeys []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		apiKeys: apiKeys,
	}
}
