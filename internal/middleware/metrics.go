package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/metrics"
)

func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
