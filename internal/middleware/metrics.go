package middleware

import (
	"strconv"
	"time"

	"pustaka/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request counts and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Label by pattern ("/api/books/:id"), not by raw path. Fiber strings
		// point into reused request buffers, so labels must be copies.
		metrics.RecordHTTPRequest(
			utils.CopyString(c.Method()),
			utils.CopyString(c.Route().Path),
			strconv.Itoa(status),
			time.Since(start),
		)
		return err
	}
}
