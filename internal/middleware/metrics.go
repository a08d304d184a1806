package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/metrics"
)

// Metrics records one observation per request, labelled by the matched route pattern so
// ids in the path do not explode the label set.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
