// Package middleware provides the Echo middleware used by the discogs-alert
// HTTP server.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

// probeGauges are updated instead of the request histogram for probe
// paths. Scrapes and probes would otherwise dominate the request metrics.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and status
// by route. /metrics is not recorded at all.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeOf(c)
			if route == "/metrics" {
				return next(c)
			}

			if gauge, ok := probeGauges[route]; ok {
				err := next(c)
				gauge.Set(boolToFloat(succeeded(c.Response().Status)))
				return err
			}

			start := time.Now()
			err := next(c)

			labels := []string{c.Request().Method, route, strconv.Itoa(c.Response().Status)}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

// routeOf prefers the registered route pattern so path parameters do not
// blow up label cardinality.
func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}

func succeeded(status int) bool {
	return status >= 200 && status < 300
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
