// Package metrics exposes Prometheus counters for HTTP traffic and social
// activity.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"backend-friendbook/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ActionFollow     = "follow"
	ActionUnfollow   = "unfollow"
	ActionLike       = "like"
	ActionUnlike     = "unlike"
	ActionComment    = "comment"
	ActionPost       = "post"
	ActionSignup     = "signup"
	ActionLogin      = "login"
	ActionDeleteUser = "delete_account"
)

var (
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendbook_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status_code"},
	)

	actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendbook_actions_total",
		Help: "The total number of completed social actions",
	}, []string{"action"})
)

// Action counts one completed action.
func Action(name string) {
	actions.WithLabelValues(name).Inc()
}

// Middleware records the latency of every request by matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		// The error handler runs after this middleware returns, so the
		// response status is not final yet.
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperr.KindOf(err).Status()
			}
		}
		requestLatency.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
