package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsCreated counts reservations accepted by the engine
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "washtech",
		Name:      "reservations_created_total",
		Help:      "Reservations created.",
	})

	// ReservationConflicts counts bookings rejected by the availability check
	ReservationConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "washtech",
		Name:      "reservation_conflicts_total",
		Help:      "Bookings rejected because the machine was unavailable.",
	}, []string{"reason"})

	// ReservationTransitions counts status transitions by target status
	ReservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "washtech",
		Name:      "reservation_transitions_total",
		Help:      "Reservation status transitions.",
	}, []string{"status"})

	// OperatorAssignments counts assign/unassign actions
	OperatorAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "washtech",
		Name:      "operator_assignments_total",
		Help:      "Operator assignment changes.",
	}, []string{"action"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "washtech",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "washtech",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Middleware records request counts and latency per matched route
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
