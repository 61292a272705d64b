package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	gradeItems  *prometheus.CounterVec
	submissions prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradebook_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gradeItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_grade_items_total",
			Help: "Submitted grade items by outcome (applied or dropped).",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradebook_grade_submissions_total",
			Help: "Accepted grade batch submissions.",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.gradeItems, m.submissions)
	return m
}

func (m *metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			code := ctx.Response().Status
			if err != nil {
				// the error handler has not written the response yet
				code, _ = classify(err, nil)
			}
			route := ctx.Path()
			m.requests.WithLabelValues(ctx.Request().Method, route, strconv.Itoa(code)).Inc()
			m.latency.WithLabelValues(ctx.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// observeSubmission records a grade batch of which applied items out of total were kept.
func (m *metrics) observeSubmission(total, applied int) {
	m.submissions.Inc()
	m.gradeItems.WithLabelValues("applied").Add(float64(applied))
	m.gradeItems.WithLabelValues("dropped").Add(float64(total - applied))
}
