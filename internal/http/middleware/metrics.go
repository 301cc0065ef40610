package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics counts requests per route. Counters are safe for concurrent use.
type Metrics struct {
	total        int64
	active       int64
	errors       int64
	latencyMs    int64
	maxLatencyMs int64
	started      time.Time

	mu       sync.Mutex
	routes   map[string]int64
	routeMs  map[string]int64
	statuses map[int]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		started:  time.Now(),
		routes:   make(map[string]int64),
		routeMs:  make(map[string]int64),
		statuses: make(map[int]int64),
	}
}

// MetricsSnapshot is a point-in-time view of the counters.
type MetricsSnapshot struct {
	TotalRequests  int64            `json:"totalRequests"`
	ActiveRequests int64            `json:"activeRequests"`
	TotalErrors    int64            `json:"totalErrors"`
	ErrorRatePct   float64          `json:"errorRatePct"`
	AvgLatencyMs   float64          `json:"avgLatencyMs"`
	MaxLatencyMs   int64            `json:"maxLatencyMs"`
	UptimeSeconds  float64          `json:"uptimeSeconds"`
	Routes         map[string]int64 `json:"routes"`
	RouteAvgMs     map[string]int64 `json:"routeAvgLatencyMs"`
	StatusCodes    map[int]int64    `json:"statusCodes"`
}

// Middleware records every request. Routes are keyed by their pattern so
// path parameters do not multiply entries.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.active, 1)
			start := time.Now()

			err := next(c)
			if err != nil {
				// Resolve the status before it is read below.
				c.Error(err)
			}

			m.observe(c, time.Since(start).Milliseconds())
			return nil
		}
	}
}

func (m *Metrics) observe(c echo.Context, latencyMs int64) {
	atomic.AddInt64(&m.active, -1)
	atomic.AddInt64(&m.total, 1)
	atomic.AddInt64(&m.latencyMs, latencyMs)

	for {
		current := atomic.LoadInt64(&m.maxLatencyMs)
		if latencyMs <= current || atomic.CompareAndSwapInt64(&m.maxLatencyMs, current, latencyMs) {
			break
		}
	}

	status := c.Response().Status
	if status >= http.StatusBadRequest {
		atomic.AddInt64(&m.errors, 1)
	}

	route := c.Path()
	if route == "" {
		route = c.Request().URL.Path
	}
	route = c.Request().Method + " " + route

	m.mu.Lock()
	m.routes[route]++
	m.routeMs[route] += latencyMs
	m.statuses[status]++
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	total := atomic.LoadInt64(&m.total)
	errs := atomic.LoadInt64(&m.errors)

	snap := MetricsSnapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.active),
		TotalErrors:    errs,
		MaxLatencyMs:   atomic.LoadInt64(&m.maxLatencyMs),
		UptimeSeconds:  time.Since(m.started).Seconds(),
	}
	if total > 0 {
		snap.AvgLatencyMs = float64(atomic.LoadInt64(&m.latencyMs)) / float64(total)
		snap.ErrorRatePct = float64(errs) / float64(total) * 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Routes = make(map[string]int64, len(m.routes))
	snap.RouteAvgMs = make(map[string]int64, len(m.routes))
	for k, v := range m.routes {
		snap.Routes[k] = v
		if v > 0 {
			snap.RouteAvgMs[k] = m.routeMs[k] / v
		}
	}
	snap.StatusCodes = make(map[int]int64, len(m.statuses))
	for k, v := range m.statuses {
		snap.StatusCodes[k] = v
	}
	return snap
}

// Handler serves the current snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
