package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPMetrics tracks request statistics for the conversion server.
type HTTPMetrics struct {
	requestCount      atomic.Int64
	errorCount        atomic.Int64
	totalResponseTime atomic.Int64 // nanoseconds
	maxResponseTime   atomic.Int64 // nanoseconds
	pendingRequests   atomic.Int64

	mu         sync.RWMutex
	startTime  time.Time
	routes     map[string]int64
	samples    []int64
	next       int
	maxSamples int
}

func NewHTTPMetrics(maxSamples int) *HTTPMetrics {
	if maxSamples <= 0 {
		maxSamples = 1000
	}

	return &HTTPMetrics{
		startTime:  time.Now(),
		routes:     make(map[string]int64),
		samples:    make([]int64, 0, maxSamples),
		maxSamples: maxSamples,
	}
}

type HTTPStats struct {
	RequestCount    int64            `json:"request_count"`
	ErrorCount      int64            `json:"error_count"`
	ErrorRate       float64          `json:"error_rate"`        // Percentage
	RequestRate     float64          `json:"request_rate"`      // Per second
	AvgResponseTime int64            `json:"avg_response_time"` // Nanoseconds
	MaxResponseTime int64            `json:"max_response_time"` // Nanoseconds
	PendingRequests int64            `json:"pending_requests"`
	Routes          map[string]int64 `json:"routes"`
	Timestamp       time.Time        `json:"timestamp"`
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(data)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// WebSocket upgrade needs for hijacking.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware counts requests for route. Responses with status >= 400 count
// as errors.
func (h *HTTPMetrics) Middleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.pendingRequests.Add(1)
		defer h.pendingRequests.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)

		h.observe(route, wrapped.statusCode, time.Since(start))
	}
}

func (h *HTTPMetrics) observe(route string, status int, duration time.Duration) {
	ns := duration.Nanoseconds()
	h.requestCount.Add(1)
	h.totalResponseTime.Add(ns)
	for {
		current := h.maxResponseTime.Load()
		if ns <= current || h.maxResponseTime.CompareAndSwap(current, ns) {
			break
		}
	}
	if status >= 400 {
		h.errorCount.Add(1)
	}

	h.mu.Lock()
	h.routes[route]++
	if len(h.samples) < h.maxSamples {
		h.samples = append(h.samples, ns)
	} else {
		h.samples[h.next] = ns
		h.next = (h.next + 1) % h.maxSamples
	}
	h.mu.Unlock()
}

func (h *HTTPMetrics) GetStats() HTTPStats {
	requestCount := h.requestCount.Load()
	errorCount := h.errorCount.Load()

	stats := HTTPStats{
		RequestCount:    requestCount,
		ErrorCount:      errorCount,
		MaxResponseTime: h.maxResponseTime.Load(),
		PendingRequests: h.pendingRequests.Load(),
		Timestamp:       time.Now(),
	}

	h.mu.RLock()
	stats.Routes = make(map[string]int64, len(h.routes))
	for route, n := range h.routes {
		stats.Routes[route] = n
	}
	startTime := h.startTime
	h.mu.RUnlock()

	if requestCount > 0 {
		stats.ErrorRate = float64(errorCount) / float64(requestCount) * 100
		stats.AvgResponseTime = h.totalResponseTime.Load() / requestCount
		if uptime := time.Since(startTime); uptime > 0 {
			stats.RequestRate = float64(requestCount) / uptime.Seconds()
		}
	}

	return stats
}

// GetResponseTimeSamples returns a copy of the recent response times.
func (h *HTTPMetrics) GetResponseTimeSamples() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	samples := make([]int64, len(h.samples))
	copy(samples, h.samples)
	return samples
}

func (h *HTTPMetrics) Reset() {
	h.requestCount.Store(0)
	h.errorCount.Store(0)
	h.totalResponseTime.Store(0)
	h.maxResponseTime.Store(0)

	h.mu.Lock()
	h.startTime = time.Now()
	h.routes = make(map[string]int64)
	h.samples = h.samples[:0]
	h.next = 0
	h.mu.Unlock()
}
