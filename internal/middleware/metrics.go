package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	SubmissionsTotal   uint64
	SubmissionsPending uint64
	SubmissionsFailed  uint64
	StartTime          time.Time

	mu             sync.Mutex
	failuresByKind map[string]uint64
}

var globalMetrics = &Metrics{
	StartTime:      time.Now(),
	failuresByKind: make(map[string]uint64),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// SubmissionFailed counts a failed submission under its error kind
func SubmissionFailed(kind string) {
	atomic.AddUint64(&globalMetrics.SubmissionsFailed, 1)
	globalMetrics.mu.Lock()
	globalMetrics.failuresByKind[kind]++
	globalMetrics.mu.Unlock()
}

// PendingTrigger is the host's pending indicator for one submission.
// It feeds the submission gauges; Idle after Pending brings the gauge back.
type PendingTrigger struct {
	pending atomic.Bool
}

func (t *PendingTrigger) Pending() {
	if t.pending.CompareAndSwap(false, true) {
		atomic.AddUint64(&globalMetrics.SubmissionsTotal, 1)
		atomic.AddUint64(&globalMetrics.SubmissionsPending, 1)
	}
}

func (t *PendingTrigger) Idle() {
	if t.pending.CompareAndSwap(true, false) {
		atomic.AddUint64(&globalMetrics.SubmissionsPending, ^uint64(0))
	}
}

// IsPending reports the trigger's current state
func (t *PendingTrigger) IsPending() bool { return t.pending.Load() }

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	globalMetrics.mu.Lock()
	byKind := make(map[string]uint64, len(globalMetrics.failuresByKind))
	for k, v := range globalMetrics.failuresByKind {
		byKind[k] = v
	}
	globalMetrics.mu.Unlock()

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"submissions_total":    atomic.LoadUint64(&globalMetrics.SubmissionsTotal),
		"submissions_pending":  atomic.LoadUint64(&globalMetrics.SubmissionsPending),
		"submissions_failed":   atomic.LoadUint64(&globalMetrics.SubmissionsFailed),
		"failures_by_kind":     byKind,
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
