// Package health provides health checks for the service's dependencies.
//
// A Checker verifies one dependency (task store, template catalog) and
// returns a Result with a status of healthy, degraded, or unhealthy.
// The Manager runs all checkers in parallel with a per-check timeout and
// aggregates the results; ProbeManager layers Kubernetes-style liveness,
// readiness, and startup probes on top.
package health

import (
	"context"
	"time"
)

// Checker verifies a single dependency.
type Checker interface {
	// Name is the unique, lowercase-hyphenated name of this check,
	// e.g. "task-store".
	Name() string

	// Check performs the health check. It must respect the context
	// deadline and return quickly.
	Check(ctx context.Context) *Result
}

// Status is the outcome band of a health check.
type Status string

const (
	// StatusHealthy means the dependency is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the dependency partially works; the service
	// keeps running with reduced functionality.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means the dependency is not working.
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one health check.
type Result struct {
	Status  Status
	Message string

	// Details holds structured extras such as instance counts or error
	// strings.
	Details map[string]interface{}

	// Latency is how long the check took.
	Latency time.Duration
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
