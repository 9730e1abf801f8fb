// Package metrics names the metrics the API emits and their tags.
package metrics

import (
	"time"

	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// Metric names.
const (
	AuthzDenied    = "authz.denied"
	SessionIssued  = "auth.session_issued"
	RequestLatency = "http.request"
)

// Denial describes one negative authorization decision.
type Denial struct {
	Kind   string
	Action string
	Reason string
}

// EmitDenial counts a denied authorization. A nil sink is a no-op.
func EmitDenial(sink statsd.Sink, d Denial) {
	if sink == nil {
		return
	}
	sink.Count(AuthzDenied, 1, map[string]string{
		"kind":   d.Kind,
		"action": d.Action,
		"reason": d.Reason,
	})
}

// EmitSessionIssued counts a new session by sign-in method and role.
func EmitSessionIssued(sink statsd.Sink, method, role string) {
	if sink == nil {
		return
	}
	sink.Count(SessionIssued, 1, map[string]string{"method": method, "role": role})
}

// EmitRequest records request latency tagged by route pattern and status class.
func EmitRequest(sink statsd.Sink, route string, status int, elapsed time.Duration) {
	if sink == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	sink.Timing(RequestLatency, elapsed, map[string]string{
		"route":  route,
		"status": statusClass(status),
	})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
