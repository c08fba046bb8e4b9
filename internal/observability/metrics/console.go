// Package metrics holds the console's metric vocabulary on top of a statsd.Sink.
package metrics

import (
	"time"

	obserrors "github.com/target/dash-console/internal/observability/errors"
	"github.com/target/dash-console/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// AuthMetric captures one auth gateway operation.
type AuthMetric struct {
	// Operation is the gateway call, e.g. "sign_in", "sign_in_with_token", "check".
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitAuthOutcome emits auth.operation counts and auth.duration timings.
func EmitAuthOutcome(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.operation", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// NavigationMetric captures a navigation store mutation.
type NavigationMetric struct {
	Slot string
	// Action is "store" or "delete".
	Action string
	Items  int
}

// EmitNavigationChange counts store mutations and gauges the slot's top-level size.
func EmitNavigationChange(sink statsd.Sink, in NavigationMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"slot": in.Slot, "action": in.Action}
	sink.Count("navigation.change", 1, tags)
	sink.Gauge("navigation.items", float64(in.Items), map[string]string{"slot": in.Slot})
}

// EmitSubscribers gauges the number of open subscriptions on a feed.
func EmitSubscribers(sink statsd.Sink, feed string, n int) {
	if sink == nil {
		return
	}
	sink.Gauge("feed.subscribers", float64(n), map[string]string{"feed": feed})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
