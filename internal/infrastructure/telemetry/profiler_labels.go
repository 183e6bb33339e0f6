package telemetry

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelGateway   = "gateway"
)

// Operations tagged on CPU and heap samples.
const (
	OperationCheckout = "checkout"
	OperationWebhook  = "webhook_reconcile"
	OperationTransfer = "wallet_transfer"
)

// MaxLabelValueLength caps label values, in bytes.
const MaxLabelValueLength = 64

// highCardinalityLabels are never attached to profiles. Span profiles carry
// the span id, which is enough to get from a sample back to one payment.
var highCardinalityLabels = map[string]bool{
	"reference":  true,
	"order_id":   true,
	"user_id":    true,
	"wallet_id":  true,
	"guest_id":   true,
	"request_id": true,
	"span_id":    true,
	"trace_id":   true,
}

// OperationLabels builds the label set for one payment operation.
// An empty gateway is left out.
func OperationLabels(operation, gateway string) map[string]string {
	labels := map[string]string{ProfilingLabelOperation: operation}
	if gateway != "" {
		labels[ProfilingLabelGateway] = gateway
	}
	return labels
}

// WithProfilingLabels runs fn with pprof labels set on its goroutine. The
// labels are harmless when no profiler is running.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// labelPairs flattens labels into sorted key/value pairs, dropping empty
// and high-cardinality entries.
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, k := range keys {
		key := labelKey(k)
		value := labels[k]
		if key == "" || value == "" || highCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			cut := MaxLabelValueLength
			for cut > 0 && !utf8.RuneStart(value[cut]) {
				cut--
			}
			value = value[:cut]
		}
		pairs = append(pairs, key, value)
	}
	return pairs
}

// labelKey lowercases k and keeps only snake_case characters
func labelKey(k string) string {
	k = strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(k))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, k)
}
