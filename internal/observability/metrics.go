package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeDecoded     = "decoded"
	OutcomeDecodeError = "decode_error"
)

var (
	registerOnce sync.Once

	listenerPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armwire",
			Subsystem: "listener",
			Name:      "packets_total",
			Help:      "Packets handed to a decoder, by outcome.",
		},
		[]string{"listener", "transport", "outcome"},
	)
	listenerBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armwire",
			Subsystem: "listener",
			Name:      "bytes_total",
			Help:      "Bytes read from peers.",
		},
		[]string{"listener", "transport"},
	)
	listenerReadErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armwire",
			Subsystem: "listener",
			Name:      "read_errors_total",
			Help:      "Connection or datagram reads that failed and were dropped.",
		},
		[]string{"listener", "transport"},
	)
	listenerConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armwire",
			Subsystem: "listener",
			Name:      "connections_total",
			Help:      "Accepted TCP connections.",
		},
		[]string{"listener"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "armwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			listenerPackets,
			listenerBytes,
			listenerReadErrors,
			listenerConnections,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordPacket(listener, transport string, n int, decodeErr error) {
	RegisterMetrics()
	outcome := OutcomeDecoded
	if decodeErr != nil {
		outcome = OutcomeDecodeError
	}
	listenerPackets.WithLabelValues(listener, transport, outcome).Inc()
	listenerBytes.WithLabelValues(listener, transport).Add(float64(n))
}

func RecordReadError(listener, transport string) {
	RegisterMetrics()
	listenerReadErrors.WithLabelValues(listener, transport).Inc()
}

func RecordConnection(listener string) {
	RegisterMetrics()
	listenerConnections.WithLabelValues(listener).Inc()
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}
