package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RouteMatches counts route table outcomes per request
	RouteMatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_route_matches_total",
		Help: "The number of requests per routing outcome: matched, not_found or bad_request",
	}, []string{"result"})

	// FileReplies counts file replies by the status code decided before streaming
	FileReplies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_file_replies_total",
		Help: "The number of file replies per status code",
	}, []string{"status_code"})

	// FileSize observes the size of served files
	FileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fileroute_file_size_bytes",
		Help:    "The size in bytes of files served from disk",
		Buckets: prometheus.ExponentialBuckets(512, 4, 10),
	})

	// StreamsActive is the number of file bodies currently being copied
	StreamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fileroute_streams_active",
		Help: "The number of file bodies currently being streamed",
	})

	// StreamsFinished counts finished copy loops by outcome
	StreamsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_streams_finished_total",
		Help: "The number of finished file streams per outcome: complete, short_read, disconnected or read_error",
	}, []string{"outcome"})

	// StreamedBytes counts body bytes handed to the transport
	StreamedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fileroute_streamed_bytes_total",
		Help: "The number of file bytes handed to response bodies",
	})

	// VFSOperations includes the count of VFS operations
	VFSOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_vfs_operations_total",
		Help: "The number of VFS operations",
	}, []string{"vfs_name", "operation", "success"})

	// ProcessedRequests counts HTTP requests by status code. Methods are
	// counted by RejectedMethods, where the label values are bounded.
	ProcessedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_http_requests_total",
		Help: "Total number of HTTP requests done serving",
	}, []string{"code"})

	// RateLimitedRequests counts requests rejected by the rate limiter
	RateLimitedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fileroute_rate_limited_requests_total",
		Help: "The number of requests rejected with 429 by the rate limiter",
	})

	// RejectedMethods counts requests refused with 405 by method
	RejectedMethods = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileroute_rejected_methods_total",
		Help: "The number of requests rejected with 405 per HTTP method",
	}, []string{"method"})

	// LimitListenerMaxConns config value for the limit listener
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fileroute_limit_listener_max_conns",
		Help: "The maximum number of concurrent connections allowed by the limit listener",
	})

	// LimitListenerConcurrentConns is the number of connections currently held by the listener
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fileroute_limit_listener_concurrent_conns",
		Help: "The number of concurrent connections accepted by the limit listener",
	})

	// LimitListenerWaitingConns is the number of connections waiting for a free slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fileroute_limit_listener_waiting_conns",
		Help: "The number of connections waiting for a free slot in the limit listener",
	})
)

// MustRegister collectors with the Prometheus client
func MustRegister() {
	prometheus.MustRegister(
		RouteMatches,
		FileReplies,
		FileSize,
		StreamsActive,
		StreamsFinished,
		StreamedBytes,
		VFSOperations,
		ProcessedRequests,
		RateLimitedRequests,
		RejectedMethods,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
	)
}
