package restfully

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records prometheus metrics about the exchanges of a
// session. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restfully_requests_total",
				Help: "Total number of HTTP exchanges completed",
			},
			[]string{"method", "status_code", "host"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restfully_request_duration_seconds",
				Help:    "Duration of HTTP exchanges in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restfully_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "host"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restfully_errors_total",
				Help: "Total number of failed exchanges by kind",
			},
			[]string{"kind", "method", "host"},
		),
	}
}

// RecordRequest records one completed exchange.
func (mc *MetricsCollector) RecordRequest(method, host string, statusCode, attempts int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode), host).Inc()
	mc.requestDuration.WithLabelValues(method, host).Observe(duration.Seconds())

	if attempts > 1 {
		mc.retriesTotal.WithLabelValues(method, host).Add(float64(attempts - 1))
	}

	switch {
	case statusCode >= 500:
		mc.errorsTotal.WithLabelValues(KindServer.String(), method, host).Inc()
	case statusCode >= 400:
		mc.errorsTotal.WithLabelValues(KindClient.String(), method, host).Inc()
	}
}

// RecordConnectionError records an exchange that got no response.
func (mc *MetricsCollector) RecordConnectionError(method, host string, attempts int) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues("connection", method, host).Inc()

	if attempts > 1 {
		mc.retriesTotal.WithLabelValues(method, host).Add(float64(attempts - 1))
	}
}

// MetricsResponseInterceptor feeds collector with every exchange.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		host := req.uri.Host

		if resp.Err() != nil {
			collector.RecordConnectionError(req.Method(), host, req.Attempts())

			return nil
		}

		collector.RecordRequest(req.Method(), host, resp.StatusCode(), req.Attempts(), resp.Duration())

		return nil
	}
}
