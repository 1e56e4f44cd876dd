package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event pipeline metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events recorded, by terminal status",
		},
		[]string{"tenant_id", "event_type", "status"},
	)

	EventForwardingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_forwarding_duration_seconds",
			Help:    "Duration of best-effort event forwarding to the bus",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tenant_id"},
	)

	EventForwardingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_forwarding_failures_total",
			Help: "Total number of failed forwarding attempts to the bus",
		},
		[]string{"tenant_id"},
	)

	// Quota metrics
	QuotaRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Total number of creates rejected by the quota gate",
		},
		[]string{"tenant_id"},
	)

	// Tenant resolution metrics
	TenantResolutionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolution_failures_total",
			Help: "Requests rejected during tenant resolution",
		},
		[]string{"reason"}, // reason: no_subdomain, not_found, inactive
	)

	ActiveTenants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_tenants_total",
			Help: "Current number of active tenants",
		},
	)

	// Event bus connection metrics
	BusConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventbus_connections_active",
			Help: "Number of active event bus connections",
		},
		[]string{"status"}, // status: connected, disconnected
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// IncrementEventsPublished increments the published events counter.
func IncrementEventsPublished(tenantID, eventType, status string) {
	EventsPublishedTotal.WithLabelValues(tenantID, eventType, status).Inc()
}

// RecordForwardingDuration records one forwarding attempt's duration.
func RecordForwardingDuration(tenantID string, seconds float64) {
	EventForwardingDuration.WithLabelValues(tenantID).Observe(seconds)
}

// IncrementForwardingFailures increments the forwarding failure counter.
func IncrementForwardingFailures(tenantID string) {
	EventForwardingFailures.WithLabelValues(tenantID).Inc()
}

// IncrementQuotaRejections increments the quota rejection counter.
func IncrementQuotaRejections(tenantID string) {
	QuotaRejectionsTotal.WithLabelValues(tenantID).Inc()
}

// IncrementResolutionFailures increments the tenant resolution failure counter.
func IncrementResolutionFailures(reason string) {
	TenantResolutionFailures.WithLabelValues(reason).Inc()
}

// UpdateActiveTenants updates the total number of active tenants.
func UpdateActiveTenants(count float64) {
	ActiveTenants.Set(count)
}

// UpdateBusConnections updates the event bus connection status gauge.
func UpdateBusConnections(status string, count float64) {
	BusConnections.WithLabelValues(status).Set(count)
}

// IncrementAPIRequests increments the API request counter.
func IncrementAPIRequests(method, endpoint, statusCode string) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
}

// RecordAPIRequestDuration records API request duration.
func RecordAPIRequestDuration(method, endpoint string, duration float64) {
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}
