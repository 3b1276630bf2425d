// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fulfillment"

// Collectors records pipeline and HTTP outcomes. It satisfies the metrics
// port of the command handlers.
type Collectors struct {
	gatherer prometheus.Gatherer

	ordersCreated       *prometheus.CounterVec
	priceMismatches     prometheus.Counter
	webhooksProcessed   *prometheus.CounterVec
	parcelsDispatched   *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

func NewWithRegistry(reg *prometheus.Registry) *Collectors {
	c := &Collectors{
		gatherer: reg,
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Orders stored, by booking kind",
			},
			[]string{"kind"},
		),
		priceMismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_mismatches_total",
				Help:      "Bookings rejected because the declared amount differed from the computed total",
			},
		),
		webhooksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhooks_processed_total",
				Help:      "Provider notifications by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		parcelsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parcel_dispatches_total",
				Help:      "Delivery job creation attempts per parcel by outcome",
			},
			[]string{"outcome"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		c.ordersCreated,
		c.priceMismatches,
		c.webhooksProcessed,
		c.parcelsDispatched,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	)
	return c
}

func (c *Collectors) OrderCreated(bulk bool) {
	kind := "regular"
	if bulk {
		kind = "bulk"
	}
	c.ordersCreated.WithLabelValues(kind).Inc()
}

func (c *Collectors) PriceMismatch() {
	c.priceMismatches.Inc()
}

func (c *Collectors) WebhookProcessed(provider, outcome string) {
	c.webhooksProcessed.WithLabelValues(provider, outcome).Inc()
}

func (c *Collectors) ParcelDispatched(outcome string) {
	c.parcelsDispatched.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one served request. route is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collectors) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
