package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's Prometheus collectors. A nil *Registry is valid
// and records nothing, which keeps tests free of metric plumbing.
type Registry struct {
	reg *prometheus.Registry

	OrdersPlaced   prometheus.Counter
	OrdersRejected *prometheus.CounterVec
	OrderTxSec     prometheus.Histogram
	OrdersReady    prometheus.Counter
	Notifications  *prometheus.CounterVec
	ZReports       *prometheus.CounterVec
	EventsDropped  prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_orders_placed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_orders_rejected_total"}, []string{"reason"})
	txSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_order_tx_seconds",
		Buckets: prometheus.DefBuckets,
	})
	ready := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_orders_ready_total"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_notifications_total"}, []string{"result"})
	zreports := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_zreports_total"}, []string{"status"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_events_dropped_total"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_http_requests_total"}, []string{"method", "route", "code"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_http_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(placed, rejected, txSec, ready, notifications, zreports, dropped, httpRequests, httpLatency)
	return &Registry{
		reg:            r,
		OrdersPlaced:   placed,
		OrdersRejected: rejected,
		OrderTxSec:     txSec,
		OrdersReady:    ready,
		Notifications:  notifications,
		ZReports:       zreports,
		EventsDropped:  dropped,
		HTTPRequests:   httpRequests,
		HTTPLatency:    httpLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) OrderPlaced(took time.Duration) {
	if r == nil {
		return
	}
	r.OrdersPlaced.Inc()
	r.OrderTxSec.Observe(took.Seconds())
}

func (r *Registry) OrderRejected(reason string) {
	if r == nil {
		return
	}
	r.OrdersRejected.WithLabelValues(reason).Inc()
}

func (r *Registry) OrderReady(notification string) {
	if r == nil {
		return
	}
	r.OrdersReady.Inc()
	r.Notifications.WithLabelValues(notification).Inc()
}

func (r *Registry) ZReport(status string) {
	if r == nil {
		return
	}
	r.ZReports.WithLabelValues(status).Inc()
}

func (r *Registry) EventDropped() {
	if r == nil {
		return
	}
	r.EventsDropped.Inc()
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.HTTPLatency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
