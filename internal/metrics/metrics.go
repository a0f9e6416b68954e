// Package metrics defines the Prometheus collectors for the ledger and an
// HTTP middleware that times requests by route.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fkhayef/splitledger/internal/apperr"
)

const namespace = "splitledger"

// ExpensesCreated counts new expenses by category.
var ExpensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "expenses_created_total",
	Help:      "Expenses recorded, by category.",
}, []string{"category"})

// SharesSettled counts individual split entries marked settled.
var SharesSettled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "shares_settled_total",
	Help:      "Split shares marked as settled.",
})

// ExpensesFullySettled counts expenses whose last share was settled.
var ExpensesFullySettled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "expenses_fully_settled_total",
	Help:      "Expenses that reached the fully settled state.",
})

// LedgerErrors counts rejected ledger operations by error kind.
var LedgerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "ledger_errors_total",
	Help:      "Ledger operations that failed, by error kind.",
}, []string{"kind"})

// RequestDuration observes HTTP latency by route pattern.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// ObserveError records err under its kind. Nil is ignored.
func ObserveError(err error) {
	if err == nil {
		return
	}
	LedgerErrors.WithLabelValues(apperr.Kind(err)).Inc()
}

// Instrument times each request. The route label is the chi pattern so
// path parameters do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
