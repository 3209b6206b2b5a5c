package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exchange_match_duration_seconds",
		Help:    "Duration of one matching pass in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	ordersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_orders_submitted_total",
			Help: "Total number of orders accepted after escrow.",
		},
		[]string{"market"},
	)
	ordersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_orders_rejected_total",
			Help: "Total number of orders rejected before entering the book.",
		},
		[]string{"market"},
	)
	ordersCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_orders_cancelled_total",
			Help: "Total number of orders cancelled by their owner.",
		},
		[]string{"market"},
	)
	tradesExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_trades_executed_total",
			Help: "Total number of executed trades.",
		},
		[]string{"market"},
	)
	quantityTraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_quantity_traded_total",
			Help: "Total item quantity moved by executed trades.",
		},
		[]string{"market"},
	)
)

// Init registers metrics with the registry once.
func Init() {
	once.Do(func() {
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			matchDuration,
			ordersSubmitted,
			ordersRejected,
			ordersCancelled,
			tradesExecuted,
			quantityTraded,
		)
	})
}

// Handler exposes the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func ObserveMatchDuration(d time.Duration) {
	Init()
	matchDuration.Observe(d.Seconds())
}

func IncOrdersSubmitted(market string) {
	Init()
	ordersSubmitted.WithLabelValues(market).Inc()
}

func IncOrdersRejected(market string) {
	Init()
	ordersRejected.WithLabelValues(market).Inc()
}

func IncOrdersCancelled(market string) {
	Init()
	ordersCancelled.WithLabelValues(market).Inc()
}

// IncTradesExecuted records one trade of qty units on a market.
func IncTradesExecuted(market string, qty int64) {
	Init()
	tradesExecuted.WithLabelValues(market).Inc()
	quantityTraded.WithLabelValues(market).Add(float64(qty))
}
