package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcomes recorded on CheckoutTotal.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

// Business holds Prometheus metrics for marketplace transactions.
// All recording methods are safe on a nil receiver so services can run without metrics.
type Business struct {
	CheckoutTotal    *prometheus.CounterVec
	CheckoutDuration prometheus.Histogram
	OrderValue       prometheus.Histogram
	OrderItemCount   prometheus.Histogram
	StockDecremented prometheus.Counter
	OrderTransitions *prometheus.CounterVec
	CartItemsAdded   prometheus.Counter
	GuestCartsMerged prometheus.Counter
	ReviewsCreated   prometheus.Counter
	RatingRecomputed prometheus.Counter
}

// NewBusiness creates and registers business metrics on reg.
func NewBusiness(namespace string, reg prometheus.Registerer) *Business {
	if namespace == "" {
		namespace = "marketplace"
	}
	factory := promauto.With(reg)
	subsystem := "business"

	return &Business{
		CheckoutTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_total",
				Help:      "Checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
		CheckoutDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_duration_seconds",
				Help:      "Time spent in the checkout transaction",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order total amount in currency units",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
			},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Distinct products per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 20},
			},
		),
		StockDecremented: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stock_decremented_units_total",
				Help:      "Units removed from stock by checkout",
			},
		),
		OrderTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_status_transitions_total",
				Help:      "Order status changes",
			},
			[]string{"from", "to"},
		),
		CartItemsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Add-to-cart actions",
			},
		),
		GuestCartsMerged: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "guest_carts_merged_total",
				Help:      "Guest carts merged into customer carts",
			},
		),
		ReviewsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reviews_created_total",
				Help:      "Product reviews created",
			},
		),
		RatingRecomputed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rating_recomputed_total",
				Help:      "Product rating recomputations",
			},
		),
	}
}

func (m *Business) RecordCheckout(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.CheckoutTotal.WithLabelValues(outcome).Inc()
	m.CheckoutDuration.Observe(seconds)
}

func (m *Business) RecordOrder(total float64, lines int) {
	if m == nil {
		return
	}
	m.OrderValue.Observe(total)
	m.OrderItemCount.Observe(float64(lines))
}

func (m *Business) RecordStockDecrement(units int) {
	if m == nil {
		return
	}
	m.StockDecremented.Add(float64(units))
}

func (m *Business) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

func (m *Business) RecordCartAdd() {
	if m == nil {
		return
	}
	m.CartItemsAdded.Inc()
}

func (m *Business) RecordGuestMerge() {
	if m == nil {
		return
	}
	m.GuestCartsMerged.Inc()
}

func (m *Business) RecordReview() {
	if m == nil {
		return
	}
	m.ReviewsCreated.Inc()
}

func (m *Business) RecordRatingRecompute() {
	if m == nil {
		return
	}
	m.RatingRecomputed.Inc()
}
