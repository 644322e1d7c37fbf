package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// VoucherPreviewTotal counts voucher preview outcomes.
	VoucherPreviewTotal *prometheus.CounterVec
	// VoucherApplyTotal counts voucher apply/remove outcomes on carts.
	VoucherApplyTotal *prometheus.CounterVec
	// VoucherSettleTotal counts post-checkout voucher settlement outcomes.
	VoucherSettleTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout attempts by outcome.
	CheckoutTotal *prometheus.CounterVec
	// DiscountGrantedTotal accumulates granted discount amounts in minor units.
	DiscountGrantedTotal *prometheus.CounterVec
	// OrderExpiredTotal counts orders expired by the background worker.
	OrderExpiredTotal prometheus.Counter
	// EventEmitFailureTotal counts domain events whose persist or fan-out failed.
	EventEmitFailureTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		VoucherPreviewTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_preview_total",
			Help:      "Count of voucher preview outcomes.",
		}, []string{"result"})
		VoucherApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_apply_total",
			Help:      "Count of voucher apply and remove outcomes.",
		}, []string{"action", "result"})
		VoucherSettleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_settle_total",
			Help:      "Count of voucher settlement outcomes.",
		}, []string{"result"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by outcome.",
		}, []string{"result"})
		DiscountGrantedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_granted_total",
			Help:      "Total discount granted at checkout, in minor currency units.",
		}, []string{"scope"})
		OrderExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_expired_total",
			Help:      "Number of pending orders expired by the worker.",
		})
		EventEmitFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_emit_failure_total",
			Help:      "Domain events that failed to persist or fan out, by topic.",
		}, []string{"topic"})

		mustRegisterCollector(reg, VoucherPreviewTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VoucherPreviewTotal = v
			}
		})
		mustRegisterCollector(reg, VoucherApplyTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VoucherApplyTotal = v
			}
		})
		mustRegisterCollector(reg, VoucherSettleTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VoucherSettleTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountGrantedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountGrantedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderExpiredTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				OrderExpiredTotal = v
			}
		})
		mustRegisterCollector(reg, EventEmitFailureTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EventEmitFailureTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
