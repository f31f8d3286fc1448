// Package telemetry holds the process-wide Prometheus collectors. Only
// bounded label sets are used; nothing here carries per-key cardinality.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Admissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flashsale_admissions_total",
		Help: "Seckill admission attempts by result (ok, sold_out, duplicate)",
	}, []string{"result"})

	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashsale_orders_created_total",
		Help: "Orders durably written by the stream consumer",
	})

	ConsumerAcks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashsale_consumer_acks_total",
		Help: "Stream entries acknowledged after successful processing",
	})

	ConsumerQuarantined = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashsale_consumer_quarantined_total",
		Help: "Stream entries dropped after exhausting their retry limit",
	})

	CacheReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flashsale_cache_reads_total",
		Help: "Cache lookups by mode (pass_through, logical_expire) and outcome",
	}, []string{"mode", "outcome"})

	CacheRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flashsale_cache_rebuilds_total",
		Help: "Background cache rebuild tasks dispatched",
	})
)

func init() {
	prometheus.MustRegister(
		Admissions,
		OrdersCreated,
		ConsumerAcks,
		ConsumerQuarantined,
		CacheReads,
		CacheRebuilds,
	)
}
