package mooglife

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "mooglife"
)

var (
	gateAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "gate_allowed_total",
			Help:      "requests admitted by the api access gate",
		},
		[]string{"tier"},
	)
	gateRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "gate_rejected_total",
			Help:      "requests rejected by the api access gate",
		},
		[]string{"kind"},
	)
	tokenPriceUsd = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "token_price_usd",
			Help:      "latest synced token price",
		},
		[]string{"source"},
	)
	tokenLiquidityUsd = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "token_liquidity_usd",
			Help:      "latest synced pool liquidity",
		},
		[]string{"source"},
	)
	holderTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "holder_total",
			Help:      "tracked holder rows",
		},
	)
)

func init() {
	prometheus.MustRegister(
		gateAllowed,
		gateRejected,
		tokenPriceUsd,
		tokenLiquidityUsd,
		holderTotal,
	)
}

func metricGateAllowed(tier string) {
	gateAllowed.WithLabelValues(tier).Inc()
}

func metricGateRejected(kind string) {
	gateRejected.WithLabelValues(kind).Inc()
}

func metricMarket(source string, priceUsd, liquidityUsd float64) {
	tokenPriceUsd.WithLabelValues(source).Set(priceUsd)
	tokenLiquidityUsd.WithLabelValues(source).Set(liquidityUsd)
}

func metricHolderTotal(total int64) {
	holderTotal.Set(float64(total))
}
