package compare

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenizationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokviz_tokenization_duration_seconds",
		Help:    "Time spent in tokenization",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokviz_tokens_total",
		Help: "Total number of tokens produced",
	}, []string{"model"})
)
