package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokviz_tokenizer_load_duration_seconds",
		Help:    "Time spent acquiring a tokenizer, including downloads",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"backend"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokviz_token_cache_hits_total",
		Help: "Tokenize calls answered from the token cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokviz_token_cache_misses_total",
		Help: "Tokenize calls that ran the tokenizer",
	})
)
