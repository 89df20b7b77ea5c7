package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokviz_hub_download_bytes_total",
		Help: "Total number of bytes downloaded from the model hub",
	})

	downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokviz_hub_downloads_total",
		Help: "Model hub downloads by result",
	}, []string{"result"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokviz_hub_cache_hits_total",
		Help: "Model files served from the local cache",
	})
)
