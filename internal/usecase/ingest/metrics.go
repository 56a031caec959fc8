package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_total",
		Help: "Rows processed by the ingestion pipeline, by entity and terminal outcome.",
	}, []string{"entity", "status"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_batches_total",
		Help: "Batches by entity and terminal state.",
	}, []string{"entity", "state"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingest_batch_duration_seconds",
		Help:    "Wall time from batch creation to completion.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"entity"})
)
