package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dedup_run_duration_seconds",
			Help:    "Duration of each per-user deduplication run in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
	RunStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dedup_run_step_duration_seconds",
			Help:       "Duration of each step in a deduplication run.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	PairsComparedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_pairs_compared_total",
			Help: "Total number of job pairs run through the similarity scorer.",
		},
	)
	DuplicatesFoundCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_duplicates_found_total",
			Help: "Total number of duplicate relationships detected.",
		},
	)
	SkippedPairsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_pairs_skipped_total",
			Help: "Total number of pairs skipped due to scoring errors or conflicts.",
		},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(RunStepDuration)
	prometheus.MustRegister(PairsComparedCounter)
	prometheus.MustRegister(DuplicatesFoundCounter)
	prometheus.MustRegister(SkippedPairsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
	}()
}
