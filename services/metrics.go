package services

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsCounter prometheus.Counter
	reviewsCounter     *prometheus.CounterVec
	pendingGauge       prometheus.Gauge
	viewsSyncedCounter prometheus.Counter
)

func init() {
	submissionsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_papers_submitted_total",
			Help: "Total number of papers submitted.",
		},
	)
	reviewsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_paper_reviews_total",
			Help: "Review decisions taken by administrators.",
		},
		[]string{"decision"},
	)
	pendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "journal_papers_pending",
			Help: "Papers waiting for an approve or deny decision.",
		},
	)
	viewsSyncedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_paper_views_synced_total",
			Help: "Paper views flushed from the view counter into the database.",
		},
	)
	prometheus.MustRegister(submissionsCounter, reviewsCounter, pendingGauge, viewsSyncedCounter)
}
