package service

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jss367/convora/internal/repository"
)

// StatsWorker is a periodic background job that refreshes the aggregate
// totals gauges from the database, so instance dashboards show global
// counts rather than per-process ones.
type StatsWorker struct {
	discussions *repository.DiscussionRepo
	interval    time.Duration
	stopCh      chan struct{}

	discussionsTotal prometheus.Gauge
	questionsTotal   prometheus.Gauge
	votesTotal       prometheus.Gauge
	votersTotal      prometheus.Gauge
}

// NewStatsWorker creates a worker that ticks every interval and registers
// its gauges with the default Prometheus registry.
func NewStatsWorker(discussions *repository.DiscussionRepo, interval time.Duration) *StatsWorker {
	w := &StatsWorker{
		discussions: discussions,
		interval:    interval,
		stopCh:      make(chan struct{}),
		discussionsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "convora_discussions_total",
			Help: "Total discussions in the database.",
		}),
		questionsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "convora_questions_total",
			Help: "Total questions in the database.",
		}),
		votesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "convora_votes_total_rows",
			Help: "Total vote rows in the database.",
		}),
		votersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "convora_voters_total",
			Help: "Distinct voter identities in the database.",
		}),
	}
	prometheus.MustRegister(w.discussionsTotal, w.questionsTotal, w.votesTotal, w.votersTotal)
	return w
}

// Start begins the periodic refresh loop. It runs one tick immediately,
// then every interval.
func (w *StatsWorker) Start(ctx context.Context) {
	log.Printf("stats-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("stats-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("stats-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *StatsWorker) Stop() {
	close(w.stopCh)
}

func (w *StatsWorker) tick(ctx context.Context) {
	stats, err := w.discussions.GetStats(ctx)
	if err != nil {
		log.Printf("stats-worker: error: %v", err)
		return
	}

	w.discussionsTotal.Set(float64(stats.TotalDiscussions))
	w.questionsTotal.Set(float64(stats.TotalQuestions))
	w.votesTotal.Set(float64(stats.TotalVotes))
	w.votersTotal.Set(float64(stats.TotalVoters))
}
