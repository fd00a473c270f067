package common

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PollsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_polls_created_total",
		Help: "Polls created, partitioned by origin (command, template, scheduler)",
	}, []string{"source"})

	VotesCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_votes_cast_total",
		Help: "Accepted vote actions, including vote switches",
	})

	ActionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_action_errors_total",
		Help: "Rejected poll actions by reason",
	}, []string{"reason"})

	SchedulerFires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_scheduler_fires_total",
		Help: "Recurring poll jobs fired",
	})
)

// RunMetricsServer exposes the prometheus registry on addr. Blocks, run it
// in its own goroutine.
func RunMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Infof("Serving metrics on %s", addr)
	err := http.ListenAndServe(addr, mux)
	if err != nil {
		logger.WithError(err).Error("metrics server stopped")
	}
}
