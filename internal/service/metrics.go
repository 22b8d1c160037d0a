package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"silsilah_go/internal/family"
)

// 家谱树相关指标
var (
	treeBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "silsilah_tree_build_duration_seconds",
		Help:    "Time to load members and build a family tree",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"view"})

	treeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "silsilah_tree_size_nodes",
		Help:    "Number of nodes in built trees",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
	})

	treeWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silsilah_tree_warnings_total",
		Help: "Data warnings found while indexing or building trees",
	}, []string{"kind"})

	viewTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silsilah_view_transitions_total",
		Help: "View state transitions by mode and action",
	}, []string{"mode", "action", "changed"})

	memberLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silsilah_member_load_errors_total",
		Help: "Failed member list loads from the repository",
	})
)

func observeBuild(view string, start time.Time, root *family.TreeNode) {
	treeBuildDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	if root != nil {
		treeSize.Observe(float64(root.Size()))
	}
}

func countWarnings(warnings []family.Warning) {
	for _, w := range warnings {
		treeWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}

func countTransition(mode, action string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	viewTransitions.WithLabelValues(mode, action, c).Inc()
}
