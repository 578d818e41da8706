package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfoOnce sync.Once

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Tasklane API build information.",
		},
		[]string{"version", "store"},
	)
)

// InitBuildInfo registers build_info once and sets build_info{version,store} to 1.
func InitBuildInfo(version, store string) {
	buildInfoOnce.Do(func() {
		prometheus.MustRegister(buildInfo)
	})
	buildInfo.WithLabelValues(version, store).Set(1)
}
