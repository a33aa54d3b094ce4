package bridge

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	live *prometheus.GaugeVec
	ops  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "olmkit",
			Subsystem: "bridge",
			Name:      "live_handles",
			Help:      "Handles currently held by the host, by entity kind.",
		}, []string{"kind"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olmkit",
			Subsystem: "bridge",
			Name:      "operations_total",
			Help:      "Bridge operations by name and result.",
		}, []string{"op", "result"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.live, m.ops} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
