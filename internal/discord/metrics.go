package discord

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts handled commands. A nil *Metrics records nothing.
type Metrics struct {
	commands *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "octanecore",
			Name:      "commands_total",
			Help:      "Slash commands handled, by command and result.",
		}, []string{"command", "result"}),
	}
	reg.MustRegister(m.commands)
	return m
}

func (m *Metrics) observeCommand(cmd Command, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commands.WithLabelValues(string(cmd), result).Inc()
}
