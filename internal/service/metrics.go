package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics counts capture outcomes and notification deliveries.
type PipelineMetrics struct {
	captures      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewPipelineMetrics creates the capture metrics and registers them on reg.
func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		captures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_captures_total",
				Help: "Capture runs by outcome.",
			},
			[]string{"outcome"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_notifications_total",
				Help: "Post-save notifications by delivery result.",
			},
			[]string{"delivered"},
		),
	}
	for _, c := range []prometheus.Collector{m.captures, m.notifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PipelineMetrics) observeCapture(kind error) {
	if m == nil {
		return
	}
	m.captures.WithLabelValues(outcomeLabel(kind)).Inc()
}

func (m *PipelineMetrics) observeNotification(delivered bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(strconv.FormatBool(delivered)).Inc()
}
