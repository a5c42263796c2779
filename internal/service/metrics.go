package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// Metrics counts pipeline activity. A nil *Metrics is a no-op so tests can
// skip registration.
type Metrics struct {
	itemsTotal   *prometheus.CounterVec
	batchesTotal *prometheus.CounterVec
}

// NewMetrics registers the pipeline counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		itemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_items_total",
			Help: "Processed upload items by result.",
		}, []string{"result"}),
		batchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_batches_total",
			Help: "Processed upload batches by summary.",
		}, []string{"summary"}),
	}
}

func (m *Metrics) ObserveItem(item *domain.UploadItemResult) {
	if m == nil {
		return
	}

	result := "failed"
	switch {
	case item.IsSuccess():
		result = "succeeded"
	case len(item.Errors) > 0:
		result = "rejected"
	}
	m.itemsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBatch(summary string) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(summary).Inc()
}
