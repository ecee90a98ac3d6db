// Package metrics counts annotation outcomes and embedding calls for one run
// and exports them in the Prometheus text format.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tabemb/internal/embedding"
	"tabemb/internal/service"
)

// Recorder holds the metrics of a run in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	RowsTotal          prometheus.Gauge
	RowsAnnotated      prometheus.Counter
	RowsMasked         prometheus.Counter
	Cells              *prometheus.CounterVec
	Slots              *prometheus.CounterVec
	TruncatedSentences prometheus.Counter
	Calls              *prometheus.CounterVec
	CallDuration       *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RowsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tabemb_rows",
			Help: "Number of rows in the dataset being annotated",
		}),
		RowsAnnotated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabemb_rows_annotated_total",
			Help: "Rows whose output columns have been written",
		}),
		RowsMasked: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabemb_rows_masked_total",
			Help: "Rows whose text step failed and had every sentence slot masked",
		}),
		Cells: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabemb_structured_cells_total",
				Help: "Structured cells annotated, by outcome",
			},
			[]string{"outcome"},
		),
		Slots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabemb_sentence_slots_total",
				Help: "Sentence slots written, by outcome",
			},
			[]string{"outcome"},
		),
		TruncatedSentences: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabemb_truncated_sentences_total",
			Help: "Sentences dropped because the row had no free slot",
		}),
		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabemb_embedding_calls_total",
				Help: "Embedding service calls, by service and status",
			},
			[]string{"service", "status"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabemb_embedding_call_duration_seconds",
				Help:    "Duration of embedding service calls in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"service"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// RunStarted implements service.Observer.
func (r *Recorder) RunStarted(_ string, rows int) {
	r.RowsTotal.Set(float64(rows))
}

// RowAnnotated implements service.Observer.
func (r *Recorder) RowAnnotated(res service.RowResult, _, _ int) {
	r.RowsAnnotated.Inc()
	r.Cells.WithLabelValues("embedded").Add(float64(res.CellsEmbedded))
	r.Cells.WithLabelValues("fallback").Add(float64(len(res.CellErrors)))
	r.Slots.WithLabelValues("embedded").Add(float64(res.SentencesEmbedded))
	r.Slots.WithLabelValues("masked").Add(float64(res.MaskedSlots))
	if res.TextError != nil {
		r.RowsMasked.Inc()
	} else {
		r.Slots.WithLabelValues("fallback").Add(float64(len(res.SentenceErrors)))
	}
	r.TruncatedSentences.Add(float64(res.Truncated))
}

// WriteTextfile writes every metric to path in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// InstrumentService wraps svc so every call is counted and timed.
func (r *Recorder) InstrumentService(svc embedding.Service) embedding.Service {
	return &instrumentedService{Service: svc, recorder: r}
}

type instrumentedService struct {
	embedding.Service
	recorder *Recorder
}

func (s *instrumentedService) Predict(ctx context.Context, req embedding.Request) (any, error) {
	start := time.Now()
	raw, err := s.Service.Predict(ctx, req)
	name := s.Service.Name()

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.recorder.Calls.WithLabelValues(name, status).Inc()
	s.recorder.CallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return raw, err
}

var _ service.Observer = (*Recorder)(nil)
