package dispatch

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/promotion"
)

// Metrics counts dispatcher decisions. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	decisions     *prometheus.CounterVec
	legacyReports *prometheus.CounterVec
}

// NewMetrics creates the dispatcher counters and registers them with reg.
// A nil reg leaves them unregistered. Registering twice with the same
// registry returns the counters that are already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errpromote_decisions_total",
				Help: "Total number of raised errors by category and outcome",
			},
			[]string{"category", "outcome"},
		),
		legacyReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errpromote_legacy_reports_total",
				Help: "Total number of legacy-path errors by category and visibility",
			},
			[]string{"category", "visible"},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.decisions, err = register(reg, m.decisions); err != nil {
		return nil, err
	}
	if m.legacyReports, err = register(reg, m.legacyReports); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) recordDecision(c errcategory.Category, o promotion.Outcome) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(c.String(), o.String()).Inc()
}

func (m *Metrics) recordLegacyReport(c errcategory.Category, visible bool) {
	if m == nil {
		return
	}
	m.legacyReports.WithLabelValues(c.String(), strconv.FormatBool(visible)).Inc()
}
