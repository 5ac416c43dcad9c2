// Package rules evaluates underwriting flags from a financial-statement
// document. Every function here is pure: the same document always yields the
// same flags.
package rules

import (
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Metric is one computed ratio. Available is false when an input was missing.
type Metric struct {
	Name      string  `json:"name" yaml:"name"`
	Value     float64 `json:"value" yaml:"value"`
	Available bool    `json:"available" yaml:"available"`
}

// Assessment is the full outcome of evaluating one document.
type Assessment struct {
	PeriodIndex int                    `json:"period_index" yaml:"period_index"`
	Nature      string                 `json:"nature" yaml:"nature"`
	Metrics     []Metric               `json:"metrics" yaml:"metrics"`
	Flags       model.EvaluationResult `json:"flags" yaml:"flags"`
}

// Metric returns the named metric, or false if it was not computed.
func (a *Assessment) Metric(name string) (Metric, bool) {
	for _, m := range a.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

type calculator func(doc *model.FinancialDocument, idx int) (float64, bool, error)

type classifier func(value float64, ok bool) model.Flag

// rule ties one flag to the metric it is derived from.
type rule struct {
	flag     model.FlagName
	metric   string
	compute  calculator
	classify classifier
}

var defaultRules = []rule{
	{flag: model.TotalRevenue5CrFlag, metric: MetricTotalRevenue, compute: TotalRevenue, classify: RevenueFlag},
	{flag: model.BorrowingToRevenueFlag, metric: MetricBorrowingRatio, compute: BorrowingRatio, classify: BorrowingFlag},
	{flag: model.ISCRFlag, metric: MetricISCR, compute: ISCR, classify: ISCRFlag},
}

// Engine runs the underwriting rules. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an Observer. A nil observer is ignored.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{observer: NopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns all three flags for the document. Missing line items
// produce WHITE flags; a structural fault aborts with no partial result.
func (e *Engine) Evaluate(doc *model.FinancialDocument) (model.EvaluationResult, error) {
	a, err := e.Assess(doc)
	if err != nil {
		return nil, err
	}
	return a.Flags, nil
}

// Assess is Evaluate plus the selected period and the computed metrics.
func (e *Engine) Assess(doc *model.FinancialDocument) (*Assessment, error) {
	idx, err := SelectPeriod(doc)
	if err != nil {
		return nil, err
	}
	st, err := Statement(doc, idx)
	if err != nil {
		return nil, err
	}
	e.observer.PeriodSelected(idx, st.Nature)

	a := &Assessment{
		PeriodIndex: idx,
		Nature:      st.Nature,
		Metrics:     make([]Metric, 0, len(defaultRules)),
		Flags:       make(model.EvaluationResult, len(defaultRules)),
	}

	// Flags are assigned only once every metric computed without a fault.
	for _, r := range defaultRules {
		v, ok, err := r.compute(doc, idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			v = 0
		}
		e.observer.MetricComputed(r.metric, v, ok)
		a.Metrics = append(a.Metrics, Metric{Name: r.metric, Value: v, Available: ok})
	}

	for i, r := range defaultRules {
		m := a.Metrics[i]
		f := r.classify(m.Value, m.Available)
		e.observer.FlagAssigned(r.flag, f)
		a.Flags[r.flag] = f
	}

	return a, nil
}

var defaultEngine = NewEngine()

// Evaluate runs the rules with a default Engine that emits no events.
func Evaluate(doc *model.FinancialDocument) (model.EvaluationResult, error) {
	return defaultEngine.Evaluate(doc)
}
