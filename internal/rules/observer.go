package rules

import (
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// Observer receives progress events from an evaluation. Implementations must
// not affect results.
type Observer interface {
	PeriodSelected(index int, nature string)
	MetricComputed(metric string, value float64, ok bool)
	FlagAssigned(name model.FlagName, flag model.Flag)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) PeriodSelected(int, string) {}
func (NopObserver) MetricComputed(string, float64, bool) {}
func (NopObserver) FlagAssigned(model.FlagName, model.Flag) {}

// LogObserver writes evaluation events to a zap logger at debug level.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates a LogObserver. A nil logger uses zap.L().
func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.L()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) PeriodSelected(index int, nature string) {
	o.log.Debug("rules: period selected",
		zap.Int("index", index),
		zap.String("nature", nature),
	)
}

func (o *LogObserver) MetricComputed(metric string, value float64, ok bool) {
	if !ok {
		o.log.Debug("rules: metric missing", zap.String("metric", metric))
		return
	}
	o.log.Debug("rules: metric computed",
		zap.String("metric", metric),
		zap.Float64("value", value),
	)
}

func (o *LogObserver) FlagAssigned(name model.FlagName, flag model.Flag) {
	o.log.Debug("rules: flag assigned",
		zap.String("flag", string(name)),
		zap.Stringer("value", flag),
	)
}
