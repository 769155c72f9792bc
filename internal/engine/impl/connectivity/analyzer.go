package connectivity

import (
	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

// worstSliceCount bounds the "worst moments" list in the summary.
const worstSliceCount = 5

func init() {
	factory.RegisterAnalyzer("connectivity", func(cfg *config.Config) (model.Analyzer, error) {
		return &Analyzer{}, nil
	})
}

// Analyzer derives offline times and online fractions from the connectivity
// log.
type Analyzer struct{}

func (a *Analyzer) Name() string { return "connectivity" }

func (a *Analyzer) Requires() []string { return []string{"connectivity"} }

func (a *Analyzer) Run(in *model.Input, report *model.Report) ([]model.IntegrityWarning, error) {
	stats, err := Stats(in.Connectivity, worstSliceCount)
	if err != nil {
		return nil, err
	}

	report.OfflineTimes = FirstOfflineTimes(in.Connectivity)
	report.Connectivity = stats
	return nil, nil
}
