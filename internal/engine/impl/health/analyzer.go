package health

import (
	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterAnalyzer("health", func(cfg *config.Config) (model.Analyzer, error) {
		return &Analyzer{steps: cfg.Analysis.WindowSteps}, nil
	})
}

// Analyzer runs the static and windowed health scores over the correlated
// send table.
type Analyzer struct {
	steps int
}

func (a *Analyzer) Name() string { return "health" }

func (a *Analyzer) Requires() []string { return []string{"packets"} }

func (a *Analyzer) Run(in *model.Input, report *model.Report) ([]model.IntegrityWarning, error) {
	c := in.Correlation

	stats, err := Score(c.Sends, c.NormalIDs, in.IsSpine, in.SeriesSize)
	if err != nil {
		return nil, err
	}
	windows, err := ScoreOverTime(c.Sends, c.NormalIDs, in.IsSpine, in.SeriesSize, c.TStart, c.TEnd, a.steps)
	if err != nil {
		return nil, err
	}

	report.Health = stats
	report.WindowedHealth = windows
	return nil, nil
}
