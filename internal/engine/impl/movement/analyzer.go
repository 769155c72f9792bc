package movement

import (
	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterAnalyzer("movement", func(cfg *config.Config) (model.Analyzer, error) {
		return &Analyzer{}, nil
	})
}

// Analyzer summarizes node mobility from the movement log.
type Analyzer struct{}

func (a *Analyzer) Name() string { return "movement" }

func (a *Analyzer) Requires() []string { return []string{"movement"} }

func (a *Analyzer) Run(in *model.Input, report *model.Report) ([]model.IntegrityWarning, error) {
	stats, err := Stats(in.Movement)
	if err != nil {
		return nil, err
	}

	report.Movement = stats
	return nil, nil
}
