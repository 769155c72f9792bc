package qos

import (
	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterAnalyzer("qos", func(cfg *config.Config) (model.Analyzer, error) {
		return &Analyzer{}, nil
	})
}

// Analyzer computes the QoS tables from the correlated send table.
type Analyzer struct{}

func (a *Analyzer) Name() string { return "qos" }

func (a *Analyzer) Requires() []string { return []string{"packets"} }

func (a *Analyzer) Run(in *model.Input, report *model.Report) ([]model.IntegrityWarning, error) {
	c := in.Correlation

	records, network, err := Score(c.Sends, c.NormalIDs, c.TStart, c.TEnd)
	if err != nil {
		return nil, err
	}

	report.QoS = records
	report.Network = network
	return nil, nil
}
