package factory

import (
	"fmt"
	"log"

	"ManetLens/internal/config"
	"ManetLens/internal/model"
)

// AnalyzerFactory creates one analyzer from the config.
type AnalyzerFactory func(cfg *config.Config) (model.Analyzer, error)

// WriterFactory creates one result writer from its definition. The full
// config is passed along for settings shared across writers, like the spine
// suffix used to order node rows.
type WriterFactory func(cfg *config.Config, def config.WriterDef) (model.Writer, error)

var (
	analyzerRegistry = make(map[string]AnalyzerFactory)
	writerRegistry   = make(map[string]WriterFactory)
)

// RegisterAnalyzer registers an analysis type with its factory function.
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	if _, exists := analyzerRegistry[name]; exists {
		panic(fmt.Sprintf("analyzer %q already registered", name))
	}
	analyzerRegistry[name] = factory
}

// RegisterWriter registers a writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := writerRegistry[name]; exists {
		panic(fmt.Sprintf("writer type %q already registered", name))
	}
	writerRegistry[name] = factory
}

// Analyzers builds the analyzers named in cfg.Analysis.Run, in config order.
func Analyzers(cfg *config.Config) ([]model.Analyzer, error) {
	analyzers := make([]model.Analyzer, 0, len(cfg.Analysis.Run))
	for _, name := range cfg.Analysis.Run {
		factory, ok := analyzerRegistry[name]
		if !ok {
			return nil, fmt.Errorf("unknown analysis: %q", name)
		}
		a, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("error creating analysis %q: %w", name, err)
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}

// Writers builds every enabled writer from the config. Writers that fail to
// initialize (e.g. an unreachable database) are skipped with a warning so
// the remaining writers still receive the report.
func Writers(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		factory, ok := writerRegistry[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown writer type: %q", def.Type)
		}
		w, err := factory(cfg, def)
		if err != nil {
			log.Printf("Warning: failed to create writer type %q: %v, skipping.", def.Type, err)
			continue
		}
		writers = append(writers, w)
	}
	return writers, nil
}
