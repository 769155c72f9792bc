package manager

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ManetLens/internal/alerter"
	"ManetLens/internal/config"
	"ManetLens/internal/engine/correlate"
	_ "ManetLens/internal/engine/impl/connectivity" // Registers connectivity analyzer
	_ "ManetLens/internal/engine/impl/health"       // Registers health analyzer
	_ "ManetLens/internal/engine/impl/movement"     // Registers movement analyzer
	_ "ManetLens/internal/engine/impl/qos"          // Registers qos analyzer
	"ManetLens/internal/engine/series"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
	"ManetLens/internal/trace"
)

// Manager orchestrates one analysis run: it loads the configured trace
// streams, correlates packet events, fans the result out to the enabled
// analyzers, and hands the assembled report to every enabled writer.
type Manager struct {
	cfg       *config.Config
	analyzers []model.Analyzer
	writers   []model.Writer
	alerter   *alerter.Alerter
}

// New creates a Manager from the config, building the analyzers and writers
// through the factory registries.
func New(cfg *config.Config) (*Manager, error) {
	analyzers, err := factory.Analyzers(cfg)
	if err != nil {
		return nil, err
	}
	writers, err := factory.Writers(cfg)
	if err != nil {
		return nil, err
	}

	m := &Manager{cfg: cfg, analyzers: analyzers, writers: writers}
	if cfg.Alerter.Enabled {
		var notifier alerter.Notifier
		if cfg.Alerter.SMTP.Host != "" {
			notifier = alerter.NewEmailNotifier(cfg.Alerter.SMTP)
		}
		m.alerter = alerter.New(cfg.Alerter, notifier)
		log.Println("Alerter enabled and initialized.")
	}
	return m, nil
}

// Run executes the full pipeline once and returns the report it produced.
// The report is also dispatched to every configured writer.
func (m *Manager) Run() (*model.Report, error) {
	in, report, err := m.prepare()
	if err != nil {
		return nil, err
	}

	if err := m.analyze(in, report); err != nil {
		return nil, err
	}

	m.write(report)

	if m.alerter != nil {
		if err := m.alerter.Run(report); err != nil {
			log.Printf("Error dispatching alerts: %v", err)
		}
	}
	return report, nil
}

// prepare loads the needed trace streams and builds the shared analyzer
// input plus the report skeleton.
func (m *Manager) prepare() (*model.Input, *model.Report, error) {
	isSpine := model.SuffixSpine(m.cfg.Analysis.SpineSuffix)
	in := &model.Input{IsSpine: isSpine}
	report := &model.Report{}

	if m.cfg.NeedsStream("packets") {
		events, err := trace.LoadPacketEvents(m.cfg.Analysis.PacketsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading packet log: %w", err)
		}
		log.Printf("Loaded %d packet events from %s", len(events), m.cfg.Analysis.PacketsPath)

		c, warnings := correlate.Correlate(events, correlate.Options{
			SpineSuffix: m.cfg.Analysis.SpineSuffix,
			NodeCount:   m.cfg.Analysis.NodeCount,
		})
		in.Correlation = c
		report.Warnings = warnings
		report.NormalIDs = c.NormalIDs
		report.SpineIDs = c.SpineIDs
		report.TStart = c.TStart
		report.TEnd = c.TEnd

		size, err := m.seriesSize(c.Sends)
		if err != nil {
			return nil, nil, err
		}
		in.SeriesSize = size
		report.SeriesSize = size
	}

	if m.cfg.NeedsStream("connectivity") {
		samples, err := trace.LoadConnectivitySamples(m.cfg.Analysis.ConnectivityPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading connectivity log: %w", err)
		}
		log.Printf("Loaded %d connectivity samples from %s", len(samples), m.cfg.Analysis.ConnectivityPath)
		in.Connectivity = samples
	}

	if m.cfg.NeedsStream("movement") {
		samples, err := trace.LoadMovementSamples(m.cfg.Analysis.MovementPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading movement log: %w", err)
		}
		log.Printf("Loaded %d movement samples from %s", len(samples), m.cfg.Analysis.MovementPath)
		in.Movement = samples
	}

	for _, a := range m.analyzers {
		for _, stream := range a.Requires() {
			if !m.loaded(in, stream) {
				return nil, nil, fmt.Errorf("analyzer %q requires the %s stream, which is not loaded", a.Name(), stream)
			}
		}
	}

	return in, report, nil
}

// seriesSize returns the configured series size, or infers it from the send
// stream when the config leaves it at zero. An empty send stream falls back
// to size 1 so the health score still reports its zero totals.
func (m *Manager) seriesSize(sends []model.CorrelatedSend) (int, error) {
	if m.cfg.Analysis.SeriesSize > 0 {
		return m.cfg.Analysis.SeriesSize, nil
	}
	size, err := series.InferSize(sends)
	if err != nil {
		var empty *model.EmptyInputError
		if errors.As(err, &empty) {
			log.Println("Packet log has no send events; series size defaults to 1.")
			return 1, nil
		}
		return 0, fmt.Errorf("inferring series size: %w", err)
	}
	log.Printf("Inferred series size %d from the send stream.", size)
	return size, nil
}

func (m *Manager) loaded(in *model.Input, stream string) bool {
	switch stream {
	case "packets":
		return in.Correlation != nil
	case "connectivity":
		return in.Connectivity != nil
	case "movement":
		return in.Movement != nil
	}
	return false
}

// analyze runs every analyzer concurrently against the shared input. Each
// analyzer writes only its own report fields; warnings are collected per
// analyzer and appended in config order so runs stay deterministic.
func (m *Manager) analyze(in *model.Input, report *model.Report) error {
	warnings := make([][]model.IntegrityWarning, len(m.analyzers))
	errs := make([]error, len(m.analyzers))

	var wg sync.WaitGroup
	wg.Add(len(m.analyzers))
	for i, a := range m.analyzers {
		go func(i int, a model.Analyzer) {
			defer wg.Done()
			warnings[i], errs[i] = a.Run(in, report)
		}(i, a)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("analysis %q failed: %w", m.analyzers[i].Name(), err)
		}
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w...)
	}
	return nil
}

// write dispatches the report to every writer concurrently. Writer failures
// are logged, not fatal: one unreachable sink should not discard the run.
func (m *Manager) write(report *model.Report) {
	if len(m.writers) == 0 {
		return
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")

	var wg sync.WaitGroup
	wg.Add(len(m.writers))
	for _, w := range m.writers {
		go func(w model.Writer) {
			defer wg.Done()
			if err := w.Write(report, timestamp); err != nil {
				log.Printf("Error writing report: %v", err)
			}
		}(w)
	}
	wg.Wait()
	log.Printf("Report written by %d writer(s) at %s.", len(m.writers), timestamp)
}
