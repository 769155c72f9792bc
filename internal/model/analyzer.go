package model

// Correlation is the output of the event correlator: the correlated-send
// table plus the node universe and simulation time span derived from it.
type Correlation struct {
	Sends     []CorrelatedSend
	NormalIDs []string
	SpineIDs  []string
	TStart    float64
	TEnd      float64
}

// Input bundles everything an analyzer may consume. The manager fills only
// the parts required by the enabled analyzers; all fields are read-only once
// analysis starts.
type Input struct {
	Correlation  *Correlation
	SeriesSize   int
	IsSpine      SpineFunc
	Connectivity []ConnectivitySample
	Movement     []MovementSample
}

// Analyzer is a single self-contained analysis pass (health, qos, ...).
// Run writes only the analyzer's own fields of the report, so analyzers are
// safe to execute concurrently against the same input.
type Analyzer interface {
	Name() string
	// Requires lists the input streams this analyzer needs ("packets",
	// "connectivity", "movement"); validated before any file is read.
	Requires() []string
	Run(in *Input, report *Report) ([]IntegrityWarning, error)
}
