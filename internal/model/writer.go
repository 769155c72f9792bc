package model

// Writer persists a completed analysis report. The timestamp names the run
// and doubles as the output subdirectory for file-based writers.
type Writer interface {
	Write(report *Report, timestamp string) error
}
