package model

import "fmt"

// SchemaError reports a required column missing from one of the input logs.
// It is fatal: the run aborts, nothing is partially computed.
type SchemaError struct {
	Stream string
	Field  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %q in %s log", e.Field, e.Stream)
}

// EmptyInputError reports a computation requested over an empty input. It is
// fatal only for that computation; callers may skip it and continue.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty input", e.What)
}

// Integrity warning kinds.
const (
	WarnDuplicateReceive = "duplicate_receive"
	WarnNegativeDelay    = "negative_delay"
)

// IntegrityWarning flags malformed but tolerated input data, e.g. several
// receive events sharing a uid, or a receive timestamped before its send.
// Warnings are collected and reported, never silently discarded.
type IntegrityWarning struct {
	Kind     string
	PacketID string
	Detail   string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s uid=%s: %s", w.Kind, w.PacketID, w.Detail)
}
