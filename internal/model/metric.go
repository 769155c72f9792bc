package model

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Metric is an optional float64. The zero value is undefined. It replaces the
// NaN-as-missing convention of the original analyzer: undefined values are
// excluded from averages instead of poisoning them.
type Metric struct {
	value   float64
	defined bool
}

// Defined wraps v in a defined Metric.
func Defined(v float64) Metric {
	return Metric{value: v, defined: true}
}

// Undefined returns the undefined Metric.
func Undefined() Metric {
	return Metric{}
}

// IsDefined reports whether the metric carries a value.
func (m Metric) IsDefined() bool {
	return m.defined
}

// Value returns the metric value and whether it is defined.
func (m Metric) Value() (float64, bool) {
	return m.value, m.defined
}

// Or returns the metric value, or fallback when undefined.
func (m Metric) Or(fallback float64) float64 {
	if m.defined {
		return m.value
	}
	return fallback
}

// String formats the metric for tabular output; undefined renders as "n/a".
func (m Metric) String() string {
	if !m.defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.value, 'f', 6, 64)
}

// MarshalJSON renders a defined metric as its number and an undefined one
// as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}

// MarshalBinary implements the encoding used by gob: a presence byte,
// followed by the value bits when defined.
func (m Metric) MarshalBinary() ([]byte, error) {
	if !m.defined {
		return []byte{0}, nil
	}
	buf := make([]byte, 9)
	buf[0] = 1
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(m.value))
	return buf, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (m *Metric) UnmarshalBinary(data []byte) error {
	switch {
	case len(data) == 1 && data[0] == 0:
		*m = Undefined()
		return nil
	case len(data) == 9 && data[0] == 1:
		*m = Defined(math.Float64frombits(binary.BigEndian.Uint64(data[1:])))
		return nil
	}
	return fmt.Errorf("metric: invalid binary encoding of length %d", len(data))
}

// MeanDefined averages the defined metrics, skipping undefined ones.
// The result is undefined when no metric is defined.
func MeanDefined(ms []Metric) Metric {
	var sum float64
	var n int
	for _, m := range ms {
		if m.defined {
			sum += m.value
			n++
		}
	}
	if n == 0 {
		return Undefined()
	}
	return Defined(sum / float64(n))
}
