package series

import (
	"errors"
	"fmt"
	"testing"

	"ManetLens/internal/model"
)

// burst appends a run of n sends from one node starting at t.
func burst(sends []model.CorrelatedSend, node string, t float64, n int) []model.CorrelatedSend {
	for i := 0; i < n; i++ {
		sends = append(sends, model.CorrelatedSend{
			UID:      fmt.Sprintf("%s-%g-%d", node, t, i),
			Sender:   node,
			SendTime: t + float64(i)*0.01,
		})
	}
	return sends
}

func TestInferSizeRoundTrip(t *testing.T) {
	// k rounds, each node sending bursts of length L.
	const L = 5
	var sends []model.CorrelatedSend
	for round := 0; round < 4; round++ {
		for _, node := range []string{"0", "1", "2"} {
			sends = burst(sends, node, float64(round*10)+float64(len(sends)), L)
		}
	}

	got, err := InferSize(sends)
	if err != nil {
		t.Fatalf("InferSize failed: %v", err)
	}
	if got != L {
		t.Errorf("Inferred series size %d, want %d", got, L)
	}
}

func TestInferSizeTieBreaksOnFirstEncountered(t *testing.T) {
	// One run of length 2 followed by one run of length 3: both appear once,
	// the earlier length wins.
	var sends []model.CorrelatedSend
	sends = burst(sends, "0", 0, 2)
	sends = burst(sends, "1", 10, 3)

	got, err := InferSize(sends)
	if err != nil {
		t.Fatalf("InferSize failed: %v", err)
	}
	if got != 2 {
		t.Errorf("Tie should break to the first-encountered run length, got %d", got)
	}
}

func TestInferSizeUnsortedInput(t *testing.T) {
	// Input arrives shuffled; ordering by (time, uid) must restore the runs.
	var sends []model.CorrelatedSend
	sends = burst(sends, "0", 0, 3)
	sends = burst(sends, "1", 5, 3)
	sends[0], sends[5] = sends[5], sends[0]
	sends[1], sends[4] = sends[4], sends[1]

	got, err := InferSize(sends)
	if err != nil {
		t.Fatalf("InferSize failed: %v", err)
	}
	if got != 3 {
		t.Errorf("Inferred series size %d, want 3", got)
	}
}

func TestInferSizeSingleRun(t *testing.T) {
	sends := burst(nil, "0", 0, 7)
	got, err := InferSize(sends)
	if err != nil {
		t.Fatalf("InferSize failed: %v", err)
	}
	if got != 7 {
		t.Errorf("Inferred series size %d, want 7", got)
	}
}

func TestInferSizeEmptyInput(t *testing.T) {
	_, err := InferSize(nil)
	var empty *model.EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("Expected EmptyInputError, got %v", err)
	}
}
