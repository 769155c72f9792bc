package health

import (
	"math"
	"testing"

	"ManetLens/internal/model"
)

var isSpine = model.SuffixSpine("S")

func sendAt(uid, node string, t float64) model.CorrelatedSend {
	return model.CorrelatedSend{UID: uid, Sender: node, SendTime: t}
}

func deliveredAt(uid, node string, t float64, receiver string) model.CorrelatedSend {
	return model.CorrelatedSend{
		UID: uid, Sender: node, SendTime: t,
		Delivered: true, Receiver: receiver, RecvTime: t + 0.1,
	}
}

func TestScoreTwoSeriesOneHealthy(t *testing.T) {
	// One node, 4 packets, series size 2: first series undelivered, second
	// series has one packet delivered to a spine node.
	sends := []model.CorrelatedSend{
		sendAt("p1", "0", 1.0),
		sendAt("p2", "0", 2.0),
		sendAt("p3", "0", 3.0),
		deliveredAt("p4", "0", 4.0, "5S"),
	}

	stats, err := Score(sends, []string{"0"}, isSpine, 2)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	got := stats["0"]
	if got.TotalSeries != 2 || got.HealthySeries != 1 {
		t.Fatalf("Series counts = %d/%d, want 1/2 healthy", got.HealthySeries, got.TotalSeries)
	}
	if math.Abs(got.Fraction-0.5) > 1e-12 {
		t.Errorf("Fraction = %v, want 0.5", got.Fraction)
	}
}

func TestScoreDeliveryToNormalNodeIsNotHealthy(t *testing.T) {
	sends := []model.CorrelatedSend{
		deliveredAt("p1", "0", 1.0, "2"), // receiver is a normal node
	}

	stats, err := Score(sends, []string{"0"}, isSpine, 1)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if stats["0"].HealthySeries != 0 {
		t.Error("Delivery to a non-spine node must not count as healthy")
	}
}

func TestScoreZeroSendsNode(t *testing.T) {
	stats, err := Score(nil, []string{"7"}, isSpine, 3)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	got := stats["7"]
	if got.TotalSeries != 0 || got.HealthySeries != 0 {
		t.Errorf("Zero-send node series = %+v, want zeros", got)
	}
	// Exactly 0.0 by definition, not undefined.
	if got.Fraction != 0.0 {
		t.Errorf("Zero-send node fraction = %v, want 0.0", got.Fraction)
	}
}

func TestScoreSeriesCountIsCeil(t *testing.T) {
	var sends []model.CorrelatedSend
	for i := 0; i < 7; i++ {
		sends = append(sends, sendAt(string(rune('a'+i)), "0", float64(i)))
	}

	stats, err := Score(sends, []string{"0"}, isSpine, 3)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	// ceil(7/3) = 3
	if stats["0"].TotalSeries != 3 {
		t.Errorf("TotalSeries = %d, want 3", stats["0"].TotalSeries)
	}
}

func TestScoreRejectsNonPositiveSeriesSize(t *testing.T) {
	if _, err := Score(nil, nil, isSpine, 0); err == nil {
		t.Fatal("Expected error for series size 0")
	}
}

func TestScoreOverTimePercentsAndMonotonicity(t *testing.T) {
	// Losses early, deliveries late: the cumulative fraction climbs as the
	// cutoff grows and must never fall back.
	var sends []model.CorrelatedSend
	for i := 0; i < 10; i++ {
		t0 := float64(i)
		if i >= 5 {
			sends = append(sends, deliveredAt(string(rune('a'+i)), "0", t0, "9S"))
		} else {
			sends = append(sends, sendAt(string(rune('a'+i)), "0", t0))
		}
	}

	windows, err := ScoreOverTime(sends, []string{"0"}, isSpine, 1, 0, 9, 10)
	if err != nil {
		t.Fatalf("ScoreOverTime failed: %v", err)
	}
	if len(windows) != 10 {
		t.Fatalf("Expected 10 windows, got %d", len(windows))
	}

	for i, w := range windows {
		wantPercent := (i + 1) * 10
		if w.Percent != wantPercent {
			t.Errorf("Window %d percent = %d, want %d", i, w.Percent, wantPercent)
		}
	}
	if windows[9].Cutoff != 9.0 {
		t.Errorf("Final cutoff = %v, want 9.0", windows[9].Cutoff)
	}
	if windows[9].TotalSeries != 10 {
		t.Errorf("Final window total series = %d, want 10", windows[9].TotalSeries)
	}

	for i := 1; i < len(windows); i++ {
		if windows[i].Fraction < windows[i-1].Fraction-1e-12 {
			t.Errorf("Windowed health decreased from %v to %v at step %d",
				windows[i-1].Fraction, windows[i].Fraction, i)
		}
	}
}

func TestScoreOverTimeAggregatesAcrossNodes(t *testing.T) {
	// Node 0: one healthy series; node 1: one unhealthy series. Network-wide
	// fraction is 1/2, not the per-node mean of anything else.
	sends := []model.CorrelatedSend{
		deliveredAt("p1", "0", 1.0, "5S"),
		sendAt("p2", "1", 1.0),
	}

	windows, err := ScoreOverTime(sends, []string{"0", "1"}, isSpine, 1, 0, 2, 1)
	if err != nil {
		t.Fatalf("ScoreOverTime failed: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("Expected 1 window, got %d", len(windows))
	}
	if math.Abs(windows[0].Fraction-0.5) > 1e-12 {
		t.Errorf("Network-wide fraction = %v, want 0.5", windows[0].Fraction)
	}
}

func TestScoreOverTimeEmptyLog(t *testing.T) {
	windows, err := ScoreOverTime(nil, []string{"0"}, isSpine, 2, 0, 0, 10)
	if err != nil {
		t.Fatalf("ScoreOverTime failed: %v", err)
	}
	for _, w := range windows {
		if w.Fraction != 0.0 || w.TotalSeries != 0 {
			t.Errorf("Empty log window should be all zeros, got %+v", w)
		}
	}
}
