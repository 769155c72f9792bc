// Package series infers the number of packets per logical transmission
// round. The simulation emits packets in fixed-size bursts per node per
// round, so the most frequent length of consecutive same-sender runs in the
// time-ordered send stream recovers the burst size without it being passed
// explicitly.
package series

import (
	"sort"

	"ManetLens/internal/model"
)

// InferSize returns the modal run length of the send stream. Ties break in
// favour of the run length encountered first in the ordered stream.
func InferSize(sends []model.CorrelatedSend) (int, error) {
	if len(sends) == 0 {
		return 0, &model.EmptyInputError{What: "series size inference"}
	}

	ordered := make([]model.CorrelatedSend, len(sends))
	copy(ordered, sends)
	// (time, uid) gives a deterministic total order.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SendTime != ordered[j].SendTime {
			return ordered[i].SendTime < ordered[j].SendTime
		}
		return ordered[i].UID < ordered[j].UID
	})

	counts := make(map[int]int)
	var firstSeen []int

	runLen := 1
	flush := func(length int) {
		if counts[length] == 0 {
			firstSeen = append(firstSeen, length)
		}
		counts[length]++
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Sender == ordered[i-1].Sender {
			runLen++
			continue
		}
		flush(runLen)
		runLen = 1
	}
	flush(runLen)

	best, bestCount := 0, 0
	for _, length := range firstSeen {
		if counts[length] > bestCount {
			best, bestCount = length, counts[length]
		}
	}
	return best, nil
}
