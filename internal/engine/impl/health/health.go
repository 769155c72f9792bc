// Package health scores network reachability. A node's sends are chunked
// into fixed-size series in send-time order; a series is healthy iff at
// least one of its packets was received by a spine node. The score is the
// healthy fraction, per node and over cumulative time windows.
package health

import (
	"fmt"
	"sort"
	"sync"

	"ManetLens/internal/model"
)

// Score computes the per-node health statistics. Nodes that sent nothing get
// {0, 0, 0.0}, a defined zero rather than a missing entry.
func Score(sends []model.CorrelatedSend, normalIDs []string, isSpine model.SpineFunc, seriesSize int) (map[string]model.HealthStat, error) {
	if seriesSize <= 0 {
		return nil, fmt.Errorf("series size must be positive, got %d", seriesSize)
	}

	byNode := groupBySender(sends, normalIDs)
	stats := make(map[string]model.HealthStat, len(normalIDs))
	for _, node := range normalIDs {
		total, healthy := scoreSeries(byNode[node], isSpine, seriesSize)
		stat := model.HealthStat{TotalSeries: total, HealthySeries: healthy}
		if total > 0 {
			stat.Fraction = float64(healthy) / float64(total)
		}
		stats[node] = stat
	}
	return stats, nil
}

// ScoreOverTime evaluates the network-wide health fraction over cumulative
// windows covering 100/steps, 2*100/steps, ..., 100 percent of the
// simulation span. Windows are independent recomputations over the send
// subset with send_time <= cutoff and run concurrently; the result order is
// fixed by window index.
func ScoreOverTime(sends []model.CorrelatedSend, normalIDs []string, isSpine model.SpineFunc, seriesSize int, tStart, tEnd float64, steps int) ([]model.TimeWindowSample, error) {
	if seriesSize <= 0 {
		return nil, fmt.Errorf("series size must be positive, got %d", seriesSize)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("window steps must be positive, got %d", steps)
	}

	span := tEnd - tStart
	samples := make([]model.TimeWindowSample, steps)

	var wg sync.WaitGroup
	wg.Add(steps)
	for step := 1; step <= steps; step++ {
		go func(step int) {
			defer wg.Done()

			percent := step * 100 / steps
			cutoff := tStart + span*float64(percent)/100

			var window []model.CorrelatedSend
			for _, cs := range sends {
				if cs.SendTime <= cutoff {
					window = append(window, cs)
				}
			}

			byNode := groupBySender(window, normalIDs)
			var total, healthy int
			for _, node := range normalIDs {
				nt, nh := scoreSeries(byNode[node], isSpine, seriesSize)
				total += nt
				healthy += nh
			}

			sample := model.TimeWindowSample{
				Percent:       percent,
				Cutoff:        cutoff,
				TotalSeries:   total,
				HealthySeries: healthy,
			}
			if total > 0 {
				sample.Fraction = float64(healthy) / float64(total)
			}
			samples[step-1] = sample
		}(step)
	}
	wg.Wait()

	return samples, nil
}

// groupBySender splits the send table per normal node, ordered by
// (send time, uid) for deterministic chunking.
func groupBySender(sends []model.CorrelatedSend, normalIDs []string) map[string][]model.CorrelatedSend {
	normal := make(map[string]bool, len(normalIDs))
	for _, id := range normalIDs {
		normal[id] = true
	}

	byNode := make(map[string][]model.CorrelatedSend)
	for _, cs := range sends {
		if normal[cs.Sender] {
			byNode[cs.Sender] = append(byNode[cs.Sender], cs)
		}
	}
	for _, nodeSends := range byNode {
		sort.SliceStable(nodeSends, func(i, j int) bool {
			if nodeSends[i].SendTime != nodeSends[j].SendTime {
				return nodeSends[i].SendTime < nodeSends[j].SendTime
			}
			return nodeSends[i].UID < nodeSends[j].UID
		})
	}
	return byNode
}

// scoreSeries chunks one node's ordered sends into series of seriesSize (the
// final chunk may be shorter) and counts the healthy ones. The series count
// equals ceil(len/size) by construction.
func scoreSeries(sends []model.CorrelatedSend, isSpine model.SpineFunc, seriesSize int) (total, healthy int) {
	for start := 0; start < len(sends); start += seriesSize {
		end := start + seriesSize
		if end > len(sends) {
			end = len(sends)
		}
		total++
		for _, cs := range sends[start:end] {
			if cs.Delivered && isSpine(cs.Receiver) {
				healthy++
				break
			}
		}
	}
	return total, healthy
}
