// Package connectivity tracks per-node online state over the simulation and
// derives the first time each node dropped offline plus network-wide online
// fractions.
package connectivity

import (
	"sort"

	"ManetLens/internal/model"
)

// FirstOfflineTimes returns, for every node that was observed offline at
// least once, the earliest sample time at which it was offline. Nodes that
// stayed online for the whole run are absent from the result.
func FirstOfflineTimes(samples []model.ConnectivitySample) map[string]float64 {
	first := make(map[string]float64)
	for _, s := range samples {
		if s.Online {
			continue
		}
		if t, ok := first[s.Node]; !ok || s.Time < t {
			first[s.Node] = s.Time
		}
	}
	return first
}

// Stats summarizes the connectivity log: the fraction of samples each node
// spent online, the network-wide fraction, and the worstN sample times with
// the lowest network-wide online fraction.
func Stats(samples []model.ConnectivitySample, worstN int) (*model.ConnectivityStats, error) {
	if len(samples) == 0 {
		return nil, &model.EmptyInputError{What: "connectivity samples"}
	}

	perNode := make(map[string]*counter)
	perTime := make(map[float64]*counter)
	total := counter{}
	for _, s := range samples {
		nodeCount(perNode, s.Node).add(s.Online)
		timeCount(perTime, s.Time).add(s.Online)
		total.add(s.Online)
	}

	stats := &model.ConnectivityStats{
		OverallOnlineFraction: total.fraction(),
		OnlineFraction:        make(map[string]float64, len(perNode)),
	}
	for node, c := range perNode {
		stats.OnlineFraction[node] = c.fraction()
	}

	slices := make([]model.TimeSlice, 0, len(perTime))
	for t, c := range perTime {
		slices = append(slices, model.TimeSlice{Time: t, OnlineFraction: c.fraction()})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].OnlineFraction != slices[j].OnlineFraction {
			return slices[i].OnlineFraction < slices[j].OnlineFraction
		}
		return slices[i].Time < slices[j].Time
	})
	if worstN > 0 && len(slices) > worstN {
		slices = slices[:worstN]
	}
	stats.WorstSlices = slices

	return stats, nil
}

type counter struct {
	online int
	total  int
}

func (c *counter) add(online bool) {
	c.total++
	if online {
		c.online++
	}
}

func (c *counter) fraction() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.online) / float64(c.total)
}

func nodeCount(m map[string]*counter, node string) *counter {
	c, ok := m[node]
	if !ok {
		c = &counter{}
		m[node] = c
	}
	return c
}

func timeCount(m map[float64]*counter, t float64) *counter {
	c, ok := m[t]
	if !ok {
		c = &counter{}
		m[t] = c
	}
	return c
}
