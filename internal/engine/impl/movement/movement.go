// Package movement summarizes the mobility log: the arena the nodes covered,
// their speed distribution, and the path length each node traveled.
package movement

import (
	"math"
	"sort"

	"ManetLens/internal/model"
)

// Stats computes the movement summary over all samples.
func Stats(samples []model.MovementSample) (*model.MovementStats, error) {
	if len(samples) == 0 {
		return nil, &model.EmptyInputError{What: "movement samples"}
	}

	stats := &model.MovementStats{
		Samples:   len(samples),
		TStart:    samples[0].Time,
		TEnd:      samples[0].Time,
		XMin:      samples[0].X,
		XMax:      samples[0].X,
		YMin:      samples[0].Y,
		YMax:      samples[0].Y,
		NodeSpeed: make(map[string]model.SpeedStats),
		Distance:  make(map[string]float64),
	}

	times := make(map[float64]struct{})
	speeds := make([]float64, 0, len(samples))
	perNode := make(map[string][]model.MovementSample)
	for _, s := range samples {
		times[s.Time] = struct{}{}
		speeds = append(speeds, s.Speed)
		perNode[s.Node] = append(perNode[s.Node], s)

		stats.TStart = math.Min(stats.TStart, s.Time)
		stats.TEnd = math.Max(stats.TEnd, s.Time)
		stats.XMin = math.Min(stats.XMin, s.X)
		stats.XMax = math.Max(stats.XMax, s.X)
		stats.YMin = math.Min(stats.YMin, s.Y)
		stats.YMax = math.Max(stats.YMax, s.Y)
	}
	stats.TimePoints = len(times)
	stats.Nodes = len(perNode)
	stats.Speed = speedStats(speeds)

	for node, rows := range perNode {
		nodeSpeeds := make([]float64, len(rows))
		for i, s := range rows {
			nodeSpeeds[i] = s.Speed
		}
		stats.NodeSpeed[node] = speedStats(nodeSpeeds)
		stats.Distance[node] = pathLength(rows)
	}

	return stats, nil
}

// pathLength sums the 3-D distances between a node's consecutive positions
// in time order.
func pathLength(rows []model.MovementSample) float64 {
	sorted := make([]model.MovementSample, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var total float64
	for i := 1; i < len(sorted); i++ {
		dx := sorted[i].X - sorted[i-1].X
		dy := sorted[i].Y - sorted[i-1].Y
		dz := sorted[i].Z - sorted[i-1].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// speedStats computes mean, population standard deviation, min and max over
// the given samples. Callers guarantee at least one sample.
func speedStats(values []float64) model.SpeedStats {
	s := model.SpeedStats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(values)))
	return s
}
