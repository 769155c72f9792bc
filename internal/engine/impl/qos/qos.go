// Package qos computes per-node and network-wide QoS metrics from the
// correlated send table: delivery ratio, delay statistics, jitter, and
// throughput. Metrics with no basis (zero sends, zero deliveries) stay
// undefined and are excluded from network averages.
package qos

import (
	"math"

	"ManetLens/internal/model"
)

// Score computes the QoS record for every normal node plus the network-wide
// averages over nodes with a defined value per metric.
func Score(sends []model.CorrelatedSend, normalIDs []string, tStart, tEnd float64) (map[string]model.QoSRecord, model.NetworkQoS, error) {
	if len(sends) == 0 {
		return nil, model.NetworkQoS{}, &model.EmptyInputError{What: "qos aggregation"}
	}

	duration := tEnd - tStart
	records := make(map[string]model.QoSRecord, len(normalIDs))

	bySender := make(map[string][]model.CorrelatedSend)
	for _, cs := range sends {
		bySender[cs.Sender] = append(bySender[cs.Sender], cs)
	}

	for _, node := range normalIDs {
		records[node] = scoreNode(bySender[node], duration)
	}

	var pdrs, delays, throughputs []model.Metric
	for _, node := range normalIDs {
		rec := records[node]
		pdrs = append(pdrs, rec.DeliveryRatio)
		delays = append(delays, rec.AvgDelay)
		throughputs = append(throughputs, model.Defined(rec.ThroughputBps))
	}
	network := model.NetworkQoS{
		AvgPDR:        model.MeanDefined(pdrs),
		AvgDelay:      model.MeanDefined(delays),
		AvgThroughput: model.MeanDefined(throughputs),
	}

	return records, network, nil
}

func scoreNode(sends []model.CorrelatedSend, duration float64) model.QoSRecord {
	rec := model.QoSRecord{
		DeliveryRatio: model.Undefined(),
		AvgDelay:      model.Undefined(),
		MinDelay:      model.Undefined(),
		MaxDelay:      model.Undefined(),
		Jitter:        model.Undefined(),
	}

	var delays []float64
	var bytesRecv int
	for _, cs := range sends {
		rec.SentCount++
		rec.BytesSent += cs.Size
		if cs.Delivered {
			rec.RecvCount++
			bytesRecv += cs.Size
			delays = append(delays, cs.Delay())
		}
	}
	rec.BytesRecv = bytesRecv

	// Delivery ratio is undefined for a node that sent nothing; that is a
	// different state from having sent and delivered none.
	if rec.SentCount > 0 {
		ratio := float64(rec.RecvCount) / float64(rec.SentCount)
		rec.DeliveryRatio = model.Defined(clamp01(ratio))
	}

	if len(delays) > 0 {
		sum, min, max := delays[0], delays[0], delays[0]
		for _, d := range delays[1:] {
			sum += d
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}
		mean := sum / float64(len(delays))
		rec.AvgDelay = model.Defined(mean)
		rec.MinDelay = model.Defined(min)
		rec.MaxDelay = model.Defined(max)

		if len(delays) >= 2 {
			rec.Jitter = model.Defined(sampleStd(delays, mean))
		}
	}

	// Throughput is 0 by convention when nothing was delivered or the span
	// is degenerate, never undefined.
	if duration > 0 {
		rec.ThroughputBps = float64(bytesRecv) * 8 / duration
	}

	return rec
}

// sampleStd is the sample standard deviation (n-1 denominator).
func sampleStd(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
