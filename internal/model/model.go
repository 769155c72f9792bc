package model

// PacketEvent is one row of the packet log: a send or a receive observed at a
// node. Events come in pairs sharing a UID; the receive half is absent when
// the packet was lost.
type PacketEvent struct {
	UID      string  `json:"uid"`
	Time     float64 `json:"time"` // seconds since simulation start
	Node     string  `json:"node"`
	Size     int     `json:"size"` // bytes
	Received bool    `json:"received"`
}

// CorrelatedSend is a send event left-joined with its matching receive event.
// A send with Delivered == false never reached any node.
type CorrelatedSend struct {
	UID       string
	Sender    string
	SendTime  float64
	Size      int
	Delivered bool
	Receiver  string
	RecvTime  float64
}

// Delay returns the end-to-end delay of a delivered send in seconds.
// Only meaningful when Delivered is true.
func (cs CorrelatedSend) Delay() float64 {
	return cs.RecvTime - cs.SendTime
}

// ConnectivitySample is one row of the connectivity log.
type ConnectivitySample struct {
	Node   string
	Time   float64
	Online bool
}

// MovementSample is one row of the movement log.
type MovementSample struct {
	Node  string
	Time  float64
	X     float64
	Y     float64
	Z     float64
	Speed float64
}

// SpineFunc reports whether a node identifier names a spine relay node.
// Keeping this as a predicate lets alternative topology sources be plugged in
// without touching the scoring code.
type SpineFunc func(node string) bool

// SuffixSpine returns the suffix-based spine predicate used by the
// simulation's naming convention (e.g. "3S" with suffix "S").
func SuffixSpine(suffix string) SpineFunc {
	return func(node string) bool {
		if suffix == "" || len(node) <= len(suffix) {
			return false
		}
		return node[len(node)-len(suffix):] == suffix
	}
}

// HealthStat is the per-node health score: the fraction of a node's
// transmission series with at least one spine-delivered packet.
type HealthStat struct {
	TotalSeries   int
	HealthySeries int
	Fraction      float64
}

// TimeWindowSample is the network-wide health fraction computed over the
// cumulative window [t_start, Cutoff].
type TimeWindowSample struct {
	Percent       int
	Cutoff        float64
	TotalSeries   int
	HealthySeries int
	Fraction      float64
}

// QoSRecord holds the per-node QoS metrics. Metrics with no defined value
// (a node that sent or delivered nothing) stay undefined rather than zero.
type QoSRecord struct {
	SentCount     int
	RecvCount     int
	BytesSent     int
	BytesRecv     int
	DeliveryRatio Metric
	AvgDelay      Metric
	MinDelay      Metric
	MaxDelay      Metric
	Jitter        Metric
	ThroughputBps float64 // 0 by convention when nothing was delivered
}

// NetworkQoS averages the per-node metrics over the nodes for which the
// metric is defined.
type NetworkQoS struct {
	AvgPDR        Metric
	AvgDelay      Metric
	AvgThroughput Metric
}

// ConnectivityStats is the summary derived from the connectivity log.
type ConnectivityStats struct {
	OverallOnlineFraction float64
	OnlineFraction        map[string]float64
	// WorstSlices lists the sample times with the lowest network-wide online
	// fraction, worst first.
	WorstSlices []TimeSlice
}

// TimeSlice is the online fraction across all nodes at one sample time.
type TimeSlice struct {
	Time           float64
	OnlineFraction float64
}

// SpeedStats are summary statistics over a set of speed samples.
type SpeedStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// MovementStats is the summary derived from the movement log.
type MovementStats struct {
	Samples    int
	TimePoints int
	Nodes      int
	TStart     float64
	TEnd       float64
	XMin, XMax float64
	YMin, YMax float64
	Speed      SpeedStats
	NodeSpeed  map[string]SpeedStats
	// Distance is the total 3-D path length traveled per node.
	Distance map[string]float64
}

// Report collects the outputs of one analysis run. Each analyzer fills only
// its own fields, so they are safe to run concurrently.
type Report struct {
	NormalIDs []string
	SpineIDs  []string
	TStart    float64
	TEnd      float64

	SeriesSize     int
	Health         map[string]HealthStat
	WindowedHealth []TimeWindowSample

	QoS     map[string]QoSRecord
	Network NetworkQoS

	OfflineTimes map[string]float64
	Connectivity *ConnectivityStats

	Movement *MovementStats

	Warnings []IntegrityWarning
}
