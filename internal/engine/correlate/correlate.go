// Package correlate builds the correlated-send table: every send event
// left-joined with its matching receive event by packet uid. Everything
// downstream (series inference, health scoring, QoS) consumes its output.
package correlate

import (
	"fmt"
	"strconv"

	"ManetLens/internal/model"
)

// Options control node classification.
type Options struct {
	// SpineSuffix identifies spine relay nodes by their id suffix.
	SpineSuffix string

	// NodeCount, when positive, fixes the normal-node universe to the
	// integer range [0, NodeCount) minus ids that collide with a spine id,
	// instead of deriving it from the log.
	NodeCount int
}

// Correlate partitions events into sends and receives, joins them by uid,
// and classifies the node universe. Join semantics: the first receive
// encountered for a uid wins; later duplicates are reported as integrity
// warnings, as is any receive timestamped before its send.
func Correlate(events []model.PacketEvent, opts Options) (*model.Correlation, []model.IntegrityWarning) {
	isSpine := model.SuffixSpine(opts.SpineSuffix)
	var warnings []model.IntegrityWarning

	// First receive per uid wins, by input order.
	receives := make(map[string]model.PacketEvent)
	for _, ev := range events {
		if !ev.Received {
			continue
		}
		if prev, ok := receives[ev.UID]; ok {
			warnings = append(warnings, model.IntegrityWarning{
				Kind:     model.WarnDuplicateReceive,
				PacketID: ev.UID,
				Detail:   fmt.Sprintf("receive at node %s t=%g shadowed by earlier receive at node %s t=%g", ev.Node, ev.Time, prev.Node, prev.Time),
			})
			continue
		}
		receives[ev.UID] = ev
	}

	var sends []model.CorrelatedSend
	spineSet := make(map[string]bool)
	seenNodes := make(map[string]bool)
	tStart, tEnd := 0.0, 0.0

	for _, ev := range events {
		// Spine nodes typically appear only as receivers, so classification
		// scans the whole log, not just the send half.
		if !seenNodes[ev.Node] {
			seenNodes[ev.Node] = true
			if isSpine(ev.Node) {
				spineSet[ev.Node] = true
			}
		}
		if ev.Received {
			continue
		}

		if len(sends) == 0 {
			tStart, tEnd = ev.Time, ev.Time
		} else {
			if ev.Time < tStart {
				tStart = ev.Time
			}
			if ev.Time > tEnd {
				tEnd = ev.Time
			}
		}

		cs := model.CorrelatedSend{
			UID:      ev.UID,
			Sender:   ev.Node,
			SendTime: ev.Time,
			Size:     ev.Size,
		}
		if recv, ok := receives[ev.UID]; ok {
			cs.Delivered = true
			cs.Receiver = recv.Node
			cs.RecvTime = recv.Time
			if cs.RecvTime < cs.SendTime {
				warnings = append(warnings, model.IntegrityWarning{
					Kind:     model.WarnNegativeDelay,
					PacketID: ev.UID,
					Detail:   fmt.Sprintf("receive t=%g precedes send t=%g", cs.RecvTime, cs.SendTime),
				})
			}
		}
		sends = append(sends, cs)
	}

	normal := normalIDs(seenNodes, spineSet, opts)
	model.SortNodeIDs(normal, opts.SpineSuffix)

	spine := make([]string, 0, len(spineSet))
	for id := range spineSet {
		spine = append(spine, id)
	}
	model.SortNodeIDs(spine, opts.SpineSuffix)

	return &model.Correlation{
		Sends:     sends,
		NormalIDs: normal,
		SpineIDs:  spine,
		TStart:    tStart,
		TEnd:      tEnd,
	}, warnings
}

// normalIDs derives the normal-node universe: the deterministic integer
// range when a node count is supplied, the observed node set otherwise.
func normalIDs(seen, spine map[string]bool, opts Options) []string {
	if opts.NodeCount > 0 {
		ids := make([]string, 0, opts.NodeCount)
		for i := 0; i < opts.NodeCount; i++ {
			id := strconv.Itoa(i)
			if spine[id+opts.SpineSuffix] {
				continue
			}
			ids = append(ids, id)
		}
		return ids
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		if !spine[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
