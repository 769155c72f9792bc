// Package pcaptrace turns a pcap capture of a simulation run into packet
// log events, as an alternative ingest path to the CSV log.
package pcaptrace

import (
	"fmt"
	"net"

	"ManetLens/internal/model"
)

// NodeMapper maps a capture IP address to a node identifier. It returns
// false for addresses outside the simulated network.
type NodeMapper func(ip net.IP) (string, bool)

// DefaultNodeMapper maps addresses in base/24 to node ids by host octet:
// the first host address is node "0". The usual layout assigns 10.0.0.1 to
// node 0, 10.0.0.2 to node 1, and so on.
func DefaultNodeMapper(base net.IP) NodeMapper {
	prefix := base.To4()
	return func(ip net.IP) (string, bool) {
		v4 := ip.To4()
		if v4 == nil || prefix == nil {
			return "", false
		}
		if v4[0] != prefix[0] || v4[1] != prefix[1] || v4[2] != prefix[2] {
			return "", false
		}
		if v4[3] == 0 {
			return "", false
		}
		return fmt.Sprintf("%d", int(v4[3])-1), true
	}
}

// SpineNodeMapper is DefaultNodeMapper for the spine subnet: mapped ids
// carry the spine suffix.
func SpineNodeMapper(base net.IP, suffix string) NodeMapper {
	inner := DefaultNodeMapper(base)
	return func(ip net.IP) (string, bool) {
		id, ok := inner(ip)
		if !ok {
			return "", false
		}
		return id + suffix, true
	}
}

// Chain tries each mapper in order and returns the first match.
func Chain(mappers ...NodeMapper) NodeMapper {
	return func(ip net.IP) (string, bool) {
		for _, m := range mappers {
			if id, ok := m(ip); ok {
				return id, true
			}
		}
		return "", false
	}
}

// Sighting is one observed IPv4 packet, reduced to the fields the extractor
// needs.
type Sighting struct {
	Time   float64
	SrcIP  net.IP
	DstIP  net.IP
	IPID   uint16
	Length int
}

// Extractor converts packet sightings into packet log events. The first
// sighting of a (source, IP id) pair is the send at the source node; every
// later sighting is a receive at the destination node. Duplicate receives
// are passed through; the correlator flags them downstream.
type Extractor struct {
	mapper NodeMapper
	seen   map[string]bool
}

// NewExtractor creates an extractor with the given node mapping.
func NewExtractor(mapper NodeMapper) *Extractor {
	return &Extractor{mapper: mapper, seen: make(map[string]bool)}
}

// Observe processes one sighting. It returns false when the packet does not
// belong to the simulated network.
func (e *Extractor) Observe(s Sighting) (model.PacketEvent, bool) {
	srcNode, ok := e.mapper(s.SrcIP)
	if !ok {
		return model.PacketEvent{}, false
	}

	uid := fmt.Sprintf("%s-%d", s.SrcIP.String(), s.IPID)
	if !e.seen[uid] {
		e.seen[uid] = true
		return model.PacketEvent{
			UID:  uid,
			Time: s.Time,
			Node: srcNode,
			Size: s.Length,
		}, true
	}

	dstNode, ok := e.mapper(s.DstIP)
	if !ok {
		return model.PacketEvent{}, false
	}
	return model.PacketEvent{
		UID:      uid,
		Time:     s.Time,
		Node:     dstNode,
		Size:     s.Length,
		Received: true,
	}, true
}
