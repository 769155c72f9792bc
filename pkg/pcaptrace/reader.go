package pcaptrace

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"ManetLens/internal/model"
)

// Reader reads a pcap capture and extracts packet log events.
type Reader struct {
	handle    *pcap.Handle
	extractor *Extractor
}

// NewReader opens a capture file for offline reading.
func NewReader(filePath string, mapper NodeMapper) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle, extractor: NewExtractor(mapper)}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadEvents reads the whole capture and sends the extracted events to out.
// It closes the channel when done. Non-IPv4 packets and packets outside the
// simulated network are skipped.
func (r *Reader) ReadEvents(out chan<- model.PacketEvent) {
	defer close(out)

	var start float64
	first := true

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		l := packet.Layer(layers.LayerTypeIPv4)
		if l == nil {
			continue
		}
		ip := l.(*layers.IPv4)

		ts := float64(packet.Metadata().Timestamp.UnixNano()) / 1e9
		if first {
			start = ts
			first = false
		}

		event, ok := r.extractor.Observe(Sighting{
			Time:   ts - start,
			SrcIP:  ip.SrcIP,
			DstIP:  ip.DstIP,
			IPID:   ip.Id,
			Length: packet.Metadata().Length,
		})
		if !ok {
			continue
		}
		out <- event
	}
}
