package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Generates a synthetic capture of a simulation run: normal nodes on
// 10.0.0.0/24 send UDP bursts to a spine node on 10.0.1.0/24. Each packet
// appears once at send time and, unless lost, a second time after a small
// delay. Feed the output to ml-pcap to produce a packet log.
func main() {
	outputFile := flag.String("o", "sim.pcap", "Output pcap file path")
	nodes := flag.Int("n", 10, "Number of normal nodes")
	rounds := flag.Int("r", 20, "Number of transmission rounds")
	seriesSize := flag.Int("s", 5, "Packets per round per node")
	lossRate := flag.Float64("loss", 0.2, "Fraction of packets never delivered")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	spineIP := net.IPv4(10, 0, 1, 1)
	base := time.Now()
	var ipID uint16

	total := 0
	for round := 0; round < *rounds; round++ {
		roundStart := base.Add(time.Duration(round) * time.Second)
		for node := 0; node < *nodes; node++ {
			srcIP := net.IPv4(10, 0, 0, byte(node+1))
			for pkt := 0; pkt < *seriesSize; pkt++ {
				ipID++
				sendTime := roundStart.Add(time.Duration(pkt) * 10 * time.Millisecond)

				writePacket(pcapWriter, srcIP, spineIP, ipID, sendTime)
				total++

				if rng.Float64() >= *lossRate {
					delay := time.Duration(5+rng.Intn(50)) * time.Millisecond
					writePacket(pcapWriter, srcIP, spineIP, ipID, sendTime.Add(delay))
					total++
				}
			}
		}
	}

	log.Printf("Wrote %d packet sightings to %s.", total, *outputFile)
}

func writePacket(w *pcapgo.Writer, srcIP, dstIP net.IP, ipID uint16, ts time.Time) {
	ethLayer := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ipLayer := &layers.IPv4{
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Id:       ipID,
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
	}
	udpLayer := &layers.UDP{
		SrcPort: 9000,
		DstPort: 9000,
	}
	udpLayer.SetNetworkLayerForChecksum(ipLayer)

	payload := make([]byte, 512)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload)); err != nil {
		log.Fatalf("Failed to serialize layers: %v", err)
	}

	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(buf.Bytes()),
		Length:        len(buf.Bytes()),
	}
	if err := w.WritePacket(ci, buf.Bytes()); err != nil {
		log.Fatalf("Failed to write packet: %v", err)
	}
}
