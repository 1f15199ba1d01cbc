// Package capture extracts hardware addresses from packet capture files.
package capture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/ipastusi/macsql/mac"
)

type Source uint8

const (
	SourceEthernet Source = iota
	SourceARP
)

func (s Source) String() string {
	if s == SourceARP {
		return "arp"
	}
	return "ethernet"
}

// Sighting is one source address seen in a packet.
type Sighting struct {
	Addr   mac.Addr
	Ts     int64
	Source Source
}

var pcapngMagic = binary.LittleEndian.AppendUint32(nil, 0x0a0d0d0a)

// Read decodes a pcap or pcapng stream and calls handle for the Ethernet
// source of every frame and for ARP sender addresses that differ from it.
// Frames without an Ethernet header report every ARP sender.
// It returns the number of packets read.
func Read(ctx context.Context, r io.Reader, filter Filter, handle func(Sighting)) (int, error) {
	source, err := packetSource(r)
	if err != nil {
		return 0, err
	}

	packets := 0
	for {
		if err := ctx.Err(); err != nil {
			return packets, err
		}
		packet, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			return packets, nil
		} else if err != nil {
			return packets, fmt.Errorf("packet %d: %w", packets+1, err)
		}
		packets++

		ts := packet.Metadata().Timestamp.UnixMilli()
		var ethSrc mac.Addr
		hasEth := false
		if ethLayer := packet.Layer(layers.LayerTypeEthernet); ethLayer != nil {
			eth := ethLayer.(*layers.Ethernet)
			if addr, ok := addrFrom(eth.SrcMAC); ok {
				ethSrc, hasEth = addr, true
				emit(filter, handle, Sighting{Addr: addr, Ts: ts, Source: SourceEthernet})
			}
		}
		if arpLayer := packet.Layer(layers.LayerTypeARP); arpLayer != nil {
			arp := arpLayer.(*layers.ARP)
			if addr, ok := addrFrom(arp.SourceHwAddress); ok && (!hasEth || addr != ethSrc) {
				emit(filter, handle, Sighting{Addr: addr, Ts: ts, Source: SourceARP})
			}
		}
	}
}

func emit(filter Filter, handle func(Sighting), s Sighting) {
	if filter.IsExcluded(s.Addr) {
		return
	}
	handle(s)
}

func addrFrom(hw []byte) (mac.Addr, bool) {
	var addr mac.Addr
	if len(hw) != len(addr) {
		return addr, false
	}
	copy(addr[:], hw)
	return addr, true
}

func packetSource(r io.Reader) (*gopacket.PacketSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	if bytes.Equal(magic, pcapngMagic) {
		ngReader, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("open pcapng: %w", err)
		}
		return gopacket.NewPacketSource(ngReader, ngReader.LinkType()), nil
	}

	reader, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open pcap: %w", err)
	}
	return gopacket.NewPacketSource(reader, reader.LinkType()), nil
}
