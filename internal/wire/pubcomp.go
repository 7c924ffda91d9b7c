package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// PubcompPacket represents an MQTT 5.0 PUBCOMP control packet (QoS 2, step 3).
type PubcompPacket struct {
	PacketID   uint16
	ReasonCode uint8
	Properties *Properties
}

// Type returns the packet type.
func (p *PubcompPacket) Type() uint8 {
	return PUBCOMP
}

// WriteTo writes the PUBCOMP packet to the writer.
func (p *PubcompPacket) WriteTo(w io.Writer) (int64, error) {
	var total int64

	var packetIDBytes [2]byte
	var propsBytes []byte
	hasReasonFields := p.ReasonCode != 0 || p.Properties != nil
	if hasReasonFields {
		propsBytes = encodeProperties(p.Properties)
	}

	variableHeaderLen := 2
	if hasReasonFields {
		variableHeaderLen += 1 + len(propsBytes)
	}

	header := &FixedHeader{
		PacketType:      PUBCOMP,
		Flags:           0,
		RemainingLength: variableHeaderLen,
	}

	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}
	var n int

	binary.BigEndian.PutUint16(packetIDBytes[:], p.PacketID)
	n, err = w.Write(packetIDBytes[:])
	total += int64(n)
	if err != nil {
		return total, err
	}

	if hasReasonFields {
		if err := binary.Write(w, binary.BigEndian, p.ReasonCode); err != nil {
			return total, err
		}
		total++

		n, err = w.Write(propsBytes)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// DecodePubcomp decodes a PUBCOMP packet from the buffer.
func DecodePubcomp(buf []byte) (*PubcompPacket, error) {
	if len(buf) < 2 {
		return nil, errors.Wrap(ErrInsufficientData, "PUBCOMP")
	}

	pkt := &PubcompPacket{}
	pkt.PacketID = binary.BigEndian.Uint16(buf[0:2])

	if len(buf) > 2 {
		pkt.ReasonCode = buf[2]
		if len(buf) > 3 {
			props, _, err := decodeProperties(buf[3:])
			if err != nil {
				return nil, errors.Wrap(err, "decode properties")
			}
			pkt.Properties = props
		}
	}

	return pkt, nil
}
