package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// ConnackPacket represents an MQTT 5.0 CONNACK control packet.
type ConnackPacket struct {
	SessionPresent bool

	// ReasonCode is the CONNACK reason code (named ReturnCode in older
	// protocol revisions, kept here for the v5.0 semantics).
	ReasonCode uint8

	Properties *Properties
}

// Type returns the packet type.
func (p *ConnackPacket) Type() uint8 {
	return CONNACK
}

// WriteTo writes the CONNACK packet to the writer.
func (p *ConnackPacket) WriteTo(w io.Writer) (int64, error) {
	var total int64

	propsBytes := encodeProperties(p.Properties)
	variableHeaderLen := 1 + 1 + len(propsBytes) // ack flags + reason code + properties

	header := &FixedHeader{
		PacketType:      CONNACK,
		Flags:           0,
		RemainingLength: variableHeaderLen,
	}

	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}
	var n int

	// 3. Write Variable Header
	// Connect acknowledge flags
	var ackFlags uint8
	if p.SessionPresent {
		ackFlags |= 0x01
	}
	if err := binary.Write(w, binary.BigEndian, ackFlags); err != nil {
		return total, err
	}
	total++

	if err := binary.Write(w, binary.BigEndian, p.ReasonCode); err != nil {
		return total, err
	}
	total++

	n, err = w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}

	return total, nil
}

// DecodeConnack decodes an MQTT 5.0 CONNACK packet from the buffer.
func DecodeConnack(buf []byte) (*ConnackPacket, error) {
	if len(buf) < 2 {
		return nil, errors.Wrap(ErrInsufficientData, "CONNACK")
	}

	pkt := &ConnackPacket{}

	ackFlags := buf[0]
	pkt.SessionPresent = (ackFlags & 0x01) != 0
	pkt.ReasonCode = buf[1]

	if len(buf) > 2 {
		props, _, err := decodeProperties(buf[2:])
		if err != nil {
			return nil, errors.Wrap(err, "decode properties")
		}
		pkt.Properties = props
	}

	return pkt, nil
}
