package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// UnsubackPacket represents an MQTT 5.0 UNSUBACK control packet.
type UnsubackPacket struct {
	PacketID    uint16
	ReasonCodes []uint8
	Properties  *Properties
}

// Type returns the packet type.
func (p *UnsubackPacket) Type() uint8 {
	return UNSUBACK
}

// WriteTo writes the UNSUBACK packet to the writer.
func (p *UnsubackPacket) WriteTo(w io.Writer) (int64, error) {
	var total int64

	var packetIDBytes [2]byte
	propsBytes := encodeProperties(p.Properties)

	variableHeaderLen := 2 + len(propsBytes)
	remainingLength := variableHeaderLen + len(p.ReasonCodes)

	header := &FixedHeader{
		PacketType:      UNSUBACK,
		Flags:           0,
		RemainingLength: remainingLength,
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

	n, err = w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}

	n, err = w.Write(p.ReasonCodes)
	total += int64(n)
	if err != nil {
		return total, err
	}

	return total, nil
}

// DecodeUnsuback decodes an UNSUBACK packet from the buffer.
func DecodeUnsuback(buf []byte) (*UnsubackPacket, error) {
	if len(buf) < 2 {
		return nil, errors.Wrap(ErrInsufficientData, "UNSUBACK")
	}

	pkt := &UnsubackPacket{}
	offset := 0

	pkt.PacketID = binary.BigEndian.Uint16(buf[offset : offset+2])
	offset += 2

	if offset >= len(buf) {
		return nil, errors.Wrap(ErrInsufficientData, "properties length")
	}
	props, n, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, errors.Wrap(err, "decode properties")
	}
	pkt.Properties = props
	offset += n

	if offset < len(buf) {
		pkt.ReasonCodes = make([]uint8, len(buf)-offset)
		copy(pkt.ReasonCodes, buf[offset:])
	}

	return pkt, nil
}
