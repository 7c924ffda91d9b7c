package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// PublishPacket represents an MQTT 5.0 PUBLISH control packet.
type PublishPacket struct {
	// Fixed header flags
	Dup    bool
	QoS    uint8
	Retain bool

	// Variable header
	Topic         string
	OriginalTopic string // Original topic if Topic is emptied for alias
	PacketID      uint16 // Only present if QoS > 0

	// Payload
	Payload []byte

	Properties *Properties

	// UseAlias indicates whether to use topic alias for this publish.
	// This is set by WithAlias() and processed by the client.
	UseAlias bool
}

// Type returns the packet type.
func (p *PublishPacket) Type() uint8 {
	return PUBLISH
}

// Encode serializes the PUBLISH packet into dst.
func (p *PublishPacket) Encode(dst []byte) ([]byte, error) {
	topicLen := 2 + len(p.Topic)

	var propBuf [128]byte
	encodedProps := appendProperties(propBuf[:0], p.Properties)
	propertyLen := len(encodedProps)

	variableHeaderLen := topicLen + propertyLen
	if p.QoS > 0 {
		variableHeaderLen += 2
	}

	remainingLength := variableHeaderLen + len(p.Payload)

	var flags uint8
	if p.Dup {
		flags |= 0x08
	}
	flags |= (p.QoS & 0x03) << 1
	if p.Retain {
		flags |= 0x01
	}

	header := FixedHeader{
		PacketType:      PUBLISH,
		Flags:           flags,
		RemainingLength: remainingLength,
	}

	dst = header.appendBytes(dst)

	dst = appendString(dst, p.Topic)

	if p.QoS > 0 {
		dst = binary.BigEndian.AppendUint16(dst, p.PacketID)
	}

	dst = appendProperties(dst, p.Properties)

	dst = append(dst, p.Payload...)

	return dst, nil
}

// WriteTo writes the PUBLISH packet to the writer.
func (p *PublishPacket) WriteTo(w io.Writer) (int64, error) {
	bufPtr := GetBuffer(4096)
	defer PutBuffer(bufPtr)

	data, err := p.Encode((*bufPtr)[:0])
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DecodePublish decodes a PUBLISH packet from the buffer and fixed header.
func DecodePublish(buf []byte, fixedHeader *FixedHeader) (*PublishPacket, error) {
	pkt := &PublishPacket{}

	pkt.Dup = (fixedHeader.Flags & 0x08) != 0
	pkt.QoS = (fixedHeader.Flags >> 1) & 0x03
	pkt.Retain = (fixedHeader.Flags & 0x01) != 0

	offset := 0

	topic, n, err := decodeString(buf[offset:])
	if err != nil {
		return nil, errors.Wrap(err, "decode topic")
	}
	pkt.Topic = topic
	offset += n

	if pkt.QoS > 0 {
		if offset+2 > len(buf) {
			return nil, errors.Wrap(ErrInsufficientData, "packet id")
		}
		pkt.PacketID = binary.BigEndian.Uint16(buf[offset : offset+2])
		offset += 2
	}

	props, nProps, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, errors.Wrap(err, "decode properties")
	}
	pkt.Properties = props
	offset += nProps

	pkt.Payload = make([]byte, len(buf)-offset)
	copy(pkt.Payload, buf[offset:])

	return pkt, nil
}
