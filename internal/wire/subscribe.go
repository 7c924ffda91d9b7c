package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// SubscribePacket represents an MQTT 5.0 SUBSCRIBE control packet.
type SubscribePacket struct {
	PacketID uint16
	Topics   []string
	QoS      []uint8 // QoS level for each topic

	// Subscription Options. These slices must match the length of
	// Topics/QoS if provided. If nil/empty, defaults (false/0) are used.
	NoLocal           []bool
	RetainAsPublished []bool
	RetainHandling    []uint8 // 0=Send, 1=SendIfNew, 2=DoNotSend

	Properties *Properties
}

// Type returns the packet type.
func (p *SubscribePacket) Type() uint8 {
	return SUBSCRIBE
}

// WriteTo writes the SUBSCRIBE packet to the writer.
func (p *SubscribePacket) WriteTo(w io.Writer) (int64, error) {
	var total int64

	var packetIDBytes [2]byte
	propsBytes := encodeProperties(p.Properties)

	variableHeaderLen := 2 + len(propsBytes)

	var payloadLen int
	var topicBytesList [][]byte

	for _, topic := range p.Topics {
		tb := encodeString(topic)
		topicBytesList = append(topicBytesList, tb)
		payloadLen += len(tb) + 1 // Topic + OptionsByte
	}

	// SUBSCRIBE has fixed header flags = 0x02 (bit 1 set)
	remainingLength := variableHeaderLen + payloadLen
	header := &FixedHeader{
		PacketType:      SUBSCRIBE,
		Flags:           0x02,
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

	for i, tb := range topicBytesList {
		n, err = w.Write(tb)
		total += int64(n)
		if err != nil {
			return total, err
		}

		optionsByte := byte(0)

		qos := uint8(QoS0)
		if i < len(p.QoS) {
			qos = p.QoS[i]
		}
		optionsByte |= (qos & 0x03)

		if i < len(p.NoLocal) && p.NoLocal[i] {
			optionsByte |= (1 << 2)
		}
		if i < len(p.RetainAsPublished) && p.RetainAsPublished[i] {
			optionsByte |= (1 << 3)
		}
		if i < len(p.RetainHandling) {
			rh := p.RetainHandling[i]
			optionsByte |= ((rh & 0x03) << 4)
		}

		if err := binary.Write(w, binary.BigEndian, optionsByte); err != nil {
			return total, err
		}
		total++
	}

	return total, nil
}

// DecodeSubscribe decodes a SUBSCRIBE packet from the buffer.
func DecodeSubscribe(buf []byte) (*SubscribePacket, error) {
	if len(buf) < 2 {
		return nil, errors.Wrap(ErrInsufficientData, "SUBSCRIBE")
	}

	pkt := &SubscribePacket{}
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

	for offset < len(buf) {
		topic, n, err := decodeString(buf[offset:])
		if err != nil {
			return nil, errors.Wrap(err, "decode topic filter")
		}
		offset += n

		if offset >= len(buf) {
			return nil, errors.Wrap(ErrInsufficientData, "options byte")
		}

		opts := buf[offset]
		offset++

		pkt.Topics = append(pkt.Topics, topic)
		pkt.QoS = append(pkt.QoS, opts&0x03)
		pkt.NoLocal = append(pkt.NoLocal, (opts&(1<<2)) != 0)
		pkt.RetainAsPublished = append(pkt.RetainAsPublished, (opts&(1<<3)) != 0)
		pkt.RetainHandling = append(pkt.RetainHandling, (opts>>4)&0x03)
	}

	return pkt, nil
}
