package wire

import (
	"io"

	"github.com/cockroachdb/errors"
)

// PacketDecoder decodes a packet from remaining bytes and its fixed header.
type PacketDecoder func(remaining []byte, header *FixedHeader) (Packet, error)

// packetDecoders maps packet types to their decoder functions.
var packetDecoders = map[uint8]PacketDecoder{
	CONNECT: func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeConnect(remaining) },
	CONNACK: func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeConnack(remaining) },
	PUBLISH: func(remaining []byte, header *FixedHeader) (Packet, error) {
		return DecodePublish(remaining, header)
	},
	PUBACK:      func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePuback(remaining) },
	PUBREC:      func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePubrec(remaining) },
	PUBREL:      func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePubrel(remaining) },
	PUBCOMP:     func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePubcomp(remaining) },
	SUBSCRIBE:   func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeSubscribe(remaining) },
	SUBACK:      func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeSuback(remaining) },
	UNSUBSCRIBE: func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeUnsubscribe(remaining) },
	UNSUBACK:    func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeUnsuback(remaining) },
	PINGREQ:     func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePingreq(remaining) },
	PINGRESP:    func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodePingresp(remaining) },
	DISCONNECT:  func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeDisconnect(remaining) },
	AUTH:        func(remaining []byte, _ *FixedHeader) (Packet, error) { return DecodeAuth(remaining) },
}

// mqttSpecMax is the largest Remaining Length a Variable Byte Integer can encode.
const mqttSpecMax = 268435455

// ReadPacket reads a complete MQTT 5.0 packet from the reader.
// maxIncomingPacket sets the maximum allowed packet size; if 0 or exceeding
// the MQTT spec maximum, the spec maximum is used.
func ReadPacket(r io.Reader, maxIncomingPacket int) (Packet, error) {
	header, err := DecodeFixedHeader(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode fixed header")
	}

	maxPacketSize := maxIncomingPacket
	if maxPacketSize <= 0 || maxPacketSize > mqttSpecMax {
		maxPacketSize = mqttSpecMax
	}
	if header.RemainingLength > maxPacketSize {
		return nil, errors.Wrapf(ErrPacketTooLarge, "packet size %d exceeds maximum %d", header.RemainingLength, maxPacketSize)
	}

	var remaining []byte
	var bufPtr *[]byte

	if header.RemainingLength > 0 {
		bufPtr = GetBuffer(header.RemainingLength)
		remaining = (*bufPtr)[:header.RemainingLength]

		if _, err := io.ReadFull(r, remaining); err != nil {
			PutBuffer(bufPtr)
			return nil, errors.Wrap(err, "read packet body")
		}
	}

	decoder, ok := packetDecoders[header.PacketType]
	if !ok {
		if bufPtr != nil {
			PutBuffer(bufPtr)
		}
		return nil, errors.Wrapf(ErrMalformedPacket, "unknown packet type %d", header.PacketType)
	}

	pkt, err := decoder(remaining, header)

	if bufPtr != nil {
		PutBuffer(bufPtr)
	}

	return pkt, err
}
