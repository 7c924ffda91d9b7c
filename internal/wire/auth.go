package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// AuthPacket represents an MQTT v5.0 AUTH control packet.
//
// The AUTH packet is used for extended authentication exchanges between
// client and server. It enables challenge/response authentication mechanisms
// such as SCRAM, OAuth, Kerberos, etc.
type AuthPacket struct {
	ReasonCode uint8       // Authentication reason code
	Properties *Properties // Authentication properties (method, data, etc.)
}

// AUTH reason codes
const (
	AuthReasonSuccess        uint8 = 0x00 // Authentication successful
	AuthReasonContinue       uint8 = 0x18 // Continue authentication
	AuthReasonReauthenticate uint8 = 0x19 // Re-authenticate
)

// Type returns the packet type (AUTH = 15).
func (p *AuthPacket) Type() uint8 {
	return AUTH
}

// WriteTo writes the AUTH packet to the writer.
func (p *AuthPacket) WriteTo(w io.Writer) (int64, error) {
	var total int64

	propsBytes := encodeProperties(p.Properties)
	variableHeaderLen := 1 + len(propsBytes) // ReasonCode + Props

	header := &FixedHeader{
		PacketType:      AUTH,
		Flags:           0,
		RemainingLength: variableHeaderLen,
	}

	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}

	if err := binary.Write(w, binary.BigEndian, p.ReasonCode); err != nil {
		return total, err
	}
	total++

	n, err := w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}

	return total, nil
}

// DecodeAuth decodes an AUTH packet from the buffer.
func DecodeAuth(buf []byte) (*AuthPacket, error) {
	if len(buf) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "AUTH")
	}

	pkt := &AuthPacket{}
	offset := 0

	pkt.ReasonCode = buf[offset]
	offset++

	if offset < len(buf) {
		props, _, err := decodeProperties(buf[offset:])
		if err != nil {
			return nil, errors.Wrap(err, "decode properties")
		}
		pkt.Properties = props
	}

	return pkt, nil
}
