package wire

import "github.com/cockroachdb/errors"

// Sentinel errors describing why a packet failed to decode or encode.
// Callers use errors.Is against these to classify failures without
// parsing error strings.
var (
	// ErrMalformedPacket indicates the packet violated the MQTT 5.0 wire
	// format (bad length, out-of-range value, missing mandatory field).
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrProtocolError indicates the packet was well-formed but violated
	// an MQTT 5.0 protocol rule (e.g. wrong protocol name, reserved bits set).
	ErrProtocolError = errors.New("protocol error")

	// ErrPacketTooLarge indicates a remaining-length value exceeded the
	// configured maximum incoming packet size.
	ErrPacketTooLarge = errors.New("packet too large")

	// ErrInsufficientData indicates the buffer ended before a field could
	// be fully decoded.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnsupportedProtocolVersion indicates a CONNECT carried a protocol
	// level other than 5 (this module is MQTT 5.0 only).
	ErrUnsupportedProtocolVersion = errors.New("unsupported protocol version")
)
