package mq_test

import (
	"bytes"

	"github.com/halcyon-mqtt/mqtt5/internal/wire"
)

func encodeToBytes(pkt wire.Packet) []byte {
	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
