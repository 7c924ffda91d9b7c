package mq

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/halcyon-mqtt/mqtt5/internal/wire"
)

// FuzzPacketSequence generates sequences of valid MQTT packets to test the Client state machine.
func FuzzPacketSequence(f *testing.F) {
	// Seed with valid packet type sequences (using uint8 IDs)
	// 2 = CONNACK, 3 = PUBLISH, 4 = PUBACK, 5 = PUBREC, 6 = PUBREL, 7 = PUBCOMP, 9 = SUBACK, 11 = UNSUBACK
	f.Add([]byte{2, 3, 4})    // CONNACK, then QoS 1 PUBLISH, then PUBACK
	f.Add([]byte{3, 5, 6, 7}) // QoS 2 flow

	f.Fuzz(func(t *testing.T, sequence []byte) {
		c := &Client{
			opts: &clientOptions{
				ProtocolVersion: ProtocolV50,
				Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
			},
			incoming:      make(chan wire.Packet, 100),
			outgoing:      make(chan wire.Packet, 100),
			pending:       make(map[uint16]*pendingOp),
			subscriptions: make(map[string]subscriptionEntry),
			receivedQoS2:  make(map[uint16]struct{}),
		}

		for _, pType := range sequence {
			var pkt wire.Packet
			packetID := uint16(1) // Constant for simplicity in sequence

			switch pType % 16 {
			case wire.CONNACK:
				pkt = &wire.ConnackPacket{ReturnCode: 0}
			case wire.PUBLISH:
				pkt = &wire.PublishPacket{PacketID: packetID, QoS: 1, Topic: "test"}
			case wire.PUBACK:
				pkt = &wire.PubackPacket{PacketID: packetID}
			case wire.PUBREC:
				pkt = &wire.PubrecPacket{PacketID: packetID}
			case wire.PUBREL:
				pkt = &wire.PubrelPacket{PacketID: packetID}
			case wire.PUBCOMP:
				pkt = &wire.PubcompPacket{PacketID: packetID}
			case wire.SUBACK:
				pkt = &wire.SubackPacket{PacketID: packetID, ReturnCodes: []uint8{0}}
			case wire.UNSUBACK:
				pkt = &wire.UnsubackPacket{PacketID: packetID}
			case wire.PINGRESP:
				pkt = &wire.PingrespPacket{}
			case wire.DISCONNECT:
				pkt = &wire.DisconnectPacket{}
			default:
				continue
			}

			// Simulate packet arrival
			// We call handleIncoming directly to avoid needing logicLoop goroutine
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("Recovered from panic during packet %d handling: %v", pType, r)
					}
				}()
				c.handleIncoming(pkt)
			}()
		}

		// Ensure we can still disconnect
		_ = c.Disconnect(context.Background())
	})
}
