package mq

// Message is a PUBLISH delivered to a subscription handler: topic, payload,
// delivery QoS, and the v5.0 properties the server attached (subscription
// identifiers, content type, request/response fields).
type Message struct {
	// Topic the message was published to. For a shared subscription
	// ($share/{group}/{filter}), this is the real topic the publisher used,
	// never the $share/ prefixed filter.
	Topic string

	// Message payload
	Payload []byte

	// Quality of Service the message was delivered at
	QoS QoS

	// Retained message flag
	Retained bool

	// Duplicate delivery flag
	Duplicate bool

	// Properties carried on the PUBLISH packet, or nil if the publisher set
	// none. Use IsReply rather than dereferencing directly when matching a
	// Client.Request correlation ID.
	Properties *Properties
}

// IsReply reports whether msg carries CorrelationData matching correlation,
// the test Client.Request uses to pick its awaited reply out of a response
// topic that may also receive unrelated traffic.
func (m Message) IsReply(correlation []byte) bool {
	if m.Properties == nil {
		return false
	}
	if len(correlation) != len(m.Properties.CorrelationData) {
		return false
	}
	for i := range correlation {
		if correlation[i] != m.Properties.CorrelationData[i] {
			return false
		}
	}
	return true
}
