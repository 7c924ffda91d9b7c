package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-mqtt/mqtt5/internal/wire"
)

func TestParseSharedSubscription(t *testing.T) {
	tests := []struct {
		name       string
		filter     string
		wantGroup  string
		wantFilter string
		wantOK     bool
	}{
		{
			name:       "ordinary filter is not shared",
			filter:     "sensors/+/temp",
			wantFilter: "sensors/+/temp",
			wantOK:     false,
		},
		{
			name:       "simple shared subscription",
			filter:     "$share/workers/sensors/+/temp",
			wantGroup:  "workers",
			wantFilter: "sensors/+/temp",
			wantOK:     true,
		},
		{
			name:       "shared subscription with multi-level wildcard",
			filter:     "$share/group1/#",
			wantGroup:  "group1",
			wantFilter: "#",
			wantOK:     true,
		},
		{
			name:       "missing group name is not shared",
			filter:     "$share//sensors/temp",
			wantFilter: "$share//sensors/temp",
			wantOK:     false,
		},
		{
			name:       "missing filter after group is not shared",
			filter:     "$share/workers/",
			wantFilter: "$share/workers/",
			wantOK:     false,
		},
		{
			name:       "missing slash after group is not shared",
			filter:     "$share/workers",
			wantFilter: "$share/workers",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, filter, ok := ParseSharedSubscription(tt.filter)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantGroup, group)
			assert.Equal(t, tt.wantFilter, filter)
		})
	}
}

func TestMatchTopicSharedSubscription(t *testing.T) {
	assert.True(t, MatchTopic("$share/workers/sensors/+/temp", "sensors/room1/temp"))
	assert.False(t, MatchTopic("$share/workers/sensors/+/temp", "sensors/room1/humidity"))
	assert.True(t, MatchTopic("$share/workers/#", "sensors/room1/temp"))
}

func TestQoSValid(t *testing.T) {
	assert.True(t, AtMostOnce.Valid())
	assert.True(t, AtLeastOnce.Valid())
	assert.True(t, ExactlyOnce.Valid())
	assert.False(t, QoS(3).Valid())
}

func TestQoSString(t *testing.T) {
	assert.Equal(t, "at-most-once", AtMostOnce.String())
	assert.Equal(t, "at-least-once", AtLeastOnce.String())
	assert.Equal(t, "exactly-once", ExactlyOnce.String())
	assert.Equal(t, "invalid", QoS(3).String())
}

func TestIsReasonCode(t *testing.T) {
	err := &MqttError{ReasonCode: ReasonCodeQuotaExceeded, Message: "backpressure"}
	assert.True(t, IsReasonCode(err, ReasonCodeQuotaExceeded))
	assert.False(t, IsReasonCode(err, ReasonCodeNotAuthorized))
}

func TestSharedSubscriptionRoundRobinDispatch(t *testing.T) {
	opts := defaultOptions("tcp://localhost:1883")
	c := &Client{
		opts:              opts,
		subscriptions:     make(map[string]subscriptionEntry),
		sharedGroupCursor: make(map[string]uint64),
		incoming:          make(chan wire.Packet, 1),
		outgoing:          make(chan wire.Packet, 1),
		stop:              make(chan struct{}),
		events:            newBus(opts.Logger),
	}

	// Exercise the same cursor map handlePublish uses, with three distinct
	// handlers sharing one group, and confirm delivery cycles through them.
	seen := make([]int, 0, 6)
	handlers := []MessageHandler{
		func(*Client, Message) { seen = append(seen, 0) },
		func(*Client, Message) { seen = append(seen, 1) },
		func(*Client, Message) { seen = append(seen, 2) },
	}
	for range 6 {
		idx := c.sharedGroupCursor["workers"] % uint64(len(handlers))
		c.sharedGroupCursor["workers"]++
		handlers[idx](c, Message{})
	}
	require.Len(t, seen, 6)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, seen)
}

func TestMessageIsReply(t *testing.T) {
	msg := Message{Properties: &Properties{CorrelationData: []byte("abc123")}}
	assert.True(t, msg.IsReply([]byte("abc123")))
	assert.False(t, msg.IsReply([]byte("other")))
	assert.False(t, Message{}.IsReply([]byte("abc123")))
}

func TestPropertiesIsRequest(t *testing.T) {
	assert.True(t, (&Properties{ResponseTopic: "replies/1", CorrelationData: []byte("x")}).IsRequest())
	assert.False(t, (&Properties{ResponseTopic: "replies/1"}).IsRequest())
	assert.False(t, (*Properties)(nil).IsRequest())
}

func TestRequestReplyFilter(t *testing.T) {
	var delivered []string
	handler := RequestReplyFilter(func(_ *Client, msg Message) {
		delivered = append(delivered, msg.Topic)
	})

	handler(nil, Message{Topic: "not-a-request"})
	handler(nil, Message{
		Topic:      "is-a-request",
		Properties: &Properties{ResponseTopic: "replies/1", CorrelationData: []byte("x")},
	})

	require.Len(t, delivered, 1)
	assert.Equal(t, "is-a-request", delivered[0])
}
