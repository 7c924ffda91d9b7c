package mq

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EventChannel names one of the Bus's publication channels.
type EventChannel string

const (
	EventPacketSent       EventChannel = "packet_sent"
	EventPacketReceived   EventChannel = "packet_received"
	EventConnected        EventChannel = "connected"
	EventDisconnected     EventChannel = "disconnected"
	EventReconnecting     EventChannel = "reconnecting"
	EventMessageDelivered EventChannel = "message_delivered"
)

// Event is a single notification published on a Bus channel.
type Event struct {
	Channel EventChannel
	Client  *Client
	// PacketType is the MQTT control packet type name, set for
	// EventPacketSent/EventPacketReceived.
	PacketType string
	// Err is set for EventDisconnected when the disconnect was caused by an error.
	Err error
}

// subscription is one registered handler, dispatched on its own goroutine so
// a slow or panicking handler can never stall protocol processing.
type subscription struct {
	ch     chan Event
	logger *slog.Logger
}

func newSubscription(logger *slog.Logger, fn func(Event)) *subscription {
	s := &subscription{ch: make(chan Event, 64), logger: logger}
	go s.run(fn)
	return s
}

func (s *subscription) run(fn func(Event)) {
	for ev := range s.ch {
		s.dispatch(fn, ev)
	}
}

func (s *subscription) dispatch(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event handler panicked", "channel", ev.Channel, "recovered", r)
		}
	}()
	fn(ev)
}

// Bus is the sole owner of subscriber lists for protocol-event notifications
// (see EventChannel). A Client holds a *Bus; subscribers never hold a
// reference back to the Client's internals beyond what an Event carries.
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventChannel][]*subscription
	logger *slog.Logger
}

func newBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[EventChannel][]*subscription),
		logger: logger,
	}
}

// Subscribe registers fn to run, on its own goroutine, for every Event
// published on channel.
func (b *Bus) Subscribe(channel EventChannel, fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[channel] = append(b.subs[channel], newSubscription(b.logger, fn))
}

// publish delivers ev to every subscriber of ev.Channel. Delivery is
// non-blocking: a subscriber whose queue is full drops the event rather
// than stall the caller (always protocol-critical code).
func (b *Bus) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs[ev.Channel] {
		select {
		case s.ch <- ev:
		default:
			b.logger.Debug("event dropped, subscriber queue full", "channel", ev.Channel)
		}
	}
}

// busMetrics is the built-in Prometheus subscriber, registered on the Bus when
// a metrics registerer is configured, exposing the counters named in the
// client's ambient metrics surface: packets sent/received and reconnects.
type busMetrics struct {
	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	reconnects      prometheus.Counter
}

func newBusMetrics(reg prometheus.Registerer) *busMetrics {
	m := &busMetrics{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqtt5",
			Name:      "packets_sent_total",
			Help:      "Total MQTT control packets sent, by packet type.",
		}, []string{"type"}),
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqtt5",
			Name:      "packets_received_total",
			Help:      "Total MQTT control packets received, by packet type.",
		}, []string{"type"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mqtt5",
			Name:      "reconnects_total",
			Help:      "Total number of automatic reconnect attempts.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.packetsSent, m.packetsReceived, m.reconnects)
	}
	return m
}

// register subscribes the collector to the Bus channels it tracks.
func (m *busMetrics) register(b *Bus) {
	b.Subscribe(EventPacketSent, func(ev Event) {
		m.packetsSent.WithLabelValues(ev.PacketType).Inc()
	})
	b.Subscribe(EventPacketReceived, func(ev Event) {
		m.packetsReceived.WithLabelValues(ev.PacketType).Inc()
	})
	b.Subscribe(EventReconnecting, func(Event) {
		m.reconnects.Inc()
	})
}

// registerLogSubscriber wires a slog subscriber across every channel this
// package defines, matching the teacher's pervasive Debug-level call sites.
func registerLogSubscriber(b *Bus, logger *slog.Logger) {
	for _, ch := range []EventChannel{
		EventPacketSent, EventPacketReceived, EventConnected,
		EventDisconnected, EventReconnecting, EventMessageDelivered,
	} {
		ch := ch
		b.Subscribe(ch, func(ev Event) {
			switch ch {
			case EventPacketSent, EventPacketReceived:
				logger.Debug("protocol event", "channel", ch, "packet_type", ev.PacketType)
			case EventDisconnected:
				logger.Debug("protocol event", "channel", ch, "error", ev.Err)
			default:
				logger.Debug("protocol event", "channel", ch)
			}
		})
	}
}
