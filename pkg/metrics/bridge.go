package metrics

import "github.com/prometheus/client_golang/prometheus"

// BridgeMetrics tracks MQTT traffic flowing through the backend.
type BridgeMetrics struct {
	published *prometheus.CounterVec
	received  *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// NewBridgeMetrics registers the MQTT bridge metrics on the provided registerer.
func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	if reg == nil {
		return &BridgeMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_messages_published_total",
		Help: "Messages published to the broker.",
	}, []string{"topic"})
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_messages_received_total",
		Help: "Messages received from subscribed topics.",
	}, []string{"topic"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_messages_dropped_total",
		Help: "Inbound messages that failed handling.",
	}, []string{"topic"})
	reg.MustRegister(published, received, dropped)
	return &BridgeMetrics{published: published, received: received, dropped: dropped}
}

// IncPublished increments the publish counter for the topic.
func (b *BridgeMetrics) IncPublished(topic string) {
	if b == nil || b.published == nil {
		return
	}
	b.published.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncReceived increments the receive counter for the topic.
func (b *BridgeMetrics) IncReceived(topic string) {
	if b == nil || b.received == nil {
		return
	}
	b.received.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncDropped increments the drop counter for the topic.
func (b *BridgeMetrics) IncDropped(topic string) {
	if b == nil || b.dropped == nil {
		return
	}
	b.dropped.WithLabelValues(normalizeLabel(topic)).Inc()
}
