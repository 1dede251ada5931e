package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/metrics"
)

// QoS 1 gives at-least-once delivery for pump commands and telemetry.
const defaultQoS = 1

// Handler processes one inbound message for a subscribed topic.
type Handler func(ctx context.Context, topic string, payload []byte) error

// Publisher is the outbound surface services depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Client wraps the paho connection with a subscription registry that
// survives reconnects.
type Client struct {
	conn    paho.Client
	cfg     config.MQTTConfig
	logg    *logger.Logger
	bridge  *metrics.BridgeMetrics
	mu      sync.RWMutex
	routes  map[string]Handler
	timeout time.Duration
}

// New builds a client wired for auto-reconnect. Connect must be called
// before publishing.
func New(cfg config.MQTTConfig, logg *logger.Logger, bridge *metrics.BridgeMetrics) *Client {
	c := &Client{
		cfg:     cfg,
		logg:    logg,
		bridge:  bridge,
		routes:  map[string]Handler{},
		timeout: cfg.ConnectTimeout,
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("%s_%s", cfg.ClientIDPrefix, uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.ReconnectPeriod).
		SetConnectTimeout(c.timeout).
		SetCleanSession(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.conn = paho.NewClient(opts)
	return c
}

// Handle registers a handler for a topic. Registration before Connect is
// required so the initial subscribe picks it up.
func (c *Client) Handle(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[topic] = handler
}

// Connect dials the broker and subscribes all registered routes.
func (c *Client) Connect(ctx context.Context) error {
	token := c.conn.Connect()
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("connecting to broker %s: timeout", c.cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to broker %s: %w", c.cfg.BrokerURL, err)
	}
	return nil
}

func (c *Client) onConnect(conn paho.Client) {
	ctx := context.Background()
	if c.logg != nil {
		c.logg.Info(ctx, fmt.Sprintf("mqtt connected to %s", c.cfg.BrokerURL))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, handler := range c.routes {
		c.subscribe(conn, topic, handler)
	}
}

func (c *Client) subscribe(conn paho.Client, topic string, handler Handler) {
	token := conn.Subscribe(topic, defaultQoS, func(_ paho.Client, msg paho.Message) {
		ctx := context.Background()
		if c.logg != nil {
			ctx = c.logg.WithTopic(ctx, msg.Topic())
		}
		c.bridge.IncReceived(msg.Topic())
		if err := handler(ctx, msg.Topic(), msg.Payload()); err != nil {
			c.bridge.IncDropped(msg.Topic())
			if c.logg != nil {
				c.logg.Error(ctx, "mqtt.message.failed", err)
			}
		}
	})
	go func() {
		if token.Wait() && token.Error() != nil && c.logg != nil {
			ctx := c.logg.WithTopic(context.Background(), topic)
			c.logg.Error(ctx, "mqtt.subscribe.failed", token.Error())
		}
	}()
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	if c.logg != nil {
		c.logg.Warn(context.Background(), fmt.Sprintf("mqtt connection lost: %v", err))
	}
}

// Publish sends a payload with QoS 1, honoring the context deadline.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	if !c.conn.IsConnectionOpen() {
		return fmt.Errorf("mqtt client not connected")
	}

	token := c.conn.Publish(topic, defaultQoS, false, payload)

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	c.bridge.IncPublished(topic)
	return nil
}

// Ping reports broker connectivity for readiness checks. Paho reconnects on
// its own, so this only inspects the connection state.
func (c *Client) Ping(context.Context) error {
	if !c.conn.IsConnectionOpen() {
		return fmt.Errorf("mqtt client not connected")
	}
	return nil
}

// Close disconnects from the broker, giving in-flight work a grace period.
func (c *Client) Close() {
	c.conn.Disconnect(250)
}
