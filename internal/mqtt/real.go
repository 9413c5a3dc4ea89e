package mqtt

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

const bufferCapacity = 64

// RealClient talks to an actual broker. The daemon's client buffers
// messages published while the connection is down and replays them on
// reconnect; a command line client fails instead.
type RealClient struct {
	client   paho.Client
	topics   Topics
	timeout  time.Duration
	buffered bool

	mu      sync.Mutex
	buffer  *ringBuffer
	handler Handler
}

// Dial connects to the broker in cfg as the daemon. The will message marks
// the daemon OFFLINE if it disappears without a clean shutdown.
func Dial(cfg config.MQTTConfig) (*RealClient, error) {
	return dial(cfg, true)
}

// DialCLI connects a short-lived command line client. It uses its own
// client id so the daemon's session is not taken over, and sets no will.
// It does not retry: an unreachable broker is ErrBrokerUnavailable, and a
// publish after the connection dropped fails rather than being buffered
// in a process that is about to exit.
func DialCLI(cfg config.MQTTConfig) (*RealClient, error) {
	cfg.ClientID = fmt.Sprintf("%s-cli-%d", cfg.ClientID, os.Getpid())
	return dial(cfg, false)
}

func dial(cfg config.MQTTConfig, daemon bool) (*RealClient, error) {
	if !cfg.Enabled() {
		return nil, errors.ErrBrokerUnavailable
	}
	c := &RealClient{
		topics:   NewTopics(cfg),
		timeout:  cfg.ConnectTimeout,
		buffered: daemon,
		buffer:   newRingBuffer(bufferCapacity),
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(daemon).
		SetConnectRetry(daemon).
		SetConnectRetryInterval(5*time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logging.Warn("mqtt connection lost", logging.KeyError, err)
		})

	if daemon {
		will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: SystemOffline})
		opts.SetBinaryWill(c.topics.System, will, 1, true)
	}

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		if !daemon {
			c.client.Disconnect(0)
			return nil, fmt.Errorf("%w: no answer from %s within %s",
				errors.ErrBrokerUnavailable, cfg.Broker, c.timeout)
		}
		// Connect keeps retrying in the background; publishes buffer
		// until the first connect succeeds.
		logging.Warn("mqtt broker not reachable yet, retrying",
			"broker", cfg.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %v", errors.ErrBrokerUnavailable, err)
	}
	return c, nil
}

// onConnect runs on the first connect and every reconnect.
func (c *RealClient) onConnect(client paho.Client) {
	c.mu.Lock()
	pending := c.buffer.drainAll()
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		if err := c.subscribe(h); err != nil {
			logging.Error("mqtt resubscribe failed", logging.KeyError, err)
		}
	}
	for _, m := range pending {
		client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if len(pending) > 0 {
		logging.Info("mqtt replayed buffered messages", logging.KeyCount, len(pending))
	}
}

// IsConnected reports whether the client currently has a broker connection.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

func (c *RealClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		if !c.buffered {
			return fmt.Errorf("publish %s: %w", topic, errors.ErrBrokerUnavailable)
		}
		c.mu.Lock()
		c.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		c.mu.Unlock()
		return nil
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish %s: %w", topic, errors.ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishNotification implements Publisher.
func (c *RealClient) PublishNotification(n *model.Notification) error {
	payload, err := FormatNotification(n)
	if err != nil {
		return fmt.Errorf("format notification: %w", err)
	}
	return c.publish(c.topics.Notification(n.ID), 1, true, payload)
}

// ClearNotification implements Publisher. An empty retained message
// deletes the retained notification on the broker.
func (c *RealClient) ClearNotification(id int) error {
	return c.publish(c.topics.Notification(id), 1, true, []byte{})
}

// PublishState implements Publisher.
func (c *RealClient) PublishState(state StatePayload) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("format state: %w", err)
	}
	return c.publish(c.topics.State, 1, true, payload)
}

// PublishEvent implements Publisher.
func (c *RealClient) PublishEvent(ev reminder.Event) error {
	payload, err := FormatEvent(ev)
	if err != nil {
		return fmt.Errorf("format event: %w", err)
	}
	topic := c.topics.Events
	if ev.Kind.IsAction() {
		topic = c.topics.Actions
	}
	return c.publish(topic, 1, false, payload)
}

// PublishSystem implements Publisher.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(c.topics.System, 1, event.Retained, payload)
}

// Subscribe implements Subscriber. The subscription is restored after
// every reconnect.
func (c *RealClient) Subscribe(h Handler) error {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
	return c.subscribe(h)
}

func (c *RealClient) subscribe(h Handler) error {
	cb := func(_ paho.Client, msg paho.Message) {
		ev, err := ParseEvent(msg.Payload())
		if err != nil {
			logging.Warn("ignoring mqtt message",
				logging.KeyTopic, msg.Topic(),
				logging.KeyError, err)
			return
		}
		h(ev)
	}
	token := c.client.SubscribeMultiple(map[string]byte{
		c.topics.Events:  1,
		c.topics.Actions: 1,
	}, cb)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("subscribe: %w", errors.ErrTimeout)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000)
	return nil
}
