package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout    = 10 * time.Second
	mqttPublishTimeout    = 5 * time.Second
	mqttDisconnectQuiesce = 250 // milliseconds
	mqttQueueSize         = 64
)

var ErrPublishFailed = errors.New("mqtt publish failed")

// mqttPublisher is the subset of pahomqtt.Client the notifier uses.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// MQTTNotifier pushes notifications to <prefix>/projects/<id>/notifications
// at QoS 0 so realtime clients receive them as banners. Notify only enqueues;
// a single worker publishes in order and drops on a full queue.
type MQTTNotifier struct {
	client mqttPublisher
	prefix string
	logger *slog.Logger

	queue     chan Notification
	done      chan struct{}
	drained   chan struct{}
	closeOnce sync.Once
}

// ConnectMQTT dials broker (e.g. "tcp://localhost:1883") and returns a
// notifier publishing under prefix.
func ConnectMQTT(broker, clientID, prefix string, logger *slog.Logger) (*MQTTNotifier, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "broker", broker, "error", err)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: timeout after %v", broker, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", broker, err)
	}
	logger.Info("connected to mqtt broker", "broker", broker, "client_id", clientID)
	return newMQTTNotifier(client, prefix, logger), nil
}

func newMQTTNotifier(client mqttPublisher, prefix string, logger *slog.Logger) *MQTTNotifier {
	m := &MQTTNotifier{
		client:  client,
		prefix:  prefix,
		logger:  logger,
		queue:   make(chan Notification, mqttQueueSize),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *MQTTNotifier) Topic(projectID string) string {
	return fmt.Sprintf("%s/projects/%s/notifications", m.prefix, projectID)
}

func (m *MQTTNotifier) Notify(_ context.Context, n Notification) {
	select {
	case <-m.done:
		m.logger.Warn("mqtt notifier closed, dropping notification", "project_id", n.ProjectID)
		return
	default:
	}

	select {
	case m.queue <- n:
	default:
		m.logger.Warn("mqtt queue full, dropping notification", "project_id", n.ProjectID)
	}
}

// run publishes queued notifications until Close, then flushes what is left.
func (m *MQTTNotifier) run() {
	defer close(m.drained)
	for {
		select {
		case n := <-m.queue:
			m.deliver(n)
		case <-m.done:
			for {
				select {
				case n := <-m.queue:
					m.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (m *MQTTNotifier) deliver(n Notification) {
	if err := m.publish(n); err != nil {
		m.logger.Error("failed to push notification", "project_id", n.ProjectID, "error", err)
	}
}

func (m *MQTTNotifier) publish(n Notification) error {
	if !m.client.IsConnected() {
		return fmt.Errorf("%w: not connected", ErrPublishFailed)
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	token := m.client.Publish(m.Topic(n.ProjectID), 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, mqttPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close flushes queued notifications and disconnects from the broker.
func (m *MQTTNotifier) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		<-m.drained
		m.client.Disconnect(mqttDisconnectQuiesce)
	})
}
