package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ghcnd-server/internal/config"
	"ghcnd-server/internal/modules/weather/types"
)

const (
	publishQoS     = 1
	publishTimeout = 5 * time.Second
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	errStopped      = errors.New("publisher stopped")
)

// brokerClient is the part of the paho client the publisher uses.
type brokerClient interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher sends aggregation events to the broker.
type Publisher struct {
	client      brokerClient
	topicPrefix string
	logger      *slog.Logger
	mu          sync.RWMutex
	connected   bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	p := newPublisher(nil, cfg.MQTTTopicPrefix, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

func newPublisher(client brokerClient, topicPrefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Connect waits for the initial broker connection, honouring ctx and
// Disconnect. With connect retry enabled paho keeps trying in the background
// after ctx expires.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errStopped
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errStopped
		default:
		}
	}
}

// AggregateTopic is the topic an aggregation for stationID is published on.
func (p *Publisher) AggregateTopic(stationID string) string {
	return fmt.Sprintf("%s/aggregates/%s", p.topicPrefix, stationID)
}

// PublishAggregate sends event with QoS 1, not retained.
func (p *Publisher) PublishAggregate(event types.AggregateEvent) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	topic := p.AggregateTopic(event.StationID)
	if event.ComputedAt.IsZero() {
		event.ComputedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal aggregate event: %w", err)
	}

	token := p.client.Publish(topic, publishQoS, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish aggregate event: %w", err)
	}

	p.logger.Debug("published aggregate event", "topic", topic, "station_id", event.StationID)
	return nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. It is idempotent.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt publisher disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
