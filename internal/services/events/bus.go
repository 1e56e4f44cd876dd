package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
)

// Envelope is the wire format forwarded to the external bus.
type Envelope struct {
	Source       string         `json:"source"`
	TenantID     uuid.UUID      `json:"tenant_id"`
	EventType    string         `json:"event_type"`
	ResourceID   uuid.UUID      `json:"resource_id"`
	ResourceType string         `json:"resource_type"`
	Timestamp    time.Time      `json:"timestamp"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// BusForwarder publishes event envelopes to a durable RabbitMQ queue.
// Connection loss triggers background reconnection; Forward fails fast
// while disconnected rather than blocking the request path.
type BusForwarder struct {
	url        string
	queue      string
	connection *amqp.Connection
	channel    *amqp.Channel
	logger     *zap.Logger
	mutex      sync.RWMutex
	done       chan struct{}
	closed     bool
}

func NewBusForwarder(url, queue string, logger *zap.Logger) *BusForwarder {
	return &BusForwarder{
		url:    url,
		queue:  queue,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Connect dials without holding the forwarder lock: the retry/backoff loop
// can take seconds, and Forward and IsConnected must keep failing fast
// during a reconnect instead of queueing behind it.
func (b *BusForwarder) Connect() error {
	if b.IsConnected() {
		return nil
	}

	var conn *amqp.Connection
	var err error

	// Retry connection with backoff
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err = amqp.Dial(b.url)
		if err == nil {
			break
		}

		b.logger.Warn("Failed to connect to event bus, retrying...",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < 5 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	if err != nil {
		metrics.UpdateBusConnections("disconnected", 1)
		return fmt.Errorf("failed to connect to event bus after 5 attempts: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open bus channel: %w", err)
	}

	// Durable queue so audit forwarding survives broker restarts
	if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
	}

	b.mutex.Lock()
	if b.closed || (b.connection != nil && !b.connection.IsClosed()) {
		// A concurrent Connect won, or Close ran while we were dialing.
		b.mutex.Unlock()
		ch.Close()
		conn.Close()
		return nil
	}
	b.connection = conn
	b.channel = ch
	b.mutex.Unlock()

	metrics.UpdateBusConnections("connected", 1)
	metrics.UpdateBusConnections("disconnected", 0)
	b.logger.Info("Connected to event bus", zap.String("queue", b.queue))

	// Start connection monitor
	go b.monitorConnection(conn)

	return nil
}

// Close is idempotent; shutdown paths may reach it more than once.
func (b *BusForwarder) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)

	if b.channel != nil && !b.channel.IsClosed() {
		b.channel.Close()
	}

	if b.connection != nil && !b.connection.IsClosed() {
		if err := b.connection.Close(); err != nil {
			b.logger.Error("Error closing event bus connection", zap.Error(err))
			return err
		}
	}

	b.logger.Info("Event bus connection closed")
	return nil
}

// Forward publishes one envelope as a persistent JSON message. The caller
// bounds the attempt with ctx; a dead connection is an immediate error.
func (b *BusForwarder) Forward(ctx context.Context, envelope Envelope) error {
	b.mutex.RLock()
	ch := b.channel
	connected := b.connection != nil && !b.connection.IsClosed()
	b.mutex.RUnlock()

	if !connected || ch == nil || ch.IsClosed() {
		return fmt.Errorf("event bus connection is not available")
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",      // exchange
		b.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    envelope.Timestamp,
			Type:         envelope.EventType,
			AppId:        envelope.Source,
		})

	if err != nil {
		return fmt.Errorf("failed to forward event to queue %s: %w", b.queue, err)
	}

	b.logger.Debug("Event forwarded to bus",
		zap.String("event_type", envelope.EventType),
		zap.String("tenant_id", envelope.TenantID.String()))
	return nil
}

func (b *BusForwarder) IsConnected() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.connection != nil && !b.connection.IsClosed()
}

func (b *BusForwarder) monitorConnection(conn *amqp.Connection) {
	closeChan := make(chan *amqp.Error)
	conn.NotifyClose(closeChan)

	select {
	case <-b.done:
		return
	case err := <-closeChan:
		if err != nil {
			b.logger.Error("Event bus connection lost", zap.Error(err))
			metrics.UpdateBusConnections("connected", 0)
			metrics.UpdateBusConnections("disconnected", 1)
			b.attemptReconnect()
		}
	}
}

func (b *BusForwarder) attemptReconnect() {
	b.logger.Info("Attempting to reconnect to event bus...")

	b.mutex.Lock()
	b.connection = nil
	b.channel = nil
	b.mutex.Unlock()

	for {
		select {
		case <-b.done:
			return
		default:
			if err := b.Connect(); err != nil {
				b.logger.Error("Failed to reconnect to event bus", zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}
			b.logger.Info("Successfully reconnected to event bus")
			return
		}
	}
}
