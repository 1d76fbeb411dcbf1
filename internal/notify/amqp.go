package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storefront/internal/logging"
)

var ErrNoChannel = errors.New("notify: no amqp channel available")

// ChannelPool keeps a fixed set of channels on one connection, each with the
// notification queue declared.
type ChannelPool struct {
	conn     *amqp.Connection
	channels chan *amqp.Channel
	mu       sync.Mutex
	closed   bool
	queue    string
	logger   *zap.Logger
}

func NewChannelPool(url, queue string, size int, logger *zap.Logger) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	pool := &ChannelPool{
		conn:     conn,
		channels: make(chan *amqp.Channel, size),
		queue:    queue,
		logger:   logging.OrNop(logger).Named("amqp"),
	}
	for i := 0; i < size; i++ {
		ch, err := pool.open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open channel %d: %w", i, err)
		}
		pool.channels <- ch
	}
	pool.logger.Info("amqp channel pool ready", zap.Int("size", size), zap.String("queue", queue))
	return pool, nil
}

func (p *ChannelPool) open() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %q: %w", p.queue, err)
	}
	return ch, nil
}

// Acquire takes a channel from the pool, waiting until one is free or ctx ends.
// Closed channels are replaced.
func (p *ChannelPool) Acquire(ctx context.Context) (*amqp.Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, ErrNoChannel
		}
		if ch.IsClosed() {
			return p.open()
		}
		return ch, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNoChannel, ctx.Err())
	}
}

// Release returns a channel to the pool.
func (p *ChannelPool) Release(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		ch.Close()
		return
	}
	select {
	case p.channels <- ch:
	default:
		ch.Close()
	}
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.channels)
	for ch := range p.channels {
		ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// AMQPSender publishes events as persistent JSON messages on the default
// exchange, routed to the notification queue.
type AMQPSender struct {
	pool  *ChannelPool
	queue string
}

func NewAMQPSender(pool *ChannelPool, queue string) *AMQPSender {
	return &AMQPSender{pool: pool, queue: queue}
}

func (s *AMQPSender) Name() string { return "amqp" }

func (s *AMQPSender) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(ch)

	err = ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         event.Kind,
		MessageId:    event.OrderID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}
	return nil
}

func (s *AMQPSender) Close() error {
	s.pool.Close()
	return nil
}
