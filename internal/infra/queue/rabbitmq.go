package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("events publisher is not configured")
	ErrClosed        = errors.New("events publisher is closed")
	errNoChannel     = errors.New("events channel is not available")
)

const (
	redialMin = time.Second
	redialMax = 30 * time.Second
)

// tableCarrier lets the OpenTelemetry propagator read and write AMQP headers.
type tableCarrier struct {
	table amqp.Table
}

func (c tableCarrier) Get(key string) string {
	switch v := c.table[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (c tableCarrier) Set(key, value string) { c.table[key] = value }

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}

// DialFunc opens a fresh broker connection.
type DialFunc func() (*amqp.Connection, error)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends lifecycle events to a topic exchange. When the broker drops
// the connection it redials in the background; publishes in the meantime fail
// fast.
type Publisher struct {
	log      *zap.Logger
	tracer   trace.Tracer
	exchange string
	dial     DialFunc

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     channel
	closed bool
	done   chan struct{}
}

// Connect dials the broker configured under events.url. It returns a nil
// publisher when events are not configured.
func Connect(cfg *config.Config, log *zap.Logger) (*Publisher, error) {
	if cfg.Events.URL == "" {
		return nil, nil
	}
	dial := func() (*amqp.Connection, error) { return amqp.Dial(cfg.Events.URL) }
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	p, err := NewPublisher(conn, log, cfg, dial)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func NewPublisher(conn *amqp.Connection, log *zap.Logger, cfg *config.Config, dial DialFunc) (*Publisher, error) {
	ch, err := openChannel(conn, cfg.Events.Exchange)
	if err != nil {
		return nil, err
	}
	p := newPublisher(ch, log, cfg.App.Name, cfg.Events.Exchange)
	p.conn = conn
	p.dial = dial
	go p.keepAlive(conn)
	return p, nil
}

func newPublisher(ch channel, log *zap.Logger, service, exchange string) *Publisher {
	return &Publisher{
		log:      log,
		tracer:   otel.Tracer(service),
		exchange: exchange,
		ch:       ch,
		done:     make(chan struct{}),
	}
}

func openChannel(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return ch, nil
}

// keepAlive waits for conn to drop, then swaps in a redialed connection.
// It returns once the publisher is closed.
func (p *Publisher) keepAlive(conn *amqp.Connection) {
	for {
		lost := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-p.done:
			return
		case reason := <-lost:
			if reason != nil {
				p.log.Warn("event broker connection lost", zap.String("reason", reason.Reason), zap.Int("code", reason.Code))
			} else {
				p.log.Warn("event broker connection closed")
			}
		}

		p.mu.Lock()
		p.ch = nil
		p.mu.Unlock()

		next, ok := p.redial()
		if !ok {
			return
		}
		conn = next
	}
}

func (p *Publisher) redial() (*amqp.Connection, bool) {
	wait := redialMin
	for {
		select {
		case <-p.done:
			return nil, false
		default:
		}
		conn, err := p.dial()
		if err == nil {
			var ch *amqp.Channel
			if ch, err = openChannel(conn, p.exchange); err == nil {
				if p.swap(conn, ch) {
					p.log.Info("event broker reconnected")
					return conn, true
				}
				ch.Close()
				conn.Close()
				return nil, false
			}
			conn.Close()
		}

		p.log.Warn("event broker redial failed", zap.Duration("retry_in", wait), zap.Error(err))
		select {
		case <-p.done:
			return nil, false
		case <-time.After(wait):
		}
		wait = min(wait*2, redialMax)
	}
}

func (p *Publisher) swap(conn *amqp.Connection, ch channel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.conn, p.ch = conn, ch
	return true
}

func (p *Publisher) channel() (channel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.closed:
		return nil, ErrClosed
	case p.ch == nil:
		return nil, errNoChannel
	}
	return p.ch, nil
}

// Close stops the redial loop and releases the channel and connection.
// Calling it more than once is a no-op.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// PublishJSON publishes body to the events exchange under routingKey. The
// current trace context travels in the message headers.
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	if p == nil {
		return ErrNotConfigured
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	b, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}

	ctx, span := p.tracer.Start(ctx, "rabbitmq.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", p.exchange),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
			attribute.Int("messaging.message.body.size", len(b)),
		))
	defer span.End()

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier{table: headers})

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
		Headers:      headers,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}
