package events

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

var json = jsoniter.ConfigFastest

// AMQPPublisher publishes persistent JSON messages to one durable queue per event type.
type AMQPPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials url and declares the loan queues.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect is called with p.mu held or before p is shared. Any previous
// connection is closed first, even if only its channel had failed.
func (p *AMQPPublisher) connect() error {
	_ = p.closeConn()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	// Durable so messages survive broker restarts.
	for _, queue := range []string{TypeLoanBorrowed, TypeLoanReturned} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("rabbitmq declare %s: %w", queue, err)
		}
	}
	p.conn, p.ch = conn, ch
	return nil
}

// Publish sends event to the queue named by its type, reconnecting once if the
// channel was closed.
func (p *AMQPPublisher) Publish(ctx context.Context, event LoanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.LoanID,
		Type:         event.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			log.Printf("rabbitmq: reconnect failed: %v", err)
			return err
		}
	}
	if err := p.ch.PublishWithContext(ctx, "", event.Type, false, false, msg); err != nil {
		log.Printf("rabbitmq: publish %s failed: %v", event.Type, err)
		return err
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeConn()
}

func (p *AMQPPublisher) closeConn() error {
	var err error
	if p.ch != nil && !p.ch.IsClosed() {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		err = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
	return err
}
