// Package events mirrors session events onto RabbitMQ and fans them out to
// several broadcasters.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const Exchange = "session_updates"

// Channel is the slice of *amqp.Channel the publisher needs
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends session events to a topic exchange. Routing keys are
// "session.<id>" for candidate events and "dashboard.<type>" for the rest.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   Channel
}

// Dial connects to RabbitMQ and declares the exchange
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("error declaring exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

// NewPublisher wraps an already open channel
func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) publish(routingKey, msgType string, payload interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("amqp: encode %s: %v", msgType, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Type:        msgType,
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("amqp: publish %s to %s: %v", msgType, routingKey, err)
	}
}

func (p *Publisher) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	// countdown ticks stay on the websocket
	if msgType == "countdown" {
		return
	}
	p.publish("session."+sessionID, msgType, payload)
}

func (p *Publisher) BroadcastToDashboard(msgType string, payload interface{}) {
	p.publish("dashboard."+msgType, msgType, payload)
}

// DisconnectSession is a no-op; queues outlive sessions
func (p *Publisher) DisconnectSession(sessionID string) {}

// Close releases the channel and connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
