package rmqconsumer

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyThumbnail = "thumbnail.generate"

	// HeaderAttempt counts failed processing attempts of one job.
	HeaderAttempt   = "x-attempt"
	HeaderLastError = "x-last-error"
)

// Declarer is the subset of *amqp091.Channel needed to declare the topology.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// Topology is the exchange/queue layout shared by publisher and consumer.
// Failed jobs are parked in the retry queue until their TTL expires, then
// dead-lettered back to the exchange under the main routing key.
type Topology struct {
	Exchange     string
	ExchangeType string
	Queue        string
	RetryDelay   time.Duration
}

func (t Topology) RetryQueue() string { return t.Queue + ".retry" }
func (t Topology) DeadQueue() string  { return t.Queue + ".dead" }

func (t Topology) Declare(ch Declarer) error {
	if err := ch.ExchangeDeclare(
		t.Exchange,
		t.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(
		t.Queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare %s: %w", t.Queue, err)
	}
	if err := ch.QueueBind(
		t.Queue,
		RoutingKeyThumbnail,
		t.Exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue bind %s: %w", t.Queue, err)
	}
	if _, err := ch.QueueDeclare(
		t.RetryQueue(),
		true,
		false,
		false,
		false,
		amqp091.Table{
			"x-message-ttl":             t.RetryDelay.Milliseconds(),
			"x-dead-letter-exchange":    t.Exchange,
			"x-dead-letter-routing-key": RoutingKeyThumbnail,
		},
	); err != nil {
		return fmt.Errorf("queue declare %s: %w", t.RetryQueue(), err)
	}
	if _, err := ch.QueueDeclare(
		t.DeadQueue(),
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare %s: %w", t.DeadQueue(), err)
	}

	return nil
}
