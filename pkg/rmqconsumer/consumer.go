package rmqconsumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"files-manager-api/config"
)

const (
	OutcomeOK      = "ok"
	OutcomeRetry   = "retry"
	OutcomeDead    = "dead"
	OutcomeDropped = "dropped"
)

var (
	ErrDeliveryClosed = errors.New("delivery channel closed")
	ErrHandlerPanic   = errors.New("handler panicked")
)

// Handler processes one message body. Returning an error wrapped with
// Permanent drops the message; any other error schedules a retry.
type Handler func(ctx context.Context, body []byte) error

type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Consumer struct {
	topo       Topology
	wcfg       config.Worker
	log        *zap.Logger
	handler    Handler
	counter    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	pub        publisher
	chDelivery <-chan amqp091.Delivery
}

func New(
	topo Topology,
	wcfg config.Worker,
	logger *zap.Logger,
	handler Handler,
	counter *prometheus.CounterVec,
	duration *prometheus.HistogramVec,
) *Consumer {
	if wcfg.Concurrency < 1 {
		wcfg.Concurrency = 1
	}
	if wcfg.MaxAttempts < 1 {
		wcfg.MaxAttempts = 1
	}
	return &Consumer{
		topo:     topo,
		wcfg:     wcfg,
		log:      logger,
		handler:  handler,
		counter:  counter,
		duration: duration,
	}
}

func (c *Consumer) Connect(dsn string) error {
	conn, err := amqp091.Dial(dsn)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	c.conn, c.chConsume, c.pub = conn, ch, ch

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.topo.Declare(c.chConsume); err != nil {
		return err
	}

	// prefetch matches the worker pool so no delivery waits unacked in a buffer
	if err := c.chConsume.Qos(c.wcfg.Concurrency, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.topo.Queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

// DeliveryWorker fans deliveries out to Concurrency goroutines and blocks
// until ctx is done or the broker closes the delivery channel.
func (c *Consumer) DeliveryWorker(ctx context.Context) error {
	c.log.Info("starting delivery worker", zap.Int("concurrency", c.wcfg.Concurrency))

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	var (
		wg     sync.WaitGroup
		closed = make(chan struct{}, c.wcfg.Concurrency)
	)
	for i := 0; i < c.wcfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case msg, ok := <-c.chDelivery:
					if !ok {
						closed <- struct{}{}
						return
					}
					c.handle(ctx, msg)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()

	if c.chConsume != nil {
		_ = c.chConsume.Close()
	}
	if len(closed) > 0 && ctx.Err() == nil {
		return ErrDeliveryClosed
	}

	return nil
}

func (c *Consumer) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, c.wcfg.JobTimeout)
	err := c.run(jobCtx, msg.Body)
	cancel()

	outcome := c.settle(ctx, msg, err)
	c.observe(outcome, time.Since(start))
}

// run turns a handler panic into an ordinary failure so the attempt is
// counted and the message still reaches the dead queue eventually.
func (c *Consumer) run(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return c.handler(ctx, body)
}

func (c *Consumer) settle(ctx context.Context, msg amqp091.Delivery, err error) string {
	log := c.log.With(zap.String("message_id", msg.MessageId))

	switch {
	case err == nil:
		c.ack(log, msg)
		return OutcomeOK
	case IsPermanent(err):
		log.Warn("dropping job", zap.Error(err))
		c.ack(log, msg)
		return OutcomeDropped
	}

	failures := Attempts(msg.Headers) + 1
	queue, outcome := c.topo.RetryQueue(), OutcomeRetry
	if failures >= c.wcfg.MaxAttempts {
		queue, outcome = c.topo.DeadQueue(), OutcomeDead
	}

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderAttempt] = int32(failures)
	headers[HeaderLastError] = err.Error()

	if perr := c.pub.PublishWithContext(ctx, "", queue, false, false, amqp091.Publishing{
		ContentType:  msg.ContentType,
		DeliveryMode: amqp091.Persistent,
		MessageId:    msg.MessageId,
		Timestamp:    msg.Timestamp,
		Headers:      headers,
		Body:         msg.Body,
	}); perr != nil {
		log.Error("republish failed, requeueing", zap.String("queue", queue), zap.Error(perr))
		if nerr := msg.Nack(false, true); nerr != nil {
			log.Error("nack failed", zap.Error(nerr))
		}
		return OutcomeRetry
	}

	if outcome == OutcomeDead {
		log.Error("job dead-lettered", zap.Int("attempts", failures), zap.Error(err))
	} else {
		log.Warn("job failed, scheduled retry", zap.Int("attempts", failures), zap.Error(err))
	}
	c.ack(log, msg)

	return outcome
}

func (c *Consumer) ack(log *zap.Logger, msg amqp091.Delivery) {
	if err := msg.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
}

func (c *Consumer) observe(outcome string, d time.Duration) {
	if c.counter != nil {
		c.counter.WithLabelValues("job_" + outcome).Inc()
	}
	if c.duration != nil {
		c.duration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// Attempts reads the failure count carried in the message headers.
func Attempts(h amqp091.Table) int {
	switch v := h[HeaderAttempt].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
