package mq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"files-manager-api/internal/domain/file"
	"files-manager-api/pkg/rmqconsumer"
)

const ContentTypeJWT = "application/jwt"

var ErrNacked = errors.New("broker rejected publish")

type Signer interface {
	SignJob(job file.Job) (string, error)
}

// RabbitMQ publishes derivation jobs on a confirm-mode channel: Enqueue
// returns only after the broker has taken responsibility for the message.
type RabbitMQ struct {
	topo   rmqconsumer.Topology
	log    *zap.Logger
	signer Signer
	conn   *amqp091.Connection
	pubCh  *amqp091.Channel
	mu     sync.Mutex
	now    func() time.Time
}

func New(topo rmqconsumer.Topology, signer Signer, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		topo:   topo,
		log:    logger,
		signer: signer,
		now:    time.Now,
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "filesmanagerapi",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	b := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		conn, err := amqp091.DialConfig(dsn, amqpCfg)
		if err != nil {
			var amqpErr *amqp091.Error
			if errors.As(err, &amqpErr) {
				return err
			}
			if _, uerr := amqp091.ParseURI(dsn); uerr != nil {
				return uerr
			}
			r.log.Warn("rabbitmq dial failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		r.conn = conn
		return nil
	})
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	r.log.Info("rabbitmq connected successfully")

	return nil
}

func (r *RabbitMQ) Init() error {
	if err := r.topo.Declare(r.pubCh); err != nil {
		_ = r.pubCh.Close()
		return err
	}
	if err := r.pubCh.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}

	return nil
}

func (r *RabbitMQ) Enqueue(ctx context.Context, job file.Job) error {
	pub, err := r.publishing(job)
	if err != nil {
		return err
	}

	r.mu.Lock()
	confirm, err := r.pubCh.PublishWithDeferredConfirmWithContext(
		ctx,
		r.topo.Exchange,
		rmqconsumer.RoutingKeyThumbnail,
		false,
		false,
		pub,
	)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !ok {
		return ErrNacked
	}

	return nil
}

func (r *RabbitMQ) publishing(job file.Job) (amqp091.Publishing, error) {
	token, err := r.signer.SignJob(job)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("sign job: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  ContentTypeJWT,
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    r.now(),
		Type:         rmqconsumer.RoutingKeyThumbnail,
		Body:         []byte(token),
	}, nil
}

func (r *RabbitMQ) Close() error {
	if r.conn == nil {
		return nil
	}
	if r.pubCh != nil {
		_ = r.pubCh.Close()
	}
	return r.conn.Close()
}
