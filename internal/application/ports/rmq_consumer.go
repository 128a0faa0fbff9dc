package ports

import "context"

type RMQConsumer interface {
	Connect(dsn string) error
	Init() error
	DeliveryWorker(ctx context.Context) error
	Close() error
}

type RabbitMQ interface {
	Connect(ctx context.Context, dsn string) error
	Init() error
	JobQueue
	Close() error
}
