package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	RoleAPI    = "api"
	RoleWorker = "worker"
	RoleAll    = "all"

	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		Role      string
		JobSecret string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Blob struct {
		Backend string
		Root    string
		S3      S3
	}
	S3 struct {
		Region          string
		Endpoint        string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Worker struct {
		Concurrency int
		MaxAttempts int
		RetryDelay  time.Duration
		JobTimeout  time.Duration
	}
	Reconcile struct {
		Schedule   string
		StaleAfter time.Duration
	}

	Config struct {
		App       APP
		DB        DB
		Redis     Redis
		Blob      Blob
		MQ        MQ
		Worker    Worker
		Reconcile Reconcile
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func Load() Config {
	app := APP{
		Name:      getEnv("SERVICE_NAME", "filesmanager"),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", "5000"),
		Env:       getEnv("SERVICE_ENV", ""),
		Role:      getEnv("SERVICE_ROLE", RoleAll),
		JobSecret: getEnv("SERVICE_JOB_SECRET", ""),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	rds := Redis{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
	blob := Blob{
		Backend: getEnv("BLOB_BACKEND", BlobBackendLocal),
		Root:    getEnv("FOLDER_PATH", "/tmp/files_manager"),
		S3: S3{
			Region:          getEnv("S3_REGION", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			BucketUploads:   getEnv("S3_BUCKET_UPLOADS", ""),
		},
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "files"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "thumbnails"),
	}
	worker := Worker{
		Concurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		MaxAttempts: getEnvInt("WORKER_MAX_ATTEMPTS", 5),
		RetryDelay:  getEnvDuration("WORKER_RETRY_DELAY", 30*time.Second),
		JobTimeout:  getEnvDuration("WORKER_JOB_TIMEOUT", time.Minute),
	}
	reconcile := Reconcile{
		Schedule:   getEnv("RECONCILE_SCHEDULE", "@every 5m"),
		StaleAfter: getEnvDuration("RECONCILE_STALE_AFTER", 2*time.Minute),
	}

	return Config{
		App:       app,
		DB:        db,
		Redis:     rds,
		Blob:      blob,
		MQ:        mq,
		Worker:    worker,
		Reconcile: reconcile,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

func (c Config) RedisAddr() (string, error) {
	if c.Redis.Host == "" || c.Redis.Port == "" {
		return "", fmt.Errorf("invalid redis config: host and port are required")
	}
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port), nil
}

// RunsAPI and RunsWorker let the same binary be deployed as a pure HTTP
// node, a pure thumbnail worker, or both.
func (c Config) RunsAPI() bool {
	return c.App.Role == RoleAPI || c.App.Role == RoleAll
}

func (c Config) RunsWorker() bool {
	return c.App.Role == RoleWorker || c.App.Role == RoleAll
}
