package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"files-manager-api/config"
	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/application/services"
	"files-manager-api/internal/infrastructure/blob"
	"files-manager-api/internal/infrastructure/db/postgres"
	"files-manager-api/internal/infrastructure/db/postgres/file"
	"files-manager-api/internal/infrastructure/db/postgres/user"
	"files-manager-api/internal/infrastructure/jwt"
	"files-manager-api/internal/infrastructure/metrics"
	"files-manager-api/internal/infrastructure/mq"
	"files-manager-api/internal/infrastructure/session"
	"files-manager-api/internal/interface/api/rest"
	"files-manager-api/internal/interface/api/rest/middleware"
	"files-manager-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	rdb        *redis.Client
	blobs      ports.BlobStore
	signer     *jwt.Service
	httpSrv    *http.Server
	router     *gin.Engine
	cron       *cron.Cron
	mCounter   *prometheus.CounterVec
	mJobs      *prometheus.HistogramVec
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	topo       rmqconsumer.Topology
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}

	// config
	if err = godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()
	if cfg.App.JobSecret == "" {
		return nil, errors.New("SERVICE_JOB_SECRET is required")
	}
	if !cfg.RunsAPI() && !cfg.RunsWorker() {
		return nil, fmt.Errorf("unknown SERVICE_ROLE %q", cfg.App.Role)
	}

	// metrics
	mCounter := metrics.NewCounter(prometheus.DefaultRegisterer)
	mJobs := metrics.NewJobHistogram(prometheus.DefaultRegisterer)

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		return nil, fmt.Errorf("DB config error: %w", err)
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		return nil, err
	}
	if err = postgres.Migrate(ctx, logger, dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	// redis
	redisAddr, err := cfg.RedisAddr()
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("redis config error: %w", err)
	}
	rdb, err := session.Connect(ctx, logger, redisAddr, cfg.Redis)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	// blobs
	blobs, err := newBlobStore(ctx, logger, cfg.Blob)
	if err != nil {
		dbPool.Close()
		_ = rdb.Close()
		return nil, err
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		dbPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("RabbitMQ config error: %w", err)
	}
	topo := rmqconsumer.Topology{
		Exchange:     cfg.MQ.Exchange,
		ExchangeType: cfg.MQ.ExchangeType,
		Queue:        cfg.MQ.QueueName,
		RetryDelay:   cfg.Worker.RetryDelay,
	}
	signer := jwt.New(cfg.App.JobSecret)
	rbMQ := mq.New(topo, signer, logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		dbPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	if err = rbMQ.Init(); err != nil {
		dbPool.Close()
		_ = rdb.Close()
		_ = rbMQ.Close()
		return nil, fmt.Errorf("failed init rabbitMQ: %w", err)
	}

	return &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		rdb:      rdb,
		blobs:    blobs,
		signer:   signer,
		httpSrv:  httpSrv,
		router:   r,
		cron:     cron.New(),
		mCounter: mCounter,
		mJobs:    mJobs,
		mq:       rbMQ,
		topo:     topo,
	}, nil
}

func newBlobStore(ctx context.Context, logger *zap.Logger, cfg config.Blob) (ports.BlobStore, error) {
	switch cfg.Backend {
	case config.BlobBackendLocal:
		local, err := blob.NewLocal(cfg.Root, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	case config.BlobBackendS3:
		s3, err := blob.NewS3(ctx, logger, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.Backend)
	}
}

func (a *App) Close() {
	if a.mqConsumer != nil {
		_ = a.mqConsumer.Close()
	}
	if a.mq != nil {
		_ = a.mq.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Init wires repositories, services and, depending on the role, the HTTP
// controllers and the thumbnail consumer.
func (a *App) Init(ctx context.Context) error {
	// repos
	userRepo := user.NewRepository(a.db)
	fileRepo := file.NewRepository(a.db)

	// services
	sessions := session.New(a.rdb)
	authService := services.NewAuthService(userRepo, sessions, a.logger, a.mCounter)
	userService := services.NewUserService(userRepo, a.logger, a.mCounter)
	fileService := services.NewFileService(fileRepo, a.blobs, a.mq, a.logger, a.mCounter)
	statusService := services.NewStatusService(sessions, a.db, userRepo, fileRepo)

	if a.cfg.RunsAPI() {
		rest.NewAuthController(a.router, a.logger, authService)
		rest.NewUserController(a.router, userService, authService, a.logger)
		rest.NewFileController(a.router, fileService, authService, a.logger)
		rest.NewOpsController(a.router, statusService, prometheus.DefaultGatherer, a.logger)
	}

	if !a.cfg.RunsWorker() {
		return nil
	}

	thumbnails := services.NewThumbnailService(fileRepo, a.blobs, a.signer, a.logger, a.mCounter)
	consumer := rmqconsumer.New(a.topo, a.cfg.Worker, a.logger, thumbnails.HandleMessage, a.mCounter, a.mJobs)
	rabbitDsn, err := a.cfg.AMQPDSN()
	if err != nil {
		return err
	}
	if err = consumer.Connect(rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect rabbitMQ consumer: %w", err)
	}
	a.mqConsumer = consumer
	if err = consumer.Init(); err != nil {
		return fmt.Errorf("failed to init rabbitMQ consumer: %w", err)
	}

	reconciler := services.NewReconciler(fileRepo, a.mq, a.logger, a.mCounter, a.cfg.Reconcile.StaleAfter)
	if _, err = reconciler.Schedule(ctx, a.cron, a.cfg.Reconcile.Schedule); err != nil {
		return err
	}

	return nil
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.RunsAPI() {
		g.Go(func() error {
			a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
			if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
			}

			return nil
		})
	}

	if a.cfg.RunsWorker() {
		g.Go(func() error {
			return a.mqConsumer.DeliveryWorker(ctx)
		})

		a.cron.Start()
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.cfg.RunsAPI() {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}
	if a.cfg.RunsWorker() {
		select {
		case <-a.cron.Stop().Done():
		case <-shutdownCtx.Done():
			a.logger.Warn("reconciler did not stop in time")
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) Logger() *zap.Logger { return a.logger }
