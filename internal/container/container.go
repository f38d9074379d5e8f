package container

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/troopvault/tv-backend/internal/api"
	"github.com/troopvault/tv-backend/internal/audit"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/aws"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/database"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/qr"
	"github.com/troopvault/tv-backend/internal/queue"
	"github.com/troopvault/tv-backend/internal/roster"
)

type Container struct {
	Config        *config.Config
	Database      *database.Database
	Queue         *queue.TaskQueue
	RedisClient   *redis.Client
	JWTService    *auth.JWTService
	AuthService   *auth.AuthService
	Authenticator *auth.Authenticator
	Resolver      *privileges.Resolver
	Gate          *privileges.Gate
	EmailService  *aws.SESService
	S3Service     *aws.S3Service
	Payments      *qr.Generator
	Roster        *roster.Importer
	Server        *api.Server
	Worker        *queue.Worker
}

func New(cfg config.Config) (*Container, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Two separate Redis connection pools are used: the asynq task
	// queue manages its own connection, and this client is used
	// for auth state (OTP hashes, refresh tokens).
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(redisClient, jwtService, db.Store(), cfg.Auth)
	authenticator := auth.NewAuthenticator(jwtService, db.Store())

	defaults, err := privileges.NewRoleDefaults()
	if err != nil {
		// A hole in the role default table is a deploy blocker, not a
		// runtime condition.
		return nil, err
	}

	recorder := audit.NewQueueRecorder(taskQueue)

	policy := privileges.OverrideLenient
	if cfg.Privs.StrictOverrides {
		policy = privileges.OverrideStrict
	}
	resolver := privileges.NewResolver(defaults,
		privileges.WithOverridePolicy(policy),
		privileges.WithRecorder(recorder),
	)
	gate := privileges.NewGate(resolver, db.Store(), recorder)

	sesService, err := aws.NewSESService(cfg.AWS)
	if err != nil {
		return nil, err
	}

	s3Service, err := aws.NewS3Service(cfg.AWS)
	if err != nil {
		return nil, err
	}

	// localstack-specific config (buckets are not managed by app in prod)
	if cfg.AWS.EndpointURL != "" {
		if err := s3Service.CreateBucket(context.Background()); err != nil {
			logging.Info("S3 bucket creation attempted", "bucket", cfg.AWS.Bucket, "result", err)
		}
	}

	payments := qr.NewGenerator(s3Service, cfg.Server.PaymentBaseURL)
	rosterImporter := roster.NewImporter(db.Store())

	worker := queue.NewWorker(&cfg.Redis, sesService, db.Store())

	server := api.NewServer(db.Store(), authService, gate, resolver, taskQueue, payments, rosterImporter)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:        &cfg,
		Database:      db,
		Queue:         taskQueue,
		RedisClient:   redisClient,
		JWTService:    jwtService,
		AuthService:   authService,
		Authenticator: authenticator,
		Resolver:      resolver,
		Gate:          gate,
		EmailService:  sesService,
		S3Service:     s3Service,
		Payments:      payments,
		Roster:        rosterImporter,
		Server:        server,
		Worker:        worker,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
