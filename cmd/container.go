package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Abraxas-365/rms/internal/ai/textgen"
	"github.com/Abraxas-365/rms/pkg/fsx"
	"github.com/Abraxas-365/rms/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/rms/pkg/logx"
	"github.com/Abraxas-365/rms/resolver/rms/rmsapi"
	"github.com/Abraxas-365/rms/resolver/rms/rmsinfra"
	"github.com/Abraxas-365/rms/resolver/rms/rmssrv"
	"github.com/Abraxas-365/rms/resolver/rms/worker"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Services
	ResolverService *rmssrv.Service
	ParseWorker     *worker.ParseWorker

	// API Handlers
	ResolverHandlers *rmsapi.ResolverHandlers
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. AWS S3 Configuration
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(cfg)
	c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "resolver")
}

func (c *Container) initServices() {
	// --- Model client ---
	genClient := textgen.NewClient(textgen.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("RMS_MODEL"),
	})

	// --- Infrastructure adapters ---
	responseCache := rmsinfra.NewRedisResponseCache(c.Redis)
	jobQueue := rmsinfra.NewRedisQueue(c.Redis, "rms:parse_jobs")
	jobRepo := rmsinfra.NewPostgresJobRepository(c.DB)

	// --- Resolver service ---
	c.ResolverService = rmssrv.NewService(
		genClient,
		responseCache,
		jobRepo,
		jobQueue,
		c.FileSystem,
		rmssrv.DefaultConfig(),
	)

	// --- Background workers ---
	workers := 3
	if v := os.Getenv("RMS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}
	c.ParseWorker = worker.NewParseWorker(c.ResolverService, jobQueue, jobRepo, workers)

	// --- Handlers ---
	c.ResolverHandlers = rmsapi.NewResolverHandlers(c.ResolverService, c.FileSystem)
}
