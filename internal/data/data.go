package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	attachbiz "github.com/sitedesk/inspection-backend/internal/attachment/biz"
	attachdata "github.com/sitedesk/inspection-backend/internal/attachment/data"
	"github.com/sitedesk/inspection-backend/internal/conf"
	"github.com/sitedesk/inspection-backend/internal/pkg/database"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	pkgminio "github.com/sitedesk/inspection-backend/internal/pkg/minio"
	sitedata "github.com/sitedesk/inspection-backend/internal/site/data"
)

// Data bundles the external resources of the service
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	MinIOClient *pkgminio.Client
	Logger      *logger.Logger
}

// NewData connects to PostgreSQL, Redis and MinIO and provisions the
// per-entity-type photo buckets
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := db.AutoMigrate(
		&attachdata.AttachmentPO{},
		&sitedata.SitePO{},
		&sitedata.ContactPO{},
		&sitedata.BuildingPO{},
	); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr(),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	minioClient, err := pkgminio.NewClient(&config.MinIO, log.Logger)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	// One photo bucket per entity type; uploads for an unknown type fail at
	// the store rather than being validated away in the pipeline.
	for _, entityType := range attachbiz.KnownEntityTypes() {
		bucket := attachbiz.BucketFor(entityType)
		if err := minioClient.EnsureBucket(context.Background(), bucket, pkgminio.MakeBucketOptions{}); err != nil {
			db.Close()
			redisClient.Close()
			return nil, nil, fmt.Errorf("failed to ensure bucket %s: %w", bucket, err)
		}
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		MinIOClient: minioClient,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Warn("failed to close database: " + err.Error())
		}
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client: " + err.Error())
		}
		minioClient.Close()
	}

	return d, cleanup, nil
}
