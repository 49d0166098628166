// Package bootstrap assembles storage backends from configuration. Both the API
// server and the admin CLI build their stores here.
package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/blob"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Stores holds the selected backends.
type Stores struct {
	Postgres    *persistence.Postgres
	Redis       *persistence.Redis
	Complaints  repository.ComplaintRepository
	Profiles    repository.ProfileRepository
	History     repository.ComplaintHistoryRepository
	Attachments blob.Store
	Avatars     blob.Store
}

// Close releases connections.
func (s *Stores) Close() {
	s.Redis.Close()
	s.Postgres.Close()
}

// Open connects to Postgres and Redis when configured and falls back to in-memory
// stores otherwise.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	rdb := persistence.NewRedis(cfg.Redis, logger)

	stores := &Stores{Postgres: pg, Redis: rdb}
	if pg.Enabled() {
		stores.Complaints = repository.NewComplaintRepository(pg.PoolHandle(), nil)
		stores.Profiles = repository.NewProfileRepository(pg.PoolHandle())
		stores.History = repository.NewComplaintHistoryRepository(pg.PoolHandle())
	} else {
		stores.Complaints = repository.NewInMemoryComplaintRepository(nil)
		stores.Profiles = repository.NewInMemoryProfileRepository()
		stores.History = repository.NewInMemoryComplaintHistoryRepository()
	}
	stores.Profiles = repository.NewCachedProfileRepository(stores.Profiles, rdb.Client, cfg.Redis.ProfileCacheTTL(), logger)

	stores.Attachments, stores.Avatars, err = openBlobStores(ctx, cfg.Storage, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}
	return stores, nil
}

func openBlobStores(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (blob.Store, blob.Store, error) {
	if cfg.AttachmentsBucket == "" && cfg.AvatarsBucket == "" {
		logger.Warn("no storage buckets configured; keeping uploads in memory")
		return blob.NewMemoryStore("memory://attachments"), blob.NewMemoryStore("memory://avatars"), nil
	}

	client, err := blob.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var attachments, avatars blob.Store
	if cfg.AttachmentsBucket != "" {
		attachments = blob.NewS3Store(client, cfg.AttachmentsBucket, cfg.Region, cfg.PublicBaseURL)
	} else {
		attachments = blob.NewMemoryStore("memory://attachments")
	}
	if cfg.AvatarsBucket != "" {
		avatars = blob.NewS3Store(client, cfg.AvatarsBucket, cfg.Region, cfg.PublicBaseURL)
	} else {
		avatars = blob.NewMemoryStore("memory://avatars")
	}
	logger.Info("using s3 blob storage",
		zap.String("attachments_bucket", cfg.AttachmentsBucket),
		zap.String("avatars_bucket", cfg.AvatarsBucket))
	return attachments, avatars, nil
}
