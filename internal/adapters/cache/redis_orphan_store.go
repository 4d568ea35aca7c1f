package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
	redisclient "github.com/Eih3/walking/internal/infrastructure/clients/redis"
	"github.com/Eih3/walking/internal/infrastructure/observability"
)

const (
	// OrphanedImagesKey is the Redis list holding orphaned image records, newest first.
	OrphanedImagesKey = "landmark:orphaned_images"

	maxOrphanedImages = 10000
	defaultListLimit  = 100
)

// RedisOrphanStore implements OrphanedImageStore on a capped Redis list
type RedisOrphanStore struct {
	client   *redisclient.Client
	now      func() time.Time
	capacity int64
}

// NewRedisOrphanStore creates a new Redis-backed orphaned image ledger
func NewRedisOrphanStore(client *redisclient.Client) providers.OrphanedImageStore {
	return &RedisOrphanStore{
		client:   client,
		now:      time.Now,
		capacity: maxOrphanedImages,
	}
}

// Record pushes the orphan onto the ledger, filling in id and timestamp
func (s *RedisOrphanStore) Record(ctx context.Context, orphan entities.OrphanedImage) error {
	if orphan.ID == "" {
		orphan.ID = uuid.New().String()
	}
	if orphan.RecordedAt.IsZero() {
		orphan.RecordedAt = s.now().UTC()
	}

	payload, err := json.Marshal(orphan)
	if err != nil {
		return fmt.Errorf("failed to encode orphaned image: %w", err)
	}

	pipe := s.client.Client().TxPipeline()
	pipe.LPush(ctx, OrphanedImagesKey, payload)
	pipe.LTrim(ctx, OrphanedImagesKey, 0, s.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record orphaned image: %w", err)
	}
	return nil
}

// List returns up to limit orphans, newest first. Entries that fail to
// decode are logged and skipped without counting against limit.
func (s *RedisOrphanStore) List(ctx context.Context, limit int64) ([]entities.OrphanedImage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	orphans := make([]entities.OrphanedImage, 0)
	start := int64(0)
	for int64(len(orphans)) < limit {
		stop := start + limit - int64(len(orphans)) - 1
		raw, err := s.client.Client().LRange(ctx, OrphanedImagesKey, start, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list orphaned images: %w", err)
		}
		if len(raw) == 0 {
			break
		}

		for i, item := range raw {
			var orphan entities.OrphanedImage
			if err := json.Unmarshal([]byte(item), &orphan); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Int64("index", start+int64(i)).
					Msg("skipping malformed orphaned image entry")
				continue
			}
			orphans = append(orphans, orphan)
		}
		start = stop + 1
	}
	return orphans, nil
}
