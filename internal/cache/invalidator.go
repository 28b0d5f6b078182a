// Package cache holds the invalidation half of the progress
// persistence adapter: derived progress/progression payloads cached by
// the read layer are dropped after every upsert. Invalidation failures
// are logged and never fail the request that triggered them.
package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/m-deepankar-singh/cultus-platform-sub006/config"
)

type Invalidator interface {
	InvalidateModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID)
	InvalidateProgression(ctx context.Context, studentID, productID uuid.UUID)
}

type redisInvalidator struct {
	client *redis.Client
}

func NewInvalidator(cfg *config.Config) Invalidator {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &redisInvalidator{client: client}
}

func (i *redisInvalidator) InvalidateModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID) {
	i.del(ctx, fmt.Sprintf("progress:%s:%s", studentID, moduleID))
}

func (i *redisInvalidator) InvalidateProgression(ctx context.Context, studentID, productID uuid.UUID) {
	i.del(ctx, fmt.Sprintf("progression:%s:%s", studentID, productID))
}

func (i *redisInvalidator) del(ctx context.Context, key string) {
	if err := i.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache invalidation failed, continuing")
	}
}
