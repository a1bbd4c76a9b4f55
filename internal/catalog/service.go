package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gearplanner/internal/gear"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	commonGearKey = "catalog:common-gear"
	articlesKey   = "catalog:articles"
	articleKey    = "catalog:article:"
)

// Source is the upstream the catalog reads through to.
type Source interface {
	CommonGear(ctx context.Context) ([]gear.CommonGearItem, error)
	Articles(ctx context.Context) ([]gear.Article, error)
	Article(ctx context.Context, articleID string) (gear.Article, error)
}

// Service serves read-only catalog data. With a redis client, validated
// upstream responses are cached for ttl; cache failures fall back to the source.
type Service struct {
	src   Source
	redis *redis.Client
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewService(src Source, redisClient *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{src: src, redis: redisClient, ttl: ttl, log: log}
}

func (s *Service) CommonGear(ctx context.Context) ([]gear.CommonGearItem, error) {
	return readThrough(ctx, s, commonGearKey, s.src.CommonGear)
}

func (s *Service) Articles(ctx context.Context) ([]gear.Article, error) {
	return readThrough(ctx, s, articlesKey, s.src.Articles)
}

func (s *Service) Article(ctx context.Context, articleID string) (gear.Article, error) {
	if articleID == "" {
		return s.src.Article(ctx, articleID)
	}
	return readThrough(ctx, s, articleKey+articleID, func(ctx context.Context) (gear.Article, error) {
		return s.src.Article(ctx, articleID)
	})
}

func readThrough[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	if s.redis == nil {
		return fetch(ctx)
	}

	raw, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.log.Warnw("dropping unreadable catalog cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		s.log.Warnw("catalog cache read failed", "key", key, "error", err)
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := s.redis.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
		s.log.Warnw("catalog cache write failed", "key", key, "error", err)
	}
	return value, nil
}
