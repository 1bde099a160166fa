package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"kidvoice-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches content pools from a backing store (files, DB).
type PoolLoader interface {
	LoadQuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error)
	LoadChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error)
}

// PoolRepository caches whole pool documents in Redis and falls back to
// a loader on cache miss.
// Documents are stored as: SET pool:questions:{name}  {json array}
//                          SET pool:challenges:{name} {json array}
type PoolRepository struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPoolRepository(client *redis.Client, loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PoolRepository) QuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error) {
	key := r.questionsKey(name)

	if items, ok := getCached[domain.QuestionItem](ctx, r.client, key); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if items, ok := getCached[domain.QuestionItem](ctx, r.client, key); ok {
			return items, nil
		}
		items, err := r.loader.LoadQuestionPool(ctx, name)
		if err != nil {
			return nil, err
		}
		r.setCached(ctx, key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionItem), nil
}

func (r *PoolRepository) ChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error) {
	key := r.challengesKey(name)

	if items, ok := getCached[domain.ChallengeItem](ctx, r.client, key); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if items, ok := getCached[domain.ChallengeItem](ctx, r.client, key); ok {
			return items, nil
		}
		items, err := r.loader.LoadChallengePool(ctx, name)
		if err != nil {
			return nil, err
		}
		r.setCached(ctx, key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ChallengeItem), nil
}

func (r *PoolRepository) setCached(ctx context.Context, key string, items any) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	// best-effort cache write
	_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
}

func getCached[T any](ctx context.Context, client *redis.Client, key string) ([]T, bool) {
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (r *PoolRepository) questionsKey(name string) string {
	return fmt.Sprintf("pool:questions:%s", name)
}

func (r *PoolRepository) challengesKey(name string) string {
	return fmt.Sprintf("pool:challenges:%s", name)
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
