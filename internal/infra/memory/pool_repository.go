package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"kidvoice-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches content pools from a backing store (files, DB).
type PoolLoader interface {
	LoadQuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error)
	LoadChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error)
}

// PoolRepository caches pools with TTL to avoid repeated loads. Pools
// are static content, so stale reads within the TTL are fine.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu         sync.RWMutex
	questions  map[string]cachedPool[domain.QuestionItem]
	challenges map[string]cachedPool[domain.ChallengeItem]
}

type cachedPool[T any] struct {
	items     []T
	expiresAt time.Time
}

func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader:     loader,
		ttl:        ttl,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		questions:  make(map[string]cachedPool[domain.QuestionItem]),
		challenges: make(map[string]cachedPool[domain.ChallengeItem]),
	}
}

func (r *PoolRepository) QuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.questions[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.items, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("questions:"+name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.questions[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.items, nil
		}
		r.mu.RUnlock()

		items, err := r.loader.LoadQuestionPool(ctx, name)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.questions[name] = cachedPool[domain.QuestionItem]{
			items:     items,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionItem), nil
}

func (r *PoolRepository) ChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.challenges[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.items, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("challenges:"+name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.challenges[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.items, nil
		}
		r.mu.RUnlock()

		items, err := r.loader.LoadChallengePool(ctx, name)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.challenges[name] = cachedPool[domain.ChallengeItem]{
			items:     items,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ChallengeItem), nil
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader serves pools from in-memory maps (tests/demos).
type StaticPoolLoader struct {
	questions  map[string][]domain.QuestionItem
	challenges map[string][]domain.ChallengeItem
}

func NewStaticPoolLoader(questions map[string][]domain.QuestionItem, challenges map[string][]domain.ChallengeItem) *StaticPoolLoader {
	return &StaticPoolLoader{questions: questions, challenges: challenges}
}

func (l *StaticPoolLoader) LoadQuestionPool(_ context.Context, name string) ([]domain.QuestionItem, error) {
	if items, ok := l.questions[name]; ok {
		return items, nil
	}
	return nil, domain.ErrPoolNotFound
}

func (l *StaticPoolLoader) LoadChallengePool(_ context.Context, name string) ([]domain.ChallengeItem, error) {
	if items, ok := l.challenges[name]; ok {
		return items, nil
	}
	return nil, domain.ErrPoolNotFound
}
