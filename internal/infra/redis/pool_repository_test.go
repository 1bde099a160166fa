package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"kidvoice-service/internal/domain"
)

type countingLoader struct {
	questions      map[string][]domain.QuestionItem
	challenges     map[string][]domain.ChallengeItem
	questionCalls  int
	challengeCalls int
}

func (l *countingLoader) LoadQuestionPool(_ context.Context, name string) ([]domain.QuestionItem, error) {
	l.questionCalls++
	if items, ok := l.questions[name]; ok {
		return items, nil
	}
	return nil, domain.ErrPoolNotFound
}

func (l *countingLoader) LoadChallengePool(_ context.Context, name string) ([]domain.ChallengeItem, error) {
	l.challengeCalls++
	if items, ok := l.challenges[name]; ok {
		return items, nil
	}
	return nil, domain.ErrPoolNotFound
}

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestQuestionPoolCachesInRedis(t *testing.T) {
	client := newTestClient(t)
	loader := &countingLoader{
		questions: map[string][]domain.QuestionItem{
			"violence_ecole": {
				{ID: 0, Prompt: "Q ?", Options: []string{"A", "B"}, Answer: "A"},
			},
		},
	}
	repo := NewPoolRepository(client, loader, time.Minute)

	ctx := context.Background()
	first, err := repo.QuestionPool(ctx, "violence_ecole")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if len(first) != 1 || first[0].Answer != "A" {
		t.Fatalf("unexpected pool %+v", first)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected one loader call, got %d", loader.questionCalls)
	}

	second, err := repo.QuestionPool(ctx, "violence_ecole")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if loader.questionCalls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.questionCalls)
	}
	if len(second) != 1 || second[0].Prompt != first[0].Prompt {
		t.Fatalf("cached pool differs: %+v", second)
	}

	if exists := client.Exists(ctx, "pool:questions:violence_ecole").Val(); exists != 1 {
		t.Fatalf("expected cached key in redis")
	}
}

func TestChallengePoolCachesInRedis(t *testing.T) {
	client := newTestClient(t)
	loader := &countingLoader{
		challenges: map[string][]domain.ChallengeItem{
			"challenges": {
				{ID: 1, Description: "Dis bonjour"},
				{ID: 2, Description: "Aide un ami"},
			},
		},
	}
	repo := NewPoolRepository(client, loader, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		items, err := repo.ChallengePool(ctx, "challenges")
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
	}
	if loader.challengeCalls != 1 {
		t.Fatalf("expected one loader call, got %d", loader.challengeCalls)
	}
}

func TestQuestionPoolMissPropagates(t *testing.T) {
	client := newTestClient(t)
	repo := NewPoolRepository(client, &countingLoader{}, time.Minute)
	if _, err := repo.QuestionPool(context.Background(), "absent"); err != domain.ErrPoolNotFound {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}
