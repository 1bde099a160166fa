package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kidvoice-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolLoader loads content pool JSONB documents from Postgres. Rows use
// the same array shapes as the on-disk JSON pools.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

func (l *PoolLoader) LoadQuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error) {
	raw, err := l.load(ctx, name, "questions")
	if err != nil {
		return nil, err
	}
	var docs []struct {
		Prompt  string   `json:"question"`
		Options []string `json:"options"`
		Answer  string   `json:"answer"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: pool %q: %v", domain.ErrPoolDecode, name, err)
	}
	items := make([]domain.QuestionItem, 0, len(docs))
	for i, doc := range docs {
		items = append(items, domain.QuestionItem{
			ID:      i,
			Prompt:  doc.Prompt,
			Options: doc.Options,
			Answer:  doc.Answer,
		})
	}
	return items, nil
}

func (l *PoolLoader) LoadChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error) {
	raw, err := l.load(ctx, name, "challenges")
	if err != nil {
		return nil, err
	}
	var items []domain.ChallengeItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: pool %q: %v", domain.ErrPoolDecode, name, err)
	}
	return items, nil
}

func (l *PoolLoader) load(ctx context.Context, name, kind string) ([]byte, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM content_pools WHERE name=$1 AND kind=$2`, name, kind).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", domain.ErrPoolNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load pool %q: %w", name, err)
	}
	return raw, nil
}
