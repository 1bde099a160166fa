// Package fs loads content pools from JSON files on disk, one file per
// named pool.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"kidvoice-service/internal/domain"
)

// PoolLoader reads {dir}/{name}.json documents. A missing file maps to
// ErrPoolNotFound and any shape mismatch to ErrPoolDecode; a failed load
// never yields a partial pool.
type PoolLoader struct {
	dir string
}

func NewPoolLoader(dir string) *PoolLoader {
	return &PoolLoader{dir: dir}
}

type questionDoc struct {
	Prompt  *string  `json:"question"`
	Options []string `json:"options"`
	Answer  *string  `json:"answer"`
}

// LoadQuestionPool parses a question pool. IDs are assigned by position.
func (l *PoolLoader) LoadQuestionPool(_ context.Context, name string) ([]domain.QuestionItem, error) {
	raw, err := l.read(name)
	if err != nil {
		return nil, err
	}

	var docs []questionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: pool %q: %v", domain.ErrPoolDecode, name, err)
	}

	items := make([]domain.QuestionItem, 0, len(docs))
	for i, doc := range docs {
		if doc.Prompt == nil || doc.Answer == nil {
			return nil, fmt.Errorf("%w: pool %q: item %d missing question or answer", domain.ErrPoolDecode, name, i)
		}
		if len(doc.Options) < 2 {
			return nil, fmt.Errorf("%w: pool %q: item %d needs at least two options", domain.ErrPoolDecode, name, i)
		}
		if !contains(doc.Options, *doc.Answer) {
			return nil, fmt.Errorf("%w: pool %q: item %d answer not among options", domain.ErrPoolDecode, name, i)
		}
		items = append(items, domain.QuestionItem{
			ID:      i,
			Prompt:  *doc.Prompt,
			Options: doc.Options,
			Answer:  *doc.Answer,
		})
	}
	return items, nil
}

type challengeDoc struct {
	ID          *int    `json:"id"`
	Description *string `json:"description"`
}

// LoadChallengePool parses a challenge pool.
func (l *PoolLoader) LoadChallengePool(_ context.Context, name string) ([]domain.ChallengeItem, error) {
	raw, err := l.read(name)
	if err != nil {
		return nil, err
	}

	var docs []challengeDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: pool %q: %v", domain.ErrPoolDecode, name, err)
	}

	items := make([]domain.ChallengeItem, 0, len(docs))
	for i, doc := range docs {
		if doc.ID == nil || doc.Description == nil {
			return nil, fmt.Errorf("%w: pool %q: item %d missing id or description", domain.ErrPoolDecode, name, i)
		}
		items = append(items, domain.ChallengeItem{ID: *doc.ID, Description: *doc.Description})
	}
	return items, nil
}

func (l *PoolLoader) read(name string) ([]byte, error) {
	path := filepath.Join(l.dir, name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", domain.ErrPoolNotFound, name)
		}
		return nil, fmt.Errorf("read pool %q: %w", name, err)
	}
	return raw, nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
