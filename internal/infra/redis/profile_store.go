package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	keyActiveChild = "profile:prenomEnfant"
	keyChildNames  = "profile:childNames"
	keyLegacyChild = "profile:childName"
)

// ProfileStore keeps the child profile entries as plain Redis keys.
type ProfileStore struct {
	client *redis.Client
}

func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func (s *ProfileStore) ActiveChild(ctx context.Context) (string, error) {
	name, err := s.client.Get(ctx, keyActiveChild).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active child: %w", err)
	}
	return name, nil
}

func (s *ProfileStore) SetActiveChild(ctx context.Context, name string) error {
	if err := s.client.Set(ctx, keyActiveChild, name, 0).Err(); err != nil {
		return fmt.Errorf("set active child: %w", err)
	}
	return nil
}

func (s *ProfileStore) ChildNames(ctx context.Context) ([]string, error) {
	raw, err := s.client.Get(ctx, keyChildNames).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child names: %w", err)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("decode child names: %w", err)
	}
	return names, nil
}

func (s *ProfileStore) SetChildNames(ctx context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode child names: %w", err)
	}
	if err := s.client.Set(ctx, keyChildNames, raw, 0).Err(); err != nil {
		return fmt.Errorf("set child names: %w", err)
	}
	return nil
}

// MigrateLegacyKey moves the old childName entry to prenomEnfant when
// the latter is empty, then deletes the old key.
func (s *ProfileStore) MigrateLegacyKey(ctx context.Context) error {
	old, err := s.client.Get(ctx, keyLegacyChild).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get legacy child key: %w", err)
	}

	current, err := s.ActiveChild(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		if err := s.SetActiveChild(ctx, old); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, keyLegacyChild).Err(); err != nil {
		return fmt.Errorf("delete legacy child key: %w", err)
	}
	return nil
}
