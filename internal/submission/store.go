package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/redis"
)

// Store persists a seller's draft between requests.
type Store interface {
	Load(ctx context.Context, userID string) (*Draft, error)
	Save(ctx context.Context, userID string, draft *Draft) error
	Clear(ctx context.Context, userID string) error
}

// RedisStore keeps drafts in Redis under the per-user draft key with a
// sliding TTL: every save renews the expiry.
type RedisStore struct {
	client *redis.Client
	logg   *logger.Logger
	ttl    time.Duration
}

// NewRedisStore builds the production draft store.
func NewRedisStore(client *redis.Client, logg *logger.Logger, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft ttl must be positive")
	}
	return &RedisStore{client: client, logg: logg, ttl: ttl}, nil
}

// Load restores the user's draft. A missing draft, a stale schema version
// or an undecodable payload all fall back to a fresh draft so a seller is
// never locked out of the workflow by old state.
func (s *RedisStore) Load(ctx context.Context, userID string) (*Draft, error) {
	raw, err := s.client.Get(ctx, s.client.DraftKey(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewDraft(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	draft, ok := decodeDraft([]byte(raw))
	if !ok {
		s.logg.Warn(ctx, "stored draft is stale or undecodable, starting fresh")
	}
	return draft, nil
}

// decodeDraft restores a stored draft. Undecodable payloads and stale
// schema versions yield a fresh draft instead of an error.
func decodeDraft(raw []byte) (*Draft, bool) {
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return NewDraft(), false
	}
	if draft.Version != draftSchemaVersion || !draft.Step.IsValid() {
		return NewDraft(), false
	}
	if draft.Completed == nil {
		draft.Completed = []Step{}
	}
	return &draft, true
}

// Save serializes the draft and renews its expiry.
func (s *RedisStore) Save(ctx context.Context, userID string, draft *Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode draft")
	}
	if err := s.client.Set(ctx, s.client.DraftKey(userID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	return nil
}

// Clear removes the persisted draft.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.client.DraftKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear draft")
	}
	return nil
}

// MemoryStore is a process-local draft store used in tests.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[string]*Draft{}}
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft, ok := s.drafts[userID]; ok {
		copied := *draft
		copied.Completed = append([]Step{}, draft.Completed...)
		return &copied, nil
	}
	return NewDraft(), nil
}

func (s *MemoryStore) Save(ctx context.Context, userID string, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	copied.Completed = append([]Step{}, draft.Completed...)
	s.drafts[userID] = &copied
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}

// Has reports whether a draft is persisted for the user.
func (s *MemoryStore) Has(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[userID]
	return ok
}
