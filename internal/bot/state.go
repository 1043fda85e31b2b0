package bot

import (
	"context"
	"fmt"
	"net/url"

	"printcalc/internal/pricing"
	"printcalc/internal/storage/redis"
)

type sessionStore interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error)
	SetUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error
	DropUserDialogState(ctx context.Context, chatID int64) error
}

// StateStorage keeps the chat session: the chosen product and the order as a
// share query string.
type StateStorage struct {
	store sessionStore
}

func NewStateStorage(store sessionStore) *StateStorage {
	return &StateStorage{store: store}
}

func (s *StateStorage) Get(ctx context.Context, chatID int64) (*redis.UserState, error) {
	state, err := s.store.GetUserDialogState(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("bot.StateStorage.Get: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state *redis.UserState) error {
	if err := s.store.SetUserDialogState(ctx, chatID, state); err != nil {
		return fmt.Errorf("bot.StateStorage.Save: %w", err)
	}
	return nil
}

func (s *StateStorage) SetStep(ctx context.Context, chatID int64, step string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	state.Step = step
	return s.Save(ctx, chatID, state)
}

// StartProduct begins a fresh order for p.
func (s *StateStorage) StartProduct(ctx context.Context, chatID int64, p pricing.Product) error {
	return s.Save(ctx, chatID, &redis.UserState{Step: StepConfigure, Product: string(p)})
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.store.DropUserDialogState(ctx, chatID); err != nil {
		return fmt.Errorf("bot.StateStorage.Clear: %w", err)
	}
	return nil
}

// values returns the stored order query. A corrupted query restarts from the
// product defaults.
func values(state *redis.UserState) url.Values {
	q, err := url.ParseQuery(state.Query)
	if err != nil {
		return url.Values{}
	}
	return q
}
