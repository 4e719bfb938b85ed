package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

var _ domain.AccountRepository = (*AccountStore)(nil)

func (s *AccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// GetByUserName matches user names case-insensitively.
func (s *AccountStore) GetByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.UserName, userName) {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return apperror.Conflict("Account already exists")
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.UserName, account.UserName) {
			return apperror.Conflict("Username already taken")
		}
		if account.Email != "" && strings.EqualFold(a.Email, account.Email) {
			return apperror.Conflict("Account with this email already exists")
		}
	}
	s.accounts[account.ID] = *account
	return nil
}

func (s *AccountStore) UserNameExists(ctx context.Context, userName string) (bool, error) {
	_, err := s.GetByUserName(ctx, userName)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
