package memory

import (
	"context"
	"sync"
	"time"

	"go-profile-backend/internal/domain"

	"github.com/google/uuid"
)

// ConnectionStore is a read-mostly edge list. Add exists for seeding and
// tests; the social graph itself is owned by another service.
type ConnectionStore struct {
	mu    sync.RWMutex
	edges []domain.Connection
}

func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{}
}

var _ domain.ConnectionRepository = (*ConnectionStore)(nil)

func (s *ConnectionStore) Add(followerID, followingID string, status domain.ConnectionStatus) domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Connection{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	s.edges = append(s.edges, c)
	return c
}

func (s *ConnectionStore) List(ctx context.Context, filter domain.ConnectionFilter) ([]domain.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Connection{}
	for _, c := range s.edges {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
