package domain

import (
	"context"
	"time"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
)

// Connection is a directed follow edge. The social graph is maintained
// elsewhere; profiles only read accepted edges.
type Connection struct {
	ID          string           `json:"id"`
	FollowerID  string           `json:"followerId"`
	FollowingID string           `json:"followingId"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ConnectionFilter matches edges by follower, following and status. Empty
// fields match anything.
type ConnectionFilter struct {
	FollowerID  string
	FollowingID string
	Status      ConnectionStatus
}

func (f ConnectionFilter) Matches(c Connection) bool {
	if f.FollowerID != "" && c.FollowerID != f.FollowerID {
		return false
	}
	if f.FollowingID != "" && c.FollowingID != f.FollowingID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return true
}

type ConnectionRepository interface {
	List(ctx context.Context, filter ConnectionFilter) ([]Connection, error)
}
