package postgres

import (
	"context"
	"fmt"
	"strings"

	"go-profile-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type connectionRepo struct {
	db *pgxpool.Pool
}

func NewConnectionRepository(db *pgxpool.Pool) domain.ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) List(ctx context.Context, filter domain.ConnectionFilter) ([]domain.Connection, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.FollowerID != "" {
		conditions = append(conditions, fmt.Sprintf("follower_id = $%d", argIndex))
		args = append(args, filter.FollowerID)
		argIndex++
	}
	if filter.FollowingID != "" {
		conditions = append(conditions, fmt.Sprintf("following_id = $%d", argIndex))
		args = append(args, filter.FollowingID)
		argIndex++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(filter.Status))
	}

	query := `SELECT id::text, follower_id, following_id, status, created_at
              FROM connections
              WHERE ` + strings.Join(conditions, " AND ") + `
              ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	connections := []domain.Connection{}
	for rows.Next() {
		var c domain.Connection
		var status string
		if err := rows.Scan(&c.ID, &c.FollowerID, &c.FollowingID, &status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.ConnectionStatus(status)
		connections = append(connections, c)
	}
	return connections, rows.Err()
}
