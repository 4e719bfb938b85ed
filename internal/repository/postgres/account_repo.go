package postgres

import (
	"context"
	"errors"

	"go-profile-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, first_name, last_name, email, user_name, created_at, updated_at`

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) domain.AccountRepository {
	return &accountRepo{db: db}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.UserName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(user_name) = LOWER($1)`
	return scanAccount(r.db.QueryRow(ctx, query, userName))
}

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (id, first_name, last_name, email, user_name, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.FirstName, account.LastName, account.Email, account.UserName,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "Account already exists")
	}
	return nil
}

func (r *accountRepo) UserNameExists(ctx context.Context, userName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE LOWER(user_name) = LOWER($1))`
	err := r.db.QueryRow(ctx, query, userName).Scan(&exists)
	return exists, err
}
