package domain

import (
	"context"
	"time"
)

// Account is the identity record a Profile belongs to. Its name and email
// are only read as fallbacks when personalInfo is resolved.
type Account struct {
	ID        string    `json:"id"` // token subject
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		UserName:  a.UserName,
	}
}

// TokenIdentity is what a verified access token says about its bearer.
type TokenIdentity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	UserName  string
}

type AccountRepository interface {
	// GetByID and GetByUserName return ErrNotFound when nothing matches.
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByUserName(ctx context.Context, userName string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UserNameExists(ctx context.Context, userName string) (bool, error)
}

type AccountUsecase interface {
	// EnsureAccount returns the account for identity, creating it and seeding
	// its profile on first sight.
	EnsureAccount(ctx context.Context, identity TokenIdentity) (*Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
}
