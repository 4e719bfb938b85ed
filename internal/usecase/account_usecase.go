package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
)

// maxUserNameAttempts bounds the numeric suffixes tried on a taken user name.
const maxUserNameAttempts = 20

var userNameStrip = regexp.MustCompile(`[^a-z0-9._-]+`)

type accountUsecase struct {
	accounts domain.AccountRepository
	profiles domain.ProfileUsecase
}

func NewAccountUsecase(accounts domain.AccountRepository, profiles domain.ProfileUsecase) domain.AccountUsecase {
	return &accountUsecase{accounts: accounts, profiles: profiles}
}

func (u *accountUsecase) EnsureAccount(ctx context.Context, identity domain.TokenIdentity) (*domain.Account, error) {
	if identity.Subject == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	existing, err := u.accounts.GetByID(ctx, identity.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Persistence(err)
	}

	userName, err := u.availableUserName(ctx, identity)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	account := &domain.Account{
		ID:        identity.Subject,
		FirstName: strings.TrimSpace(identity.FirstName),
		LastName:  strings.TrimSpace(identity.LastName),
		Email:     strings.ToLower(strings.TrimSpace(identity.Email)),
		UserName:  userName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.accounts.Create(ctx, account); err != nil {
		if apperror.KindOf(err) != apperror.KindConflict {
			return nil, apperror.Persistence(err)
		}
		// created concurrently by another request for the same subject
		existing, getErr := u.accounts.GetByID(ctx, identity.Subject)
		if getErr != nil {
			return nil, apperror.Persistence(err)
		}
		return existing, nil
	}
	logger.Log.Info("account created", "user_id", account.ID, "user_name", account.UserName)

	if err := u.profiles.SeedProfile(ctx, account); err != nil {
		logger.Log.Error("profile seed failed", "user_id", account.ID, "error", err)
		return nil, err
	}
	return account, nil
}

func (u *accountUsecase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Persistence(err)
	}
	return account, nil
}

// availableUserName uses the claimed user name, or the email local part,
// adding a numeric suffix until it is free.
func (u *accountUsecase) availableUserName(ctx context.Context, identity domain.TokenIdentity) (string, error) {
	base := baseUserName(identity)
	for i := 0; i < maxUserNameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		taken, err := u.accounts.UserNameExists(ctx, candidate)
		if err != nil {
			return "", apperror.Persistence(err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.Conflict("Could not allocate a unique username")
}

func baseUserName(identity domain.TokenIdentity) string {
	raw := identity.UserName
	if raw == "" {
		raw, _, _ = strings.Cut(identity.Email, "@")
	}
	name := userNameStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	if len(name) < 3 {
		name = "user" + name
	}
	return name
}
