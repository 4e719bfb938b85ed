package usecase

import (
	"context"
	"errors"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
)

func (u *profileUsecase) DeleteProfile(ctx context.Context, ownerID string) (*domain.OperationResult, error) {
	if err := u.profiles.Delete(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		logger.Log.Error("profile delete failed", "owner_id", ownerID, "error", err)
		return nil, apperror.Persistence(err)
	}
	u.invalidate(ctx, ownerID)
	logger.Log.Info("profile deleted", "owner_id", ownerID)
	return &domain.OperationResult{Message: "Profile deleted successfully"}, nil
}

func (u *profileUsecase) SeedProfile(ctx context.Context, account *domain.Account) error {
	_, err := u.loadProfile(ctx, account.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return apperror.Persistence(err)
	}

	info := domain.Fields{}
	resolveIdentity(nil, nil, account).applyTo(info)
	if journey := journeyTypeForEmail(account.Email); journey != "" {
		info["journeyType"] = journey
	}

	profile := domain.NewProfile(account.ID, u.now())
	profile.SetSection(domain.SectionPersonalInfo, info)
	if err := u.persist(ctx, profile, true, sectionLocalWrite); err != nil {
		// lost a race with another seed or an upsert
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil
		}
		return err
	}
	logger.Log.Info("profile seeded", "owner_id", account.ID)
	return nil
}
