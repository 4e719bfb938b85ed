package usecase

import (
	"context"
	"errors"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const msgProfileRetrieved = "Profile retrieved successfully"

func (u *profileUsecase) GetByOwner(ctx context.Context, ownerID string) (*domain.OperationResult, error) {
	if view := u.cachedView(ctx, ownerID); view != nil {
		return &domain.OperationResult{Message: msgProfileRetrieved, Data: view}, nil
	}

	account, err := u.identity.accounts.GetByID(ctx, ownerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Persistence(err)
	}
	view, err := u.buildView(ctx, ownerID, account)
	if err != nil {
		return nil, err
	}
	return &domain.OperationResult{Message: msgProfileRetrieved, Data: view}, nil
}

func (u *profileUsecase) GetByUserName(ctx context.Context, userName string) (*domain.OperationResult, error) {
	account, err := u.identity.accountByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if view := u.cachedView(ctx, account.ID); view != nil {
		return &domain.OperationResult{Message: msgProfileRetrieved, Data: view}, nil
	}
	view, err := u.buildView(ctx, account.ID, account)
	if err != nil {
		return nil, err
	}
	return &domain.OperationResult{Message: msgProfileRetrieved, Data: view}, nil
}

// buildView loads the profile and its accepted connections. account may be
// nil when the owner's account record is gone.
func (u *profileUsecase) buildView(ctx context.Context, ownerID string, account *domain.Account) (*domain.ProfileView, error) {
	profile, err := u.loadProfile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Persistence(err)
	}

	view := &domain.ProfileView{
		Profile:      profile,
		FollowingIDs: []string{},
		FollowerIDs:  []string{},
	}
	if account != nil {
		view.User = account.Summary()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		following, err := u.connections.List(gctx, domain.ConnectionFilter{
			FollowerID: ownerID,
			Status:     domain.ConnectionAccepted,
		})
		if err != nil {
			return err
		}
		for _, c := range following {
			view.FollowingIDs = append(view.FollowingIDs, c.FollowingID)
		}
		return nil
	})
	g.Go(func() error {
		followers, err := u.connections.List(gctx, domain.ConnectionFilter{
			FollowingID: ownerID,
			Status:      domain.ConnectionAccepted,
		})
		if err != nil {
			return err
		}
		for _, c := range followers {
			view.FollowerIDs = append(view.FollowerIDs, c.FollowerID)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Log.Error("connection lookup failed", "owner_id", ownerID, "error", err)
		return nil, apperror.Persistence(err)
	}

	if err := u.cache.Set(ctx, ownerID, view); err != nil {
		logger.Log.Warn("profile cache set failed", "owner_id", ownerID, "error", err)
	}
	return view, nil
}

func (u *profileUsecase) cachedView(ctx context.Context, ownerID string) *domain.ProfileView {
	view, err := u.cache.Get(ctx, ownerID)
	if err != nil {
		logger.Log.Warn("profile cache get failed", "owner_id", ownerID, "error", err)
		return nil
	}
	return view
}
