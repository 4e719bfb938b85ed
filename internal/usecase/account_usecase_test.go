package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/repository/memory"
	"go-profile-backend/internal/usecase"
	"go-profile-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureAccount(t *testing.T) {
	ctx := context.Background()

	newAccounts := func() (domain.AccountUsecase, *memory.AccountStore, *memory.ProfileStore) {
		accounts := memory.NewAccountStore()
		profiles := memory.NewProfileStore()
		profileUC := usecase.NewProfileUsecase(profiles, nil, accounts, memory.NewConnectionStore(), nil)
		return usecase.NewAccountUsecase(accounts, profileUC), accounts, profiles
	}

	t.Run("Should create account and seed profile on first sight", func(t *testing.T) {
		uc, _, profiles := newAccounts()
		account, err := uc.EnsureAccount(ctx, domain.TokenIdentity{
			Subject: "sub-1", Email: "Jane.Doe@Example.com", FirstName: "Jane", LastName: "Doe",
		})
		require.NoError(t, err)
		assert.Equal(t, "jane.doe", account.UserName)
		assert.Equal(t, "jane.doe@example.com", account.Email)

		p, err := profiles.GetByOwnerID(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, "jane.doe", p.PersonalInfo()["userName"])
		assert.NotContains(t, p.PersonalInfo(), "journeyType")
	})

	t.Run("Should suffix a taken user name", func(t *testing.T) {
		uc, _, _ := newAccounts()
		_, err := uc.EnsureAccount(ctx, domain.TokenIdentity{Subject: "sub-1", Email: "sam@a.com", FirstName: "Sam", LastName: "One"})
		require.NoError(t, err)
		second, err := uc.EnsureAccount(ctx, domain.TokenIdentity{Subject: "sub-2", Email: "sam@b.com", FirstName: "Sam", LastName: "Two"})
		require.NoError(t, err)
		assert.Equal(t, "sam1", second.UserName)
	})

	t.Run("Should return the existing account untouched", func(t *testing.T) {
		uc, accounts, _ := newAccounts()
		require.NoError(t, accounts.Create(ctx, &domain.Account{ID: "sub-1", UserName: "kept", Email: "k@e.com"}))

		account, err := uc.EnsureAccount(ctx, domain.TokenIdentity{Subject: "sub-1", Email: "other@e.com"})
		require.NoError(t, err)
		assert.Equal(t, "kept", account.UserName)
	})

	t.Run("Should refuse an empty subject", func(t *testing.T) {
		uc, _, _ := newAccounts()
		_, err := uc.EnsureAccount(ctx, domain.TokenIdentity{Email: "a@b.com"})
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	})
}

func TestEnsureAccountStoreFailure(t *testing.T) {
	accounts := new(MockAccountRepo)
	uc := usecase.NewAccountUsecase(accounts, nil)
	ctx := context.Background()

	accounts.On("GetByID", ctx, "sub-1").Return(nil, errors.New("pool closed"))

	_, err := uc.EnsureAccount(ctx, domain.TokenIdentity{Subject: "sub-1"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetAccount(t *testing.T) {
	uc := usecase.NewAccountUsecase(memory.NewAccountStore(), nil)
	_, err := uc.GetAccount(context.Background(), "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
