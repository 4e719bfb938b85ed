package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/repository/memory"
	"go-profile-backend/internal/usecase"
	"go-profile-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Profile, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepo) Save(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepo) ReplaceSection(ctx context.Context, ownerID string, section domain.SectionName, value any, at time.Time) (*domain.Profile, error) {
	args := m.Called(ctx, ownerID, section, value, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) MergeSectionFields(ctx context.Context, ownerID string, section domain.SectionName, fields domain.Fields, at time.Time) (*domain.Profile, error) {
	args := m.Called(ctx, ownerID, section, fields, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Delete(ctx context.Context, ownerID string) error {
	return m.Called(ctx, ownerID).Error(0)
}

type MockProfileCache struct {
	mock.Mock
}

func (m *MockProfileCache) Get(ctx context.Context, ownerID string) (*domain.ProfileView, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileView), args.Error(1)
}

func (m *MockProfileCache) Set(ctx context.Context, ownerID string, view *domain.ProfileView) error {
	return m.Called(ctx, ownerID, view).Error(0)
}

func (m *MockProfileCache) Invalidate(ctx context.Context, ownerID string) error {
	return m.Called(ctx, ownerID).Error(0)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepo) UserNameExists(ctx context.Context, userName string) (bool, error) {
	args := m.Called(ctx, userName)
	return args.Bool(0), args.Error(1)
}

func TestPersistenceErrorsKeepDetail(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := usecase.NewProfileUsecase(repo, nil, memory.NewAccountStore(), memory.NewConnectionStore(), nil)
	ctx := context.Background()

	t.Run("Should surface store failure text on section replace", func(t *testing.T) {
		repo.On("ReplaceSection", ctx, "user-1", domain.SectionProfileSummary, "hello", mock.AnythingOfType("time.Time")).
			Return(nil, errors.New("connection reset by peer")).Once()

		_, err := uc.ReplaceSection(ctx, "user-1", domain.SectionProfileSummary, "hello")
		require.Error(t, err)
		assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
		assert.Equal(t, "connection reset by peer", err.Error())
		assert.EqualError(t, errors.Unwrap(err), "connection reset by peer")
	})

	t.Run("Should map missing profile to not found on media update", func(t *testing.T) {
		repo.On("MergeSectionFields", ctx, "user-1", domain.SectionPersonalInfo,
			domain.Fields{"profileImage": "https://cdn.example.com/a.jpg"}, mock.AnythingOfType("time.Time")).
			Return(nil, domain.ErrNotFound).Once()

		_, err := uc.UpdateMedia(ctx, "user-1", domain.ProfileMedia{ProfileImage: "https://cdn.example.com/a.jpg"})
		require.Error(t, err)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		assert.Equal(t, "Profile not found", err.Error())
	})

	t.Run("Should reject media update without any url", func(t *testing.T) {
		_, err := uc.UpdateMedia(ctx, "user-1", domain.ProfileMedia{})
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
	})

	repo.AssertExpectations(t)
}

func TestUpsertWithoutAccount(t *testing.T) {
	repo := new(MockProfileRepo)
	accounts := new(MockAccountRepo)
	uc := usecase.NewProfileUsecase(repo, nil, accounts, memory.NewConnectionStore(), nil)
	ctx := context.Background()

	accounts.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

	_, err := uc.UpsertProfile(ctx, "ghost", domain.Fields{"profileSummary": "hi"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "User not found", err.Error())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCacheInvalidation(t *testing.T) {
	cache := new(MockProfileCache)
	accounts := memory.NewAccountStore()
	require.NoError(t, accounts.Create(context.Background(), &domain.Account{
		ID: "user-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", UserName: "ada",
	}))
	uc := usecase.NewProfileUsecase(memory.NewProfileStore(), nil, accounts, memory.NewConnectionStore(), cache)
	ctx := context.Background()

	t.Run("Should invalidate after a write even when the cache is failing", func(t *testing.T) {
		cache.On("Invalidate", ctx, "user-1").Return(errors.New("redis down")).Once()

		_, err := uc.ReplaceSection(ctx, "user-1", domain.SectionProfileSummary, "hello")
		assert.NoError(t, err)
	})

	t.Run("Should serve cached view without touching the store", func(t *testing.T) {
		cached := &domain.ProfileView{Profile: domain.NewProfile("user-9", time.Now())}
		cache.On("Get", ctx, "user-9").Return(cached, nil).Once()

		res, err := uc.GetByOwner(ctx, "user-9")
		require.NoError(t, err)
		assert.Same(t, cached, res.Data)
	})

	t.Run("Should fill the cache on a miss", func(t *testing.T) {
		cache.On("Get", ctx, "user-1").Return(nil, nil).Once()
		cache.On("Set", ctx, "user-1", mock.AnythingOfType("*domain.ProfileView")).Return(nil).Once()

		res, err := uc.GetByOwner(ctx, "user-1")
		require.NoError(t, err)
		view := res.Data.(*domain.ProfileView)
		summary, _ := view.Profile.Section(domain.SectionProfileSummary)
		assert.Equal(t, "hello", summary)
	})

	cache.AssertExpectations(t)
}
