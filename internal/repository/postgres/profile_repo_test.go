package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/repository/postgres"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		if err := database.Migrate(dsn); err != nil {
			fmt.Printf("Failed to migrate test database: %v\n", err)
			os.Exit(1)
		}
		pool, err := database.NewPostgresConnection(context.Background(), dsn)
		if err != nil {
			fmt.Printf("Failed to connect to test database: %v\n", err)
			os.Exit(1)
		}
		testPool = pool
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

func newAccount(t *testing.T) *domain.Account {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	account := &domain.Account{
		ID: id, FirstName: "Ada", LastName: "Lovelace",
		Email: id + "@example.com", UserName: "u" + id[:8],
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewAccountRepository(testPool).Create(context.Background(), account))
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM profiles WHERE owner_id = $1`, id)
		_, _ = testPool.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, id)
	})
	return account
}

func TestProfileStoreSections(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	store := postgres.NewProfileStore(testPool)
	account := newAccount(t)
	now := time.Now().UTC()

	p, err := store.ReplaceSection(ctx, account.ID, domain.SectionProfileSummary, "hello", now)
	require.NoError(t, err)
	summary, _ := p.Section(domain.SectionProfileSummary)
	assert.Equal(t, "hello", summary)

	_, err = store.ReplaceSection(ctx, account.ID, domain.SectionInterests, []any{"go"}, now)
	require.NoError(t, err)

	p, err = store.MergeSectionFields(ctx, account.ID, domain.SectionPersonalInfo, domain.Fields{"profileImage": "https://x/y.jpg"}, now)
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.jpg", p.PersonalInfo()["profileImage"])
	summary, _ = p.Section(domain.SectionProfileSummary)
	assert.Equal(t, "hello", summary)
	interests, _ := p.Section(domain.SectionInterests)
	assert.Equal(t, []any{"go"}, interests)

	_, err = store.MergeSectionFields(ctx, uuid.NewString(), domain.SectionPersonalInfo, domain.Fields{"a": "b"}, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStoreItems(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	store := postgres.NewProfileStore(testPool)
	account := newAccount(t)
	now := time.Now().UTC()

	_, err := store.AppendItem(ctx, account.ID, domain.SectionProjects, domain.Fields{"_id": "a", "title": "A"}, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	profile := domain.NewProfile(account.ID, now)
	require.NoError(t, store.Create(ctx, profile))
	err = store.Create(ctx, domain.NewProfile(account.ID, now))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	first, second := domain.NewItemID(), domain.NewItemID()
	_, err = store.AppendItem(ctx, account.ID, domain.SectionProjects, domain.Fields{"_id": first, "title": "A", "url": "https://a"}, now)
	require.NoError(t, err)
	_, err = store.AppendItem(ctx, account.ID, domain.SectionProjects, domain.Fields{"_id": second, "title": "B"}, now)
	require.NoError(t, err)

	p, err := store.PatchItem(ctx, account.ID, domain.SectionProjects, first, domain.Fields{"title": "A2"}, now)
	require.NoError(t, err)
	item := domain.AsFields(p.Collection(domain.SectionProjects)[0])
	assert.Equal(t, "A2", item["title"])
	assert.Equal(t, "https://a", item["url"])
	assert.Equal(t, first, item["_id"])

	_, err = store.PatchItem(ctx, account.ID, domain.SectionProjects, domain.NewItemID(), domain.Fields{"title": "Z"}, now)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	p, err = store.RemoveItem(ctx, account.ID, domain.SectionProjects, first, now)
	require.NoError(t, err)
	items := p.Collection(domain.SectionProjects)
	require.Len(t, items, 1)
	assert.Equal(t, second, domain.ItemIDOf(items[0]))

	p, err = store.RemoveItem(ctx, account.ID, domain.SectionProjects, second, now)
	require.NoError(t, err)
	assert.Empty(t, p.Collection(domain.SectionProjects))

	_, err = store.ReplaceSection(ctx, account.ID, domain.SectionEducation, domain.Fields{"school": "kept"}, now)
	require.NoError(t, err)
	_, err = store.AppendItem(ctx, account.ID, domain.SectionEducation, domain.Fields{"_id": domain.NewItemID(), "school": "new"}, now)
	assert.ErrorIs(t, err, domain.ErrSectionNotList)
	p, err = store.GetByOwnerID(ctx, account.ID)
	require.NoError(t, err)
	education, _ := p.Section(domain.SectionEducation)
	assert.Equal(t, "kept", domain.AsFields(education)["school"])

	require.NoError(t, store.Delete(ctx, account.ID))
	assert.ErrorIs(t, store.Delete(ctx, account.ID), domain.ErrNotFound)
}

func TestProfileStoreRequiresAccount(t *testing.T) {
	requireDB(t)
	store := postgres.NewProfileStore(testPool)

	_, err := store.ReplaceSection(context.Background(), uuid.NewString(), domain.SectionProfileSummary, "x", time.Now())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAccountAndConnectionRepositories(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	accounts := postgres.NewAccountRepository(testPool)
	a := newAccount(t)
	b := newAccount(t)

	found, err := accounts.GetByUserName(ctx, a.UserName)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
	exists, err := accounts.UserNameExists(ctx, b.UserName)
	require.NoError(t, err)
	assert.True(t, exists)
	_, err = accounts.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = testPool.Exec(ctx, `INSERT INTO connections (follower_id, following_id, status) VALUES ($1, $2, 'accepted')`, a.ID, b.ID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM connections WHERE follower_id = $1`, a.ID)
	})

	list, err := postgres.NewConnectionRepository(testPool).List(ctx, domain.ConnectionFilter{
		FollowingID: b.ID, Status: domain.ConnectionAccepted,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].FollowerID)
}
