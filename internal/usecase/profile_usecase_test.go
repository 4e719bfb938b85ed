package usecase_test

import (
	"context"
	"sync"
	"testing"

	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/repository/memory"
	"go-profile-backend/internal/usecase"
	"go-profile-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	uc          domain.ProfileUsecase
	profiles    *memory.ProfileStore
	accounts    *memory.AccountStore
	connections *memory.ConnectionStore
}

func newFixture(t *testing.T, atomicItems bool) *fixture {
	t.Helper()
	f := &fixture{
		profiles:    memory.NewProfileStore(),
		accounts:    memory.NewAccountStore(),
		connections: memory.NewConnectionStore(),
	}
	require.NoError(t, f.accounts.Create(context.Background(), &domain.Account{
		ID:        "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		UserName:  "ada",
	}))
	var items domain.ProfileItemStore
	if atomicItems {
		items = f.profiles
	}
	f.uc = usecase.NewProfileUsecase(f.profiles, items, f.accounts, f.connections, nil)
	return f
}

func profileOf(t *testing.T, res *domain.OperationResult) *domain.Profile {
	t.Helper()
	require.NotNil(t, res)
	p, ok := res.Data.(*domain.Profile)
	require.True(t, ok, "expected *domain.Profile, got %T", res.Data)
	return p
}

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create with identity resolved from payload then account", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"firstName": "  Grace ", "headline": "Engineer"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Profile created successfully", res.Message)

		info := profileOf(t, res).PersonalInfo()
		assert.Equal(t, "Grace", info["firstName"])
		assert.Equal(t, "Lovelace", info["lastName"])
		assert.Equal(t, "ada@example.com", info["email"])
		assert.Equal(t, "ada", info["userName"])
		assert.Equal(t, "Engineer", info["headline"])

		stored, err := f.profiles.GetByOwnerID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Grace", stored.PersonalInfo()["firstName"])
	})

	t.Run("Should merge personalInfo and leave other sections alone", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo":   domain.Fields{"firstName": "Grace", "location": "London"},
			"profileSummary": "Original",
		})
		require.NoError(t, err)
		_, err = f.uc.AddItem(ctx, "user-1", domain.SectionEducation, domain.Fields{"school": "X"})
		require.NoError(t, err)

		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"headline": "X"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Profile updated successfully", res.Message)

		p := profileOf(t, res)
		info := p.PersonalInfo()
		assert.Equal(t, "X", info["headline"])
		assert.Equal(t, "Grace", info["firstName"])
		assert.Equal(t, "London", info["location"])
		summary, _ := p.Section(domain.SectionProfileSummary)
		assert.Equal(t, "Original", summary)
		assert.Len(t, p.Collection(domain.SectionEducation), 1)
	})

	t.Run("Should reject short first name without writing", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"firstName": "A"},
		})
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Equal(t, "First name is required and must be at least 2 characters", err.Error())

		_, err = f.profiles.GetByOwnerID(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should let blank payload identity fall back to stored profile then account", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"firstName": "Grace"},
		})
		require.NoError(t, err)

		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"firstName": "   ", "lastName": " \t", "userName": "  "},
		})
		require.NoError(t, err)
		info := profileOf(t, res).PersonalInfo()
		assert.Equal(t, "Grace", info["firstName"])
		assert.Equal(t, "Lovelace", info["lastName"])
		assert.Equal(t, "ada", info["userName"])
	})

	t.Run("Should let blank payload identity fall back to the account on create", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"firstName": "   ", "userName": "  "},
		})
		require.NoError(t, err)
		info := profileOf(t, res).PersonalInfo()
		assert.Equal(t, "Ada", info["firstName"])
		assert.Equal(t, "ada", info["userName"])
	})

	t.Run("Should reject invalid email", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"personalInfo": domain.Fields{"email": "not-an-email"},
		})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Equal(t, "Valid email is required", err.Error())
	})

	t.Run("Should ignore identity fields and reject unknown sections", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{"ownerId": "someone-else", "_id": "x"})
		require.NoError(t, err)
		assert.Equal(t, "user-1", profileOf(t, res).OwnerID)

		_, err = f.uc.UpsertProfile(ctx, "user-1", domain.Fields{"hobbies": []any{"chess"}})
		assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
	})

	t.Run("Should reject a top-level userName instead of using it for identity", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"userName":     "someone",
			"personalInfo": domain.Fields{"headline": "Engineer"},
		})
		assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
		assert.Equal(t, "Invalid section: userName", err.Error())
	})

	t.Run("Should assign item ids to collections written whole", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"projects": []any{domain.Fields{"title": "A"}, domain.Fields{"title": "B"}},
		})
		require.NoError(t, err)
		items := profileOf(t, res).Collection(domain.SectionProjects)
		require.Len(t, items, 2)
		assert.True(t, domain.IsItemID(domain.ItemIDOf(items[0])))
		assert.NotEqual(t, domain.ItemIDOf(items[0]), domain.ItemIDOf(items[1]))
	})
}

func TestReplaceSection(t *testing.T) {
	ctx := context.Background()

	t.Run("Should overwrite one section and keep the rest", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{
			"workExperience": []any{domain.Fields{"title": "Dev", "company": "Acme"}},
		})
		require.NoError(t, err)

		_, err = f.uc.ReplaceSection(ctx, "user-1", domain.SectionProfileSummary, "hello")
		require.NoError(t, err)

		p, err := f.profiles.GetByOwnerID(ctx, "user-1")
		require.NoError(t, err)
		summary, _ := p.Section(domain.SectionProfileSummary)
		assert.Equal(t, "hello", summary)
		work := p.Collection(domain.SectionWorkExperience)
		require.Len(t, work, 1)
		assert.Equal(t, "Acme", domain.AsFields(work[0])["company"])
	})

	t.Run("Should create the profile without enforcing identity fields", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.ReplaceSection(ctx, "user-1", domain.SectionContactInfo, domain.Fields{"phone": "123"})
		require.NoError(t, err)
		p := profileOf(t, res)
		assert.Empty(t, p.PersonalInfo())
		contact, _ := p.Section(domain.SectionContactInfo)
		assert.Equal(t, domain.Fields{"phone": "123"}, contact)
	})

	t.Run("Should fail closed on unknown section", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.ReplaceSection(ctx, "user-1", "hobbies", "x")
		assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
	})
}

func TestReplaceArrayField(t *testing.T) {
	ctx := context.Background()

	t.Run("Should round-trip skills exactly", func(t *testing.T) {
		f := newFixture(t, false)
		skills := domain.Fields{"technical": []any{"Go"}, "soft": []any{"Leadership"}}

		res, err := f.uc.ReplaceArrayField(ctx, "user-1", domain.SectionSkills, skills)
		require.NoError(t, err)
		assert.Equal(t, "skills updated successfully", res.Message)
		assert.Equal(t, skills, res.Data)

		read, err := f.uc.GetByOwner(ctx, "user-1")
		require.NoError(t, err)
		stored, _ := read.Data.(*domain.ProfileView).Profile.Section(domain.SectionSkills)
		assert.Equal(t, skills, stored)
	})

	t.Run("Should store interest strings verbatim", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.ReplaceArrayField(ctx, "user-1", domain.SectionInterests, []string{"go", "chess"})
		require.NoError(t, err)
		assert.Equal(t, []any{"go", "chess"}, res.Data)
	})

	t.Run("Should give language items ids", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.uc.ReplaceArrayField(ctx, "user-1", domain.SectionLanguages, []any{domain.Fields{"name": "English"}})
		require.NoError(t, err)
		langs := res.Data.([]any)
		require.Len(t, langs, 1)
		assert.True(t, domain.IsItemID(domain.ItemIDOf(langs[0])))
	})

	t.Run("Should refuse sections outside the list write path", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.ReplaceArrayField(ctx, "user-1", domain.SectionEducation, []any{})
		assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
	})
}

func TestItemOperations(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []struct {
		name   string
		atomic bool
	}{{"resave", false}, {"atomic", true}} {
		t.Run(mode.name, func(t *testing.T) {
			t.Run("Should add with distinct ids and delete by id", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
				require.NoError(t, err)

				first, err := f.uc.AddItem(ctx, "user-1", domain.SectionEducation, domain.Fields{"school": "X"})
				require.NoError(t, err)
				assert.Equal(t, "Item added to education successfully", first.Message)
				res, err := f.uc.AddItem(ctx, "user-1", domain.SectionEducation, domain.Fields{"school": "Y"})
				require.NoError(t, err)

				items := profileOf(t, res).Collection(domain.SectionEducation)
				require.Len(t, items, 2)
				firstID := domain.ItemIDOf(items[0])
				assert.NotEmpty(t, firstID)
				assert.NotEqual(t, firstID, domain.ItemIDOf(items[1]))

				res, err = f.uc.DeleteItem(ctx, "user-1", domain.SectionEducation, firstID)
				require.NoError(t, err)
				assert.Equal(t, "Item deleted from education successfully", res.Message)
				items = profileOf(t, res).Collection(domain.SectionEducation)
				require.Len(t, items, 1)
				assert.Equal(t, "Y", domain.AsFields(items[0])["school"])
			})

			t.Run("Should refuse to add over a section that is not a list", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.ReplaceSection(ctx, "user-1", domain.SectionEducation, domain.Fields{"school": "kept"})
				require.NoError(t, err)

				_, err = f.uc.AddItem(ctx, "user-1", domain.SectionEducation, domain.Fields{"school": "new"})
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

				p, err := f.profiles.GetByOwnerID(ctx, "user-1")
				require.NoError(t, err)
				stored, _ := p.Section(domain.SectionEducation)
				assert.Equal(t, "kept", domain.AsFields(stored)["school"])
			})

			t.Run("Should shallow-merge an update and keep the id", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
				require.NoError(t, err)
				res, err := f.uc.AddItem(ctx, "user-1", domain.SectionWorkExperience, domain.Fields{
					"title": "Old", "company": "Acme", "location": "Remote",
				})
				require.NoError(t, err)
				id := domain.ItemIDOf(profileOf(t, res).Collection(domain.SectionWorkExperience)[0])

				res, err = f.uc.UpdateItem(ctx, "user-1", domain.SectionWorkExperience, id, domain.Fields{
					"title": "New", "_id": "hijack",
				})
				require.NoError(t, err)
				item := domain.AsFields(profileOf(t, res).Collection(domain.SectionWorkExperience)[0])
				assert.Equal(t, "New", item["title"])
				assert.Equal(t, "Acme", item["company"])
				assert.Equal(t, "Remote", item["location"])
				assert.Equal(t, id, item["_id"])
			})

			t.Run("Should report unknown item ids as not found", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
				require.NoError(t, err)
				_, err = f.uc.AddItem(ctx, "user-1", domain.SectionProjects, domain.Fields{"title": "P"})
				require.NoError(t, err)

				_, err = f.uc.DeleteItem(ctx, "user-1", domain.SectionProjects, domain.NewItemID())
				assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
				_, err = f.uc.UpdateItem(ctx, "user-1", domain.SectionProjects, "missing", domain.Fields{"title": "Q"})
				assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

				p, err := f.profiles.GetByOwnerID(ctx, "user-1")
				require.NoError(t, err)
				assert.Len(t, p.Collection(domain.SectionProjects), 1)
			})

			t.Run("Should match ids case-sensitively", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
				require.NoError(t, err)
				res, err := f.uc.AddItem(ctx, "user-1", domain.SectionProjects, domain.Fields{"title": "P"})
				require.NoError(t, err)
				id := domain.ItemIDOf(profileOf(t, res).Collection(domain.SectionProjects)[0])

				_, err = f.uc.DeleteItem(ctx, "user-1", domain.SectionProjects, upper(id))
				assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
			})

			t.Run("Should never create a profile", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.AddItem(ctx, "user-1", domain.SectionProjects, domain.Fields{"title": "P"})
				require.Error(t, err)
				assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
				assert.Equal(t, "Profile not found. Please create profile first.", err.Error())
			})

			t.Run("Should reject sections without item operations", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.AddItem(ctx, "user-1", domain.SectionSkills, domain.Fields{"name": "Go"})
				assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
				assert.Equal(t, "Invalid section: skills. Cannot add item to this section.", err.Error())
				_, err = f.uc.DeleteItem(ctx, "user-1", domain.SectionPersonalInfo, "x")
				assert.Equal(t, apperror.KindInvalidSection, apperror.KindOf(err))
			})

			t.Run("Should not lose both of two concurrent adds", func(t *testing.T) {
				f := newFixture(t, mode.atomic)
				_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
				require.NoError(t, err)

				var wg sync.WaitGroup
				start := make(chan struct{})
				errs := make([]error, 2)
				for i := range errs {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						<-start
						_, errs[i] = f.uc.AddItem(ctx, "user-1", domain.SectionProjects, domain.Fields{"title": i})
					}(i)
				}
				close(start)
				wg.Wait()

				for _, err := range errs {
					assert.NoError(t, err)
				}
				p, err := f.profiles.GetByOwnerID(ctx, "user-1")
				require.NoError(t, err)
				items := p.Collection(domain.SectionProjects)
				assert.GreaterOrEqual(t, len(items), 1)
				if mode.atomic {
					assert.Len(t, items, 2)
				}
			})
		})
	}
}

func TestItemWritesSkipAggregateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	// profile created through a section write has no personalInfo yet
	_, err := f.uc.ReplaceSection(ctx, "user-1", domain.SectionProfileSummary, "draft")
	require.NoError(t, err)

	res, err := f.uc.AddItem(ctx, "user-1", domain.SectionCertificates, domain.Fields{"name": "CKA"})
	require.NoError(t, err)
	assert.Len(t, profileOf(t, res).Collection(domain.SectionCertificates), 1)
}

func TestReadProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Should attach accepted connections only", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
		require.NoError(t, err)
		f.connections.Add("user-1", "user-2", domain.ConnectionAccepted)
		f.connections.Add("user-3", "user-1", domain.ConnectionAccepted)
		f.connections.Add("user-4", "user-1", domain.ConnectionPending)

		res, err := f.uc.GetByOwner(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Profile retrieved successfully", res.Message)
		view := res.Data.(*domain.ProfileView)
		assert.Equal(t, []string{"user-2"}, view.FollowingIDs)
		assert.Equal(t, []string{"user-3"}, view.FollowerIDs)
		require.NotNil(t, view.User)
		assert.Equal(t, "ada", view.User.UserName)
	})

	t.Run("Should return empty lists without connections", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
		require.NoError(t, err)

		res, err := f.uc.GetByUserName(ctx, "ada")
		require.NoError(t, err)
		view := res.Data.(*domain.ProfileView)
		assert.NotNil(t, view.FollowingIDs)
		assert.Empty(t, view.FollowingIDs)
		assert.Empty(t, view.FollowerIDs)
	})

	t.Run("Should report unknown handles and missing profiles", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.GetByUserName(ctx, "nobody")
		assert.Equal(t, "User not found", err.Error())

		_, err = f.uc.GetByUserName(ctx, "ada")
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		assert.Equal(t, "Profile not found", err.Error())

		_, err = f.uc.GetByOwner(ctx, "user-1")
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}

func TestProfileLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete once then report not found", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpsertProfile(ctx, "user-1", domain.Fields{})
		require.NoError(t, err)

		res, err := f.uc.DeleteProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Profile deleted successfully", res.Message)

		_, err = f.uc.DeleteProfile(ctx, "user-1")
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

		_, err = f.accounts.GetByID(ctx, "user-1")
		assert.NoError(t, err)
	})

	t.Run("Should seed personalInfo with journey type once", func(t *testing.T) {
		f := newFixture(t, false)
		account := &domain.Account{ID: "hr-1", FirstName: "Hana", LastName: "Reyes", Email: "HR@acme.io", UserName: "hr"}

		require.NoError(t, f.uc.SeedProfile(ctx, account))
		p, err := f.profiles.GetByOwnerID(ctx, "hr-1")
		require.NoError(t, err)
		info := p.PersonalInfo()
		assert.Equal(t, "Recruiter", info["journeyType"])
		assert.Equal(t, "hr@acme.io", info["email"])

		_, err = f.profiles.ReplaceSection(ctx, "hr-1", domain.SectionProfileSummary, "kept", p.LastUpdated)
		require.NoError(t, err)
		require.NoError(t, f.uc.SeedProfile(ctx, account))
		p, err = f.profiles.GetByOwnerID(ctx, "hr-1")
		require.NoError(t, err)
		summary, _ := p.Section(domain.SectionProfileSummary)
		assert.Equal(t, "kept", summary)
	})
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 32
		}
	}
	return string(out)
}
