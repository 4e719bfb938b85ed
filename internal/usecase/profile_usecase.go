package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
)

// writeOptions controls what a write must prove about the aggregate before
// it is persisted.
type writeOptions struct {
	// EnforceFullAggregateValidity requires the stored personalInfo identity
	// fields to satisfy their invariants. Section and item writes leave it
	// off so incomplete profiles can still be edited one section at a time.
	EnforceFullAggregateValidity bool
}

var (
	fullAggregateWrite = writeOptions{EnforceFullAggregateValidity: true}
	sectionLocalWrite  = writeOptions{EnforceFullAggregateValidity: false}
)

type profileUsecase struct {
	profiles    domain.ProfileRepository
	items       domain.ProfileItemStore
	connections domain.ConnectionRepository
	cache       domain.ProfileCache
	identity    identityResolver
	now         func() time.Time
}

// NewProfileUsecase wires the profile engines. items enables store-level
// item writes; when nil, item operations load the profile, mutate it and
// save the whole document back. cache may be nil.
func NewProfileUsecase(
	profiles domain.ProfileRepository,
	items domain.ProfileItemStore,
	accounts domain.AccountRepository,
	connections domain.ConnectionRepository,
	cache domain.ProfileCache,
) domain.ProfileUsecase {
	if cache == nil {
		cache = noopCache{}
	}
	return &profileUsecase{
		profiles:    profiles,
		items:       items,
		connections: connections,
		cache:       cache,
		identity:    identityResolver{accounts: accounts},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *profileUsecase) UpsertProfile(ctx context.Context, ownerID string, payload domain.Fields) (*domain.OperationResult, error) {
	account, err := u.identity.account(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	normalized, err := domain.Normalize(payload)
	if err != nil {
		return nil, apperror.BadRequest("Invalid profile payload")
	}
	doc := domain.AsFields(normalized)

	var incoming domain.Fields
	for key, value := range doc {
		if domain.IsReservedKey(key) {
			continue
		}
		if _, ok := domain.LookupSection(domain.SectionName(key)); !ok {
			return nil, apperror.InvalidSection(fmt.Sprintf("Invalid section: %s", key))
		}
		if key == string(domain.SectionPersonalInfo) && value != nil {
			info, isObject := value.(domain.Fields)
			if !isObject {
				return nil, apperror.Validation("personalInfo must be an object")
			}
			incoming = info
		}
	}

	existing, err := u.loadProfile(ctx, ownerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Persistence(err)
	}

	now := u.now()
	var profile *domain.Profile
	if existing != nil {
		profile = existing.Clone()
	} else {
		profile = domain.NewProfile(ownerID, now)
	}

	stored := profile.PersonalInfo()
	merged := domain.Fields{}
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	resolveIdentity(incoming, stored, account).applyTo(merged)

	for key, value := range doc {
		if domain.IsReservedKey(key) || key == string(domain.SectionPersonalInfo) {
			continue
		}
		profile.SetSection(domain.SectionName(key), withItemIDs(domain.SectionName(key), value))
	}
	profile.SetSection(domain.SectionPersonalInfo, merged)
	profile.LastUpdated = now

	if err := u.persist(ctx, profile, existing == nil, fullAggregateWrite); err != nil {
		logger.Log.Warn("profile upsert failed", "owner_id", ownerID, "error", err)
		return nil, err
	}

	message := "Profile updated successfully"
	if existing == nil {
		message = "Profile created successfully"
	}
	logger.Log.Debug(message, "owner_id", ownerID)
	return &domain.OperationResult{Message: message, Data: profile}, nil
}

func (u *profileUsecase) ReplaceSection(ctx context.Context, ownerID string, section domain.SectionName, value any) (*domain.OperationResult, error) {
	if _, ok := domain.LookupSection(section); !ok {
		return nil, apperror.InvalidSection(fmt.Sprintf("Invalid section: %s", section))
	}
	profile, err := u.replace(ctx, ownerID, section, value)
	if err != nil {
		return nil, err
	}
	return &domain.OperationResult{
		Message: fmt.Sprintf("%s updated successfully", section),
		Data:    profile,
	}, nil
}

func (u *profileUsecase) ReplaceArrayField(ctx context.Context, ownerID string, field domain.SectionName, items any) (*domain.OperationResult, error) {
	spec, ok := domain.LookupSection(field)
	if !ok || !spec.ArrayReplace {
		return nil, apperror.InvalidSection(fmt.Sprintf("Invalid field: %s. Cannot replace this field as a whole list.", field))
	}
	profile, err := u.replace(ctx, ownerID, field, items)
	if err != nil {
		return nil, err
	}
	value, _ := profile.Section(field)
	return &domain.OperationResult{
		Message: fmt.Sprintf("%s updated successfully", field),
		Data:    value,
	}, nil
}

// replace overwrites one section with a single field-scoped store update.
// The value is stored as given; shape checks belong to the caller.
func (u *profileUsecase) replace(ctx context.Context, ownerID string, section domain.SectionName, value any) (*domain.Profile, error) {
	normalized, err := domain.Normalize(value)
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid value for %s", section))
	}
	profile, err := u.profiles.ReplaceSection(ctx, ownerID, section, withItemIDs(section, normalized), u.now())
	if err != nil {
		logger.Log.Error("section replace failed", "owner_id", ownerID, "section", section, "error", err)
		return nil, storeError(err, "Profile not found")
	}
	u.invalidate(ctx, ownerID)
	logger.Log.Debug("section replaced", "owner_id", ownerID, "section", section)
	return profile, nil
}

func (u *profileUsecase) UpdateMedia(ctx context.Context, ownerID string, media domain.ProfileMedia) (*domain.OperationResult, error) {
	fields := domain.Fields{}
	if media.ProfileImage != "" {
		fields["profileImage"] = media.ProfileImage
	}
	if media.ProfileCover != "" {
		fields["profileCover"] = media.ProfileCover
	}
	if len(fields) == 0 {
		return nil, apperror.BadRequest("No media provided")
	}

	profile, err := u.profiles.MergeSectionFields(ctx, ownerID, domain.SectionPersonalInfo, fields, u.now())
	if err != nil {
		logger.Log.Error("media update failed", "owner_id", ownerID, "error", err)
		return nil, storeError(err, "Profile not found")
	}
	u.invalidate(ctx, ownerID)
	return &domain.OperationResult{Message: "Media updated successfully", Data: profile}, nil
}

func (u *profileUsecase) loadProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	profile, err := u.profiles.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

// persist writes the whole document, creating it when isNew.
func (u *profileUsecase) persist(ctx context.Context, profile *domain.Profile, isNew bool, opts writeOptions) error {
	if opts.EnforceFullAggregateValidity {
		if err := identityOf(profile.PersonalInfo()).validate(); err != nil {
			return err
		}
	}
	var err error
	if isNew {
		err = u.profiles.Create(ctx, profile)
	} else {
		err = u.profiles.Save(ctx, profile)
	}
	if err != nil {
		return storeError(err, "Profile not found")
	}
	u.invalidate(ctx, profile.OwnerID)
	return nil
}

func (u *profileUsecase) invalidate(ctx context.Context, ownerID string) {
	if err := u.cache.Invalidate(ctx, ownerID); err != nil {
		logger.Log.Warn("profile cache invalidate failed", "owner_id", ownerID, "error", err)
	}
}

// withItemIDs assigns identifiers to the object items of a collection value.
func withItemIDs(section domain.SectionName, value any) any {
	spec, ok := domain.LookupSection(section)
	if !ok || !spec.IsCollection() {
		return value
	}
	if items, isList := value.([]any); isList {
		return domain.EnsureItemIDs(items)
	}
	return value
}

// storeError maps repository failures onto the error taxonomy.
func storeError(err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFoundMessage)
	case errors.Is(err, domain.ErrItemNotFound):
		return apperror.NotFound("Item not found")
	default:
		return apperror.Persistence(err)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.ProfileView, error) { return nil, nil }
func (noopCache) Set(context.Context, string, *domain.ProfileView) error  { return nil }
func (noopCache) Invalidate(context.Context, string) error                { return nil }
