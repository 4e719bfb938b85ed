package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
)

const msgProfileRequired = "Profile not found. Please create profile first."

func itemSection(section domain.SectionName, verb string) error {
	spec, ok := domain.LookupSection(section)
	if !ok || !spec.SupportsItemOps {
		return apperror.InvalidSection(fmt.Sprintf("Invalid section: %s. Cannot %s this section.", section, verb))
	}
	return nil
}

// notListError refuses to append to a section whose stored value would be
// overwritten.
func notListError(section domain.SectionName) error {
	return apperror.Validation(fmt.Sprintf("%s does not hold a list; replace the section before adding items", section))
}

func normalizeItem(item domain.Fields) (domain.Fields, error) {
	normalized, err := domain.Normalize(item)
	if err != nil {
		return nil, apperror.BadRequest("Invalid item payload")
	}
	return domain.AsFields(normalized), nil
}

func (u *profileUsecase) AddItem(ctx context.Context, ownerID string, section domain.SectionName, item domain.Fields) (*domain.OperationResult, error) {
	if err := itemSection(section, "add item to"); err != nil {
		return nil, err
	}
	fields, err := normalizeItem(item)
	if err != nil {
		return nil, err
	}

	var profile *domain.Profile
	if u.items != nil {
		if !domain.IsItemID(domain.ItemIDOf(fields)) {
			fields[domain.ItemIDKey] = domain.NewItemID()
		}
		profile, err = u.items.AppendItem(ctx, ownerID, section, fields, u.now())
		if errors.Is(err, domain.ErrSectionNotList) {
			return nil, notListError(section)
		}
		if err != nil {
			logger.Log.Error("item append failed", "owner_id", ownerID, "section", section, "error", err)
			return nil, storeError(err, msgProfileRequired)
		}
		u.invalidate(ctx, ownerID)
	} else {
		profile, err = u.loadForItemWrite(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if v, _ := profile.Section(section); v != nil {
			if _, isList := v.([]any); !isList {
				return nil, notListError(section)
			}
		}
		items := profile.Collection(section)
		id := domain.ItemIDOf(fields)
		if !domain.IsItemID(id) || indexOfItem(items, id) >= 0 {
			fields[domain.ItemIDKey] = domain.NewItemID()
		}
		next := make([]any, 0, len(items)+1)
		next = append(next, items...)
		next = append(next, fields)
		profile.SetSection(section, domain.EnsureItemIDs(next))
		profile.LastUpdated = u.now()
		if err := u.persist(ctx, profile, false, sectionLocalWrite); err != nil {
			logger.Log.Error("item add failed", "owner_id", ownerID, "section", section, "error", err)
			return nil, err
		}
	}

	logger.Log.Debug("item added", "owner_id", ownerID, "section", section, "item_id", fields[domain.ItemIDKey])
	return &domain.OperationResult{
		Message: fmt.Sprintf("Item added to %s successfully", section),
		Data:    profile,
	}, nil
}

func (u *profileUsecase) UpdateItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string, patch domain.Fields) (*domain.OperationResult, error) {
	if err := itemSection(section, "update item in"); err != nil {
		return nil, err
	}
	fields, err := normalizeItem(patch)
	if err != nil {
		return nil, err
	}
	delete(fields, domain.ItemIDKey)

	var profile *domain.Profile
	if u.items != nil {
		profile, err = u.items.PatchItem(ctx, ownerID, section, itemID, fields, u.now())
		if err != nil {
			logger.Log.Warn("item patch failed", "owner_id", ownerID, "section", section, "item_id", itemID, "error", err)
			return nil, storeError(err, "Profile not found")
		}
		u.invalidate(ctx, ownerID)
	} else {
		profile, err = u.loadForItemWrite(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		items := profile.Collection(section)
		idx := indexOfItem(items, itemID)
		if idx < 0 {
			return nil, apperror.NotFound("Item not found")
		}
		current := domain.AsFields(items[idx])
		merged := make(domain.Fields, len(current)+len(fields))
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		merged[domain.ItemIDKey] = current[domain.ItemIDKey]
		items[idx] = merged
		profile.SetSection(section, items)
		profile.LastUpdated = u.now()
		if err := u.persist(ctx, profile, false, sectionLocalWrite); err != nil {
			logger.Log.Error("item update failed", "owner_id", ownerID, "section", section, "error", err)
			return nil, err
		}
	}

	return &domain.OperationResult{
		Message: fmt.Sprintf("Item updated in %s successfully", section),
		Data:    profile,
	}, nil
}

func (u *profileUsecase) DeleteItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string) (*domain.OperationResult, error) {
	if err := itemSection(section, "delete item from"); err != nil {
		return nil, err
	}

	var profile *domain.Profile
	var err error
	if u.items != nil {
		profile, err = u.items.RemoveItem(ctx, ownerID, section, itemID, u.now())
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				return nil, apperror.NotFound("Item not found in this section.")
			}
			logger.Log.Error("item remove failed", "owner_id", ownerID, "section", section, "error", err)
			return nil, storeError(err, "Profile not found")
		}
		u.invalidate(ctx, ownerID)
	} else {
		profile, err = u.loadForItemWrite(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		items := profile.Collection(section)
		remaining := removeFirstItem(items, itemID)
		if len(remaining) == len(items) {
			return nil, apperror.NotFound("Item not found in this section.")
		}
		profile.SetSection(section, remaining)
		profile.LastUpdated = u.now()
		if err := u.persist(ctx, profile, false, sectionLocalWrite); err != nil {
			logger.Log.Error("item delete failed", "owner_id", ownerID, "section", section, "error", err)
			return nil, err
		}
	}

	return &domain.OperationResult{
		Message: fmt.Sprintf("Item deleted from %s successfully", section),
		Data:    profile,
	}, nil
}

// loadForItemWrite returns a private copy of the stored profile. Item writes
// never create a profile.
func (u *profileUsecase) loadForItemWrite(ctx context.Context, ownerID string) (*domain.Profile, error) {
	profile, err := u.loadProfile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound(msgProfileRequired)
		}
		return nil, apperror.Persistence(err)
	}
	return profile.Clone(), nil
}

func indexOfItem(items []any, itemID string) int {
	if itemID == "" {
		return -1
	}
	for i, item := range items {
		if domain.ItemIDOf(item) == itemID {
			return i
		}
	}
	return -1
}

func removeFirstItem(items []any, itemID string) []any {
	idx := indexOfItem(items, itemID)
	if idx < 0 {
		return items
	}
	out := make([]any, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
