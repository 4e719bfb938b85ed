package memory

import (
	"context"
	"sync"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
)

// ProfileStore keeps profiles in process memory keyed by owner. Every value
// crossing its boundary is deep-copied, so callers never share documents
// with the store.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*domain.Profile)}
}

var (
	_ domain.ProfileRepository = (*ProfileStore)(nil)
	_ domain.ProfileItemStore  = (*ProfileStore)(nil)
)

func (s *ProfileStore) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *ProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.OwnerID]; exists {
		return apperror.Conflict("Profile already exists")
	}
	s.profiles[profile.OwnerID] = profile.Clone()
	return nil
}

func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[profile.OwnerID]
	if !ok {
		return domain.ErrNotFound
	}
	next := profile.Clone()
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	s.profiles[profile.OwnerID] = next
	return nil
}

func (s *ProfileStore) ReplaceSection(ctx context.Context, ownerID string, section domain.SectionName, value any, at time.Time) (*domain.Profile, error) {
	copied, err := domain.Normalize(value)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		p = domain.NewProfile(ownerID, at)
		s.profiles[ownerID] = p
	}
	p.SetSection(section, copied)
	p.LastUpdated = at
	return p.Clone(), nil
}

func (s *ProfileStore) MergeSectionFields(ctx context.Context, ownerID string, section domain.SectionName, fields domain.Fields, at time.Time) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	current, _ := p.Section(section)
	merged := domain.Fields{}
	for k, v := range domain.AsFields(current) {
		merged[k] = v
	}
	for k, v := range domain.AsFields(clone(fields)) {
		merged[k] = v
	}
	p.SetSection(section, merged)
	p.LastUpdated = at
	return p.Clone(), nil
}

func (s *ProfileStore) Delete(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[ownerID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.profiles, ownerID)
	return nil
}

func (s *ProfileStore) AppendItem(ctx context.Context, ownerID string, section domain.SectionName, item domain.Fields, at time.Time) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if v, _ := p.Section(section); v != nil {
		if _, isList := v.([]any); !isList {
			return nil, domain.ErrSectionNotList
		}
	}
	p.SetSection(section, append(p.Collection(section), clone(item)))
	p.LastUpdated = at
	return p.Clone(), nil
}

func (s *ProfileStore) PatchItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string, patch domain.Fields, at time.Time) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	items := p.Collection(section)
	for i, item := range items {
		if itemID == "" || domain.ItemIDOf(item) != itemID {
			continue
		}
		current := domain.AsFields(item)
		for k, v := range domain.AsFields(clone(patch)) {
			if k == domain.ItemIDKey {
				continue
			}
			current[k] = v
		}
		items[i] = current
		p.LastUpdated = at
		return p.Clone(), nil
	}
	return nil, domain.ErrItemNotFound
}

func (s *ProfileStore) RemoveItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string, at time.Time) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	items := p.Collection(section)
	for i, item := range items {
		if itemID == "" || domain.ItemIDOf(item) != itemID {
			continue
		}
		remaining := make([]any, 0, len(items)-1)
		remaining = append(remaining, items[:i]...)
		remaining = append(remaining, items[i+1:]...)
		p.SetSection(section, remaining)
		p.LastUpdated = at
		return p.Clone(), nil
	}
	return nil, domain.ErrItemNotFound
}

func clone(v any) any {
	copied, err := domain.Normalize(v)
	if err != nil {
		return v
	}
	return copied
}
