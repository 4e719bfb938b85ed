package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fields is a generic JSON object as stored inside a Profile document.
type Fields map[string]any

// Profile is the per-account aggregate. Sections holds every section value
// keyed by section name, in generic JSON form (Fields, []any, string, ...).
type Profile struct {
	ID          string
	OwnerID     string
	Sections    Fields
	LastUpdated time.Time
	CreatedAt   time.Time
}

// NewProfile returns an empty profile owned by ownerID.
func NewProfile(ownerID string, at time.Time) *Profile {
	return &Profile{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Sections:    Fields{},
		LastUpdated: at,
		CreatedAt:   at,
	}
}

func (p *Profile) Section(name SectionName) (any, bool) {
	v, ok := p.Sections[string(name)]
	return v, ok
}

func (p *Profile) SetSection(name SectionName, value any) {
	if p.Sections == nil {
		p.Sections = Fields{}
	}
	p.Sections[string(name)] = value
}

// PersonalInfo returns the personalInfo object, or an empty one when the
// section is missing or not an object. The returned map is owned by p.
func (p *Profile) PersonalInfo() Fields {
	v, _ := p.Section(SectionPersonalInfo)
	return AsFields(v)
}

// Collection returns the items of a collection section, nil when absent.
func (p *Profile) Collection(name SectionName) []any {
	v, _ := p.Section(name)
	items, _ := v.([]any)
	return items
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Sections = AsFields(deepCopy(map[string]any(p.Sections)))
	return &cp
}

// MarshalJSON flattens the document: identity fields first, then sections.
func (p *Profile) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Sections)+4)
	for k, v := range p.Sections {
		doc[k] = v
	}
	doc["_id"] = p.ID
	doc["ownerId"] = p.OwnerID
	doc["lastUpdated"] = p.LastUpdated
	doc["createdAt"] = p.CreatedAt
	return json.Marshal(doc)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var meta struct {
		ID          string    `json:"_id"`
		OwnerID     string    `json:"ownerId"`
		LastUpdated time.Time `json:"lastUpdated"`
		CreatedAt   time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	p.ID = meta.ID
	p.OwnerID = meta.OwnerID
	p.LastUpdated = meta.LastUpdated
	p.CreatedAt = meta.CreatedAt
	p.Sections = Fields{}
	for k, v := range doc {
		if IsReservedKey(k) {
			continue
		}
		p.Sections[k] = v
	}
	return nil
}

// AsFields converts a generic JSON object into Fields; anything else yields
// an empty map.
func AsFields(v any) Fields {
	switch m := v.(type) {
	case Fields:
		return m
	case map[string]any:
		return Fields(m)
	default:
		return Fields{}
	}
}

// Normalize turns any JSON-encodable value into its generic JSON form
// (map[string]any, []any, string, float64, bool, nil). The result shares no
// memory with v.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	return toFields(out), nil
}

// DecodeFields parses a stored JSON object document.
func DecodeFields(data []byte) (Fields, error) {
	if len(data) == 0 {
		return Fields{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return AsFields(toFields(out)), nil
}

// toFields rewrites nested map[string]any as Fields so type switches see one
// object type.
func toFields(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Fields, len(t))
		for k, e := range t {
			out[k] = toFields(e)
		}
		return out
	case Fields:
		out := make(Fields, len(t))
		for k, e := range t {
			out[k] = toFields(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toFields(e)
		}
		return out
	default:
		return v
	}
}

func deepCopy(v any) any {
	return toFields(v)
}

// AccountSummary is the display slice of an Account attached to reads.
type AccountSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	UserName  string `json:"userName"`
}

// ProfileView is a Profile enriched for reads with the owner's display
// fields and accepted connection ids.
type ProfileView struct {
	Profile      *Profile
	User         *AccountSummary
	FollowingIDs []string
	FollowerIDs  []string
}

func (v *ProfileView) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Profile)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	following := v.FollowingIDs
	if following == nil {
		following = []string{}
	}
	followers := v.FollowerIDs
	if followers == nil {
		followers = []string{}
	}
	doc["user"] = v.User
	doc["followingIds"] = following
	doc["followerIds"] = followers
	doc["followingCount"] = len(following)
	doc["followerCount"] = len(followers)
	return json.Marshal(doc)
}

func (v *ProfileView) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if raw, ok := doc["user"]; ok {
		if err := json.Unmarshal(raw, &v.User); err != nil {
			return err
		}
	}
	if raw, ok := doc["followingIds"]; ok {
		if err := json.Unmarshal(raw, &v.FollowingIDs); err != nil {
			return err
		}
	}
	if raw, ok := doc["followerIds"]; ok {
		if err := json.Unmarshal(raw, &v.FollowerIDs); err != nil {
			return err
		}
	}
	for _, k := range []string{"user", "followingIds", "followerIds", "followingCount", "followerCount"} {
		delete(doc, k)
	}
	rest, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	v.Profile = &Profile{}
	return json.Unmarshal(rest, v.Profile)
}

// ProfileMedia carries uploaded media URLs for personalInfo. Empty fields are
// left untouched.
type ProfileMedia struct {
	ProfileImage string `json:"profileImage,omitempty"`
	ProfileCover string `json:"profileCover,omitempty"`
}

// OperationResult is the success envelope of every profile operation.
// Failures are returned as *apperror.AppError.
type OperationResult struct {
	Message string
	Data    any
}

// Export formats
const (
	ExportXLSX = "xlsx"
	ExportCSV  = "csv"
)

// ProfileExport is a profile rendered as a downloadable file.
type ProfileExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ProfileRepository interface {
	// GetByOwnerID returns ErrNotFound when the owner has no profile.
	GetByOwnerID(ctx context.Context, ownerID string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	// Save replaces the whole stored document of an existing profile.
	Save(ctx context.Context, profile *Profile) error
	// ReplaceSection overwrites one top-level section in a single statement,
	// creating the profile when absent.
	ReplaceSection(ctx context.Context, ownerID string, section SectionName, value any, at time.Time) (*Profile, error)
	// MergeSectionFields merges fields into an object section of an existing
	// profile in a single statement. Never creates.
	MergeSectionFields(ctx context.Context, ownerID string, section SectionName, fields Fields, at time.Time) (*Profile, error)
	Delete(ctx context.Context, ownerID string) error
}

// ProfileItemStore performs item mutations as single store-level statements.
// PatchItem and RemoveItem return ErrItemNotFound when no item matches.
type ProfileItemStore interface {
	AppendItem(ctx context.Context, ownerID string, section SectionName, item Fields, at time.Time) (*Profile, error)
	PatchItem(ctx context.Context, ownerID string, section SectionName, itemID string, patch Fields, at time.Time) (*Profile, error)
	RemoveItem(ctx context.Context, ownerID string, section SectionName, itemID string, at time.Time) (*Profile, error)
}

// ProfileCache stores read views per owner. Get returns nil, nil on a miss.
type ProfileCache interface {
	Get(ctx context.Context, ownerID string) (*ProfileView, error)
	Set(ctx context.Context, ownerID string, view *ProfileView) error
	Invalidate(ctx context.Context, ownerID string) error
}

type ProfileUsecase interface {
	UpsertProfile(ctx context.Context, ownerID string, payload Fields) (*OperationResult, error)
	ReplaceSection(ctx context.Context, ownerID string, section SectionName, value any) (*OperationResult, error)
	ReplaceArrayField(ctx context.Context, ownerID string, field SectionName, items any) (*OperationResult, error)
	UpdateMedia(ctx context.Context, ownerID string, media ProfileMedia) (*OperationResult, error)

	AddItem(ctx context.Context, ownerID string, section SectionName, item Fields) (*OperationResult, error)
	UpdateItem(ctx context.Context, ownerID string, section SectionName, itemID string, patch Fields) (*OperationResult, error)
	DeleteItem(ctx context.Context, ownerID string, section SectionName, itemID string) (*OperationResult, error)

	GetByOwner(ctx context.Context, ownerID string) (*OperationResult, error)
	GetByUserName(ctx context.Context, userName string) (*OperationResult, error)

	DeleteProfile(ctx context.Context, ownerID string) (*OperationResult, error)
	// ExportProfile renders the profile as a workbook (one sheet per list
	// section) or, for csv, as the rows of a single list section.
	ExportProfile(ctx context.Context, ownerID, format string, section SectionName) (*ProfileExport, error)
	// SeedProfile creates the minimal profile of a newly registered account.
	// It is a no-op when the account already has one.
	SeedProfile(ctx context.Context, account *Account) error
}
