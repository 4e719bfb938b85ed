package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-profile-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profiles live in one row per owner with every section inside a single
// JSONB document. Section writes are single UPDATE statements scoped to one
// top-level key, so concurrent writes to disjoint sections never clobber
// each other.

const profileColumns = `id::text, owner_id, document, last_updated, created_at`

// sectionArray is the collection addressed by $2, or an empty array when the
// key is missing or holds something else.
const sectionArray = `(CASE WHEN jsonb_typeof(p.document -> $2::text) = 'array'
	THEN p.document -> $2::text ELSE '[]'::jsonb END)`

// firstMatch is the ordinal of the first item of $2 whose _id equals $3.
const firstMatch = `(SELECT MIN(s.ord) FROM jsonb_array_elements(` + sectionArray + `)
	WITH ORDINALITY AS s(elem, ord) WHERE s.elem ->> '_id' = $3)`

const hasMatch = `EXISTS (SELECT 1 FROM jsonb_array_elements(` + sectionArray + `) AS e(elem)
	WHERE e.elem ->> '_id' = $3)`

type ProfileStore struct {
	db *pgxpool.Pool
}

// NewProfileStore returns a store implementing both whole-document and
// store-level item writes.
func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

var (
	_ domain.ProfileRepository = (*ProfileStore)(nil)
	_ domain.ProfileItemStore  = (*ProfileStore)(nil)
)

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var doc []byte
	err := row.Scan(&p.ID, &p.OwnerID, &doc, &p.LastUpdated, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Sections, err = domain.DecodeFields(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *ProfileStore) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE owner_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, ownerID))
}

func (r *ProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	doc, err := encodeJSON(profile.Sections)
	if err != nil {
		return err
	}
	query := `INSERT INTO profiles (id, owner_id, document, last_updated, created_at)
              VALUES ($1::uuid, $2, $3::jsonb, $4, $5)`
	_, err = r.db.Exec(ctx, query, profile.ID, profile.OwnerID, doc, profile.LastUpdated, profile.CreatedAt)
	if err != nil {
		return mapWriteError(err, "Profile already exists")
	}
	return nil
}

func (r *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	doc, err := encodeJSON(profile.Sections)
	if err != nil {
		return err
	}
	query := `UPDATE profiles SET document = $2::jsonb, last_updated = $3 WHERE owner_id = $1`
	tag, err := r.db.Exec(ctx, query, profile.OwnerID, doc, profile.LastUpdated)
	if err != nil {
		return mapWriteError(err, "Profile already exists")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileStore) ReplaceSection(ctx context.Context, ownerID string, section domain.SectionName, value any, at time.Time) (*domain.Profile, error) {
	val, err := encodeJSON(value)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO profiles AS p (owner_id, document, last_updated, created_at)
              VALUES ($1, jsonb_build_object($2::text, $3::jsonb), $4, $4)
              ON CONFLICT (owner_id) DO UPDATE
              SET document = p.document || jsonb_build_object($2::text, $3::jsonb),
                  last_updated = EXCLUDED.last_updated
              RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query, ownerID, string(section), val, at))
	if err != nil {
		return nil, mapWriteError(err, "Profile already exists")
	}
	return profile, nil
}

func (r *ProfileStore) MergeSectionFields(ctx context.Context, ownerID string, section domain.SectionName, fields domain.Fields, at time.Time) (*domain.Profile, error) {
	val, err := encodeJSON(fields)
	if err != nil {
		return nil, err
	}
	query := `UPDATE profiles AS p
              SET document = jsonb_set(p.document, ARRAY[$2::text],
                      (CASE WHEN jsonb_typeof(p.document -> $2::text) = 'object'
                            THEN p.document -> $2::text ELSE '{}'::jsonb END) || $3::jsonb, true),
                  last_updated = $4
              WHERE p.owner_id = $1
                AND COALESCE(jsonb_typeof(p.document -> $2::text), 'null') IN ('array', 'null')
              RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query, ownerID, string(section), val, at))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.notAppendable(ctx, ownerID)
	}
	return profile, err
}

// notAppendable tells an absent profile apart from a section holding a
// non-list value after an append matched no row.
func (r *ProfileStore) notAppendable(ctx context.Context, ownerID string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE owner_id = $1)`, ownerID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrSectionNotList
}

func (r *ProfileStore) Delete(ctx context.Context, ownerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE owner_id = $1`, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileStore) AppendItem(ctx context.Context, ownerID string, section domain.SectionName, item domain.Fields, at time.Time) (*domain.Profile, error) {
	val, err := encodeJSON(item)
	if err != nil {
		return nil, err
	}
	query := `UPDATE profiles AS p
              SET document = jsonb_set(p.document, ARRAY[$2::text],
                      ` + sectionArray + ` || jsonb_build_array($3::jsonb), true),
                  last_updated = $4
              WHERE p.owner_id = $1
              RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, ownerID, string(section), val, at))
}

func (r *ProfileStore) PatchItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string, patch domain.Fields, at time.Time) (*domain.Profile, error) {
	val, err := encodeJSON(patch)
	if err != nil {
		return nil, err
	}
	query := `UPDATE profiles AS p
              SET document = jsonb_set(p.document, ARRAY[$2::text], (
                      SELECT jsonb_agg(CASE WHEN t.ord = ` + firstMatch + `
                                            THEN t.elem || ($4::jsonb - '_id')
                                            ELSE t.elem END ORDER BY t.ord)
                      FROM jsonb_array_elements(` + sectionArray + `) WITH ORDINALITY AS t(elem, ord))),
                  last_updated = $5
              WHERE p.owner_id = $1 AND ` + hasMatch + `
              RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query, ownerID, string(section), itemID, val, at))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.missingItem(ctx, ownerID)
	}
	return profile, err
}

func (r *ProfileStore) RemoveItem(ctx context.Context, ownerID string, section domain.SectionName, itemID string, at time.Time) (*domain.Profile, error) {
	query := `UPDATE profiles AS p
              SET document = jsonb_set(p.document, ARRAY[$2::text], COALESCE((
                      SELECT jsonb_agg(t.elem ORDER BY t.ord)
                      FROM jsonb_array_elements(` + sectionArray + `) WITH ORDINALITY AS t(elem, ord)
                      WHERE t.ord <> ` + firstMatch + `), '[]'::jsonb)),
                  last_updated = $4
              WHERE p.owner_id = $1 AND ` + hasMatch + `
              RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query, ownerID, string(section), itemID, at))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.missingItem(ctx, ownerID)
	}
	return profile, err
}

// missingItem tells an absent profile apart from an absent item after an
// item statement matched no row.
func (r *ProfileStore) missingItem(ctx context.Context, ownerID string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE owner_id = $1)`, ownerID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrItemNotFound
}
