package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemIDKey is the field holding an item's system-assigned identifier.
const ItemIDKey = "_id"

func NewItemID() string {
	return uuid.NewString()
}

// IsItemID reports whether s is an identifier in the store's own scheme
// (a canonical lowercase UUID).
func IsItemID(s string) bool {
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.String() == s
}

// CanonicalItemID renders an identifier value as the string it is compared
// by. Strings compare exactly, so matching is case-sensitive.
func CanonicalItemID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case uuid.UUID:
		return id.String()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// ItemIDOf returns the identifier stored on a collection element, or "" for
// non-object elements and items without one.
func ItemIDOf(item any) string {
	m, ok := item.(Fields)
	if !ok {
		if raw, isMap := item.(map[string]any); isMap {
			m = raw
		} else {
			return ""
		}
	}
	return CanonicalItemID(m[ItemIDKey])
}

// EnsureItemIDs assigns a fresh identifier to every object element that has
// no valid identifier or repeats one already seen. Other elements are left
// verbatim. items is modified in place and returned.
func EnsureItemIDs(items []any) []any {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		m, ok := item.(Fields)
		if !ok {
			raw, isMap := item.(map[string]any)
			if !isMap {
				continue
			}
			m = raw
			items[i] = m
		}
		id := CanonicalItemID(m[ItemIDKey])
		if !IsItemID(id) || seen[id] {
			id = NewItemID()
			m[ItemIDKey] = id
		}
		seen[id] = true
	}
	return items
}
