package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the addressed record does
	// not exist.
	ErrNotFound = errors.New("record not found")
	// ErrItemNotFound is returned when a profile exists but none of its
	// collection items carries the requested identifier.
	ErrItemNotFound = errors.New("item not found")
	// ErrSectionNotList is returned by item appends when the section already
	// holds a value that is not a list.
	ErrSectionNotList = errors.New("section is not a list")
)
