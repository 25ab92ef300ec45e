package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfRelationship is returned when a pair is built from a user and themselves.
	ErrSelfRelationship = errors.New("a user cannot be paired with themselves")
	// ErrNotInPair signals a caller bug: the ID asked about belongs to neither side.
	ErrNotInPair = errors.New("user ID is not a member of the pair")
)

// UserIDPair is an unordered pair of distinct user IDs stored in canonical
// order, so that a relationship between two users has exactly one key no
// matter who is named first.
type UserIDPair struct {
	lesser  uint
	greater uint
}

// NewUserIDPair orders a and b so the numerically smaller ID comes first.
func NewUserIDPair(a, b uint) (UserIDPair, error) {
	if a == b {
		return UserIDPair{}, ErrSelfRelationship
	}
	if a > b {
		a, b = b, a
	}
	return UserIDPair{lesser: a, greater: b}, nil
}

// Lesser returns the smaller of the two IDs.
func (p UserIDPair) Lesser() uint {
	return p.lesser
}

// Greater returns the larger of the two IDs.
func (p UserIDPair) Greater() uint {
	return p.greater
}

// IsLesser reports whether id is the lesser member of the pair.
func (p UserIDPair) IsLesser(id uint) (bool, error) {
	switch id {
	case p.lesser:
		return true, nil
	case p.greater:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %d not in (%d, %d)", ErrNotInPair, id, p.lesser, p.greater)
	}
}

// String renders the pair as "(lesser, greater)".
func (p UserIDPair) String() string {
	return fmt.Sprintf("(%d, %d)", p.lesser, p.greater)
}
