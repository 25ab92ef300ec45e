package models

import (
	"fmt"
	"time"
)

// Friendship is the single row kept for a pair of users, keyed by the
// canonical (LesserID, GreaterID) order of UserIDPair. A row with a nil
// ConfirmedAt is a pending request; once ConfirmedAt is set the two users are
// friends. Rows are updated in place and never re-created.
type Friendship struct {
	LesserID        uint       `gorm:"primaryKey;autoIncrement:false;check:friendship_ordered_ids,lesser_id < greater_id" json:"lesserId"`
	GreaterID       uint       `gorm:"primaryKey;autoIncrement:false;index" json:"greaterId"`
	LesserRequested bool       `gorm:"not null" json:"lesserRequested"`
	RequestedAt     time.Time  `gorm:"not null" json:"requestedAt"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`

	Lesser  *User `gorm:"foreignKey:LesserID;constraint:OnDelete:CASCADE" json:"-"`
	Greater *User `gorm:"foreignKey:GreaterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Friendship model.
func (Friendship) TableName() string {
	return "friendships"
}

// RequesterID returns the ID of the user who initiated the request.
func (f *Friendship) RequesterID() uint {
	if f.LesserRequested {
		return f.LesserID
	}
	return f.GreaterID
}

// Status derives the relationship status from the row's fields.
// A nil row means no relationship exists.
func (f *Friendship) Status() FriendshipStatus {
	switch {
	case f == nil:
		return StatusNil
	case f.ConfirmedAt != nil:
		return StatusFriends
	default:
		return PendingFrom(f.RequesterID())
	}
}

// FriendshipState enumerates the derived states of a pair.
type FriendshipState int

const (
	// FriendshipNil means no row exists for the pair.
	FriendshipNil FriendshipState = iota
	// FriendshipPending means a request exists but has not been confirmed.
	FriendshipPending
	// FriendshipFriends means the request was confirmed.
	FriendshipFriends
)

func (s FriendshipState) String() string {
	switch s {
	case FriendshipNil:
		return "nil"
	case FriendshipPending:
		return "pending"
	case FriendshipFriends:
		return "friends"
	default:
		return fmt.Sprintf("FriendshipState(%d)", int(s))
	}
}

// FriendshipStatus is the derived status of a pair. From is only meaningful
// when State is FriendshipPending and holds the initiator's ID.
type FriendshipStatus struct {
	State FriendshipState `json:"state"`
	From  uint            `json:"from,omitempty"`
}

var (
	// StatusNil is the status of a pair with no row.
	StatusNil = FriendshipStatus{State: FriendshipNil}
	// StatusFriends is the status of a confirmed pair.
	StatusFriends = FriendshipStatus{State: FriendshipFriends}
)

// PendingFrom builds the status of a pending request initiated by id.
func PendingFrom(id uint) FriendshipStatus {
	return FriendshipStatus{State: FriendshipPending, From: id}
}

func (s FriendshipStatus) String() string {
	if s.State == FriendshipPending {
		return fmt.Sprintf("pending from %d", s.From)
	}
	return s.State.String()
}
