package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFriendship_Status(t *testing.T) {
	confirmed := time.Now()

	var missing *Friendship
	assert.Equal(t, StatusNil, missing.Status())

	lesserAsked := &Friendship{LesserID: 1, GreaterID: 2, LesserRequested: true}
	assert.Equal(t, PendingFrom(1), lesserAsked.Status())

	greaterAsked := &Friendship{LesserID: 1, GreaterID: 2}
	assert.Equal(t, PendingFrom(2), greaterAsked.Status())

	friends := &Friendship{LesserID: 1, GreaterID: 2, LesserRequested: true, ConfirmedAt: &confirmed}
	assert.Equal(t, StatusFriends, friends.Status())
}

func TestFriendshipStatus_String(t *testing.T) {
	assert.Equal(t, "nil", StatusNil.String())
	assert.Equal(t, "friends", StatusFriends.String())
	assert.Equal(t, "pending from 8", PendingFrom(8).String())
	assert.Equal(t, "FriendshipState(9)", FriendshipState(9).String())
}

func TestPost_Predicates(t *testing.T) {
	now := time.Now()
	author := uint(3)
	parent := uint(1)

	root := &Post{ID: 1, AuthorID: &author, Body: "root"}
	assert.True(t, root.IsRoot())
	assert.True(t, root.IsAuthoredBy(3))
	assert.False(t, root.IsAuthoredBy(4))

	reply := &Post{ID: 2, ParentID: &parent, Body: "hi", ArchivedAt: &now}
	assert.False(t, reply.IsRoot())
	assert.True(t, reply.IsArchived())
	assert.False(t, reply.IsDeleted())
	assert.False(t, reply.IsAuthoredBy(3), "orphaned posts have no author")
}
