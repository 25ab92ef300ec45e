package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"spur-go/internal/models"
	"spur-go/internal/storage"
)

var (
	ErrSelfFriendship   = errors.New("cannot befriend yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrAlreadyRequested = errors.New("friend request already sent")
	ErrNonexistentUser  = errors.New("user does not exist")
)

// FriendshipService defines the interface for friendship operations.
type FriendshipService interface {
	// AddFriendByUsername sends a friend request to recipientUsername, or
	// accepts the one they already sent. It reports whether the two users
	// are friends as a result of this call.
	AddFriendByUsername(ctx context.Context, senderID uint, recipientUsername string) (becameFriends bool, err error)
	GetStatus(ctx context.Context, userID uint, otherUsername string) (models.FriendshipStatus, error)
	ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
	ListPendingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
	ListFriendPosts(ctx context.Context, userID uint) ([]*models.Post, error)
}

type friendshipService struct {
	uow            storage.UnitOfWork
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	postRepo       storage.PostRepository
}

// NewFriendshipService creates a new FriendshipService instance.
func NewFriendshipService(
	uow storage.UnitOfWork,
	userRepo storage.UserRepository,
	friendshipRepo storage.FriendshipRepository,
	postRepo storage.PostRepository,
) FriendshipService {
	return &friendshipService{
		uow:            uow,
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		postRepo:       postRepo,
	}
}

// AddFriendByUsername runs the request/accept state machine for the pair in
// one transaction:
//
//	Nil              -> insert request       -> PendingFrom(sender), false
//	PendingFrom(sender)                       -> ErrAlreadyRequested
//	PendingFrom(other) -> confirm the request -> Friends, true
//	Friends                                   -> ErrAlreadyFriends
//
// Both users' rows stay locked until the transaction ends, so a concurrent
// call for the same pair observes this call's outcome instead of racing it.
func (s *friendshipService) AddFriendByUsername(ctx context.Context, senderID uint, recipientUsername string) (bool, error) {
	var becameFriends bool

	err := storage.RunInTx(ctx, s.uow, func(tx storage.Tx) error {
		recipient, err := s.userRepo.GetRecipientForUpdateWithTx(ctx, tx.Exec(), senderID, recipientUsername)
		if err != nil {
			return fmt.Errorf("locking users %d and %q: %w", senderID, recipientUsername, err)
		}
		if recipient == nil {
			return ErrNonexistentUser
		}

		pair, err := models.NewUserIDPair(senderID, recipient.ID)
		if err != nil {
			return ErrSelfFriendship
		}

		status, err := s.friendshipRepo.GetStatusWithTx(ctx, tx.Exec(), pair)
		if err != nil {
			return err
		}

		switch status.State {
		case models.FriendshipNil:
			return s.friendshipRepo.CreateRequestWithTx(ctx, tx.Exec(), pair, senderID)
		case models.FriendshipPending:
			if status.From == senderID {
				return ErrAlreadyRequested
			}
			if err := s.friendshipRepo.AcceptRequestWithTx(ctx, tx.Exec(), pair); err != nil {
				return err
			}
			becameFriends = true
			return nil
		case models.FriendshipFriends:
			return ErrAlreadyFriends
		default:
			return fmt.Errorf("unexpected friendship state %s for %s", status, pair)
		}
	})
	if err != nil {
		if !isFriendshipConflict(err) {
			log.Printf("Error adding friend %q for user %d: %v", recipientUsername, senderID, err)
		}
		return false, err
	}

	if becameFriends {
		log.Printf("User %d and %q are now friends", senderID, recipientUsername)
	} else {
		log.Printf("User %d sent a friend request to %q", senderID, recipientUsername)
	}
	return becameFriends, nil
}

func isFriendshipConflict(err error) bool {
	return errors.Is(err, ErrSelfFriendship) ||
		errors.Is(err, ErrAlreadyFriends) ||
		errors.Is(err, ErrAlreadyRequested) ||
		errors.Is(err, ErrNonexistentUser)
}

// GetStatus reads the status between userID and otherUsername without
// opening a transaction.
func (s *friendshipService) GetStatus(ctx context.Context, userID uint, otherUsername string) (models.FriendshipStatus, error) {
	other, err := s.userRepo.GetByUsername(ctx, otherUsername)
	if err != nil {
		return models.FriendshipStatus{}, fmt.Errorf("looking up user %q: %w", otherUsername, err)
	}
	if other == nil {
		return models.FriendshipStatus{}, ErrNonexistentUser
	}

	pair, err := models.NewUserIDPair(userID, other.ID)
	if err != nil {
		return models.FriendshipStatus{}, ErrSelfFriendship
	}

	return s.friendshipRepo.GetStatusWithTx(ctx, s.uow.SingleExec(ctx), pair)
}

// ListFriends returns the users with a confirmed friendship with userID.
func (s *friendshipService) ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		log.Printf("Error getting friend IDs for user %d: %v", userID, err)
		return nil, fmt.Errorf("listing friends of user %d: %w", userID, err)
	}
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
}

// ListPendingRequests returns the users waiting for userID to accept their request.
func (s *friendshipService) ListPendingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	requesterIDs, err := s.friendshipRepo.GetPendingRequesterIDs(ctx, userID)
	if err != nil {
		log.Printf("Error getting pending requests for user %d: %v", userID, err)
		return nil, fmt.Errorf("listing friend requests of user %d: %w", userID, err)
	}
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, requesterIDs)
}

// ListFriendPosts returns the live posts written by userID's friends, newest first.
func (s *friendshipService) ListFriendPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends of user %d: %w", userID, err)
	}
	return s.postRepo.GetByAuthorIDs(ctx, friendIDs)
}
