package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"spur-go/internal/models"
)

// ErrNoPendingRequest is returned when accepting a pair that has no
// unconfirmed row. Callers hold the row lock, so this indicates a logic error.
var ErrNoPendingRequest = errors.New("no pending friend request for pair")

// FriendshipRepository defines the interface for friendship data operations.
// The WithTx methods run on the handle they are given so that a status read
// and the write that depends on it share one transaction.
type FriendshipRepository interface {
	CreateRequestWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair, requesterID uint) error
	AcceptRequestWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair) error
	GetStatusWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair) (models.FriendshipStatus, error)
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	GetPendingRequesterIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// CreateRequestWithTx inserts the pending row for pair, initiated by requesterID.
func (r *gormFriendshipRepository) CreateRequestWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair, requesterID uint) error {
	lesserRequested, err := pair.IsLesser(requesterID)
	if err != nil {
		return err
	}

	friendship := &models.Friendship{
		LesserID:        pair.Lesser(),
		GreaterID:       pair.Greater(),
		LesserRequested: lesserRequested,
		RequestedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(friendship).Error; err != nil {
		return fmt.Errorf("insert friend request %s: %w", pair, translateError(err))
	}
	return nil
}

// AcceptRequestWithTx confirms the pending row for pair in place.
func (r *gormFriendshipRepository) AcceptRequestWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair) error {
	result := tx.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("lesser_id = ? AND greater_id = ? AND confirmed_at IS NULL", pair.Lesser(), pair.Greater()).
		Update("confirmed_at", gorm.Expr("NOW()"))
	if result.Error != nil {
		return fmt.Errorf("confirm friend request %s: %w", pair, translateError(result.Error))
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("confirm friend request %s: %w", pair, ErrNoPendingRequest)
	}
	return nil
}

// GetStatusWithTx derives the status of pair from its row, if any.
func (r *gormFriendshipRepository) GetStatusWithTx(ctx context.Context, tx *gorm.DB, pair models.UserIDPair) (models.FriendshipStatus, error) {
	var friendship models.Friendship
	err := tx.WithContext(ctx).
		Where("lesser_id = ? AND greater_id = ?", pair.Lesser(), pair.Greater()).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StatusNil, nil
		}
		return models.FriendshipStatus{}, fmt.Errorf("read friendship %s: %w", pair, err)
	}
	return friendship.Status(), nil
}

// GetFriendIDs retrieves the IDs of users with a confirmed friendship with userID.
func (r *gormFriendshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	// userID can sit on either side of the pair, so pluck the other column from each.
	var idsAsLesser []uint
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("lesser_id = ? AND confirmed_at IS NOT NULL", userID).
		Pluck("greater_id", &idsAsLesser).Error
	if err != nil {
		return nil, err
	}

	var idsAsGreater []uint
	err = r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("greater_id = ? AND confirmed_at IS NOT NULL", userID).
		Pluck("lesser_id", &idsAsGreater).Error
	if err != nil {
		return nil, err
	}

	return append(idsAsLesser, idsAsGreater...), nil
}

// GetPendingRequesterIDs retrieves the IDs of users whose request to userID
// is still unconfirmed.
func (r *gormFriendshipRepository) GetPendingRequesterIDs(ctx context.Context, userID uint) ([]uint, error) {
	var fromGreater []uint
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("lesser_id = ? AND NOT lesser_requested AND confirmed_at IS NULL", userID).
		Pluck("greater_id", &fromGreater).Error
	if err != nil {
		return nil, err
	}

	var fromLesser []uint
	err = r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("greater_id = ? AND lesser_requested AND confirmed_at IS NULL", userID).
		Pluck("lesser_id", &fromLesser).Error
	if err != nil {
		return nil, err
	}

	return append(fromGreater, fromLesser...), nil
}
