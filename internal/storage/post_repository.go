package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spur-go/internal/models"
)

// PostRepository defines the interface for post data operations.
// Lookups return (nil, nil) when the post does not exist.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByIDLockedWithTx reads a post FOR SHARE, holding off concurrent
	// updates of that row until tx ends.
	GetByIDLockedWithTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Post, error)
	CreateWithTx(ctx context.Context, tx *gorm.DB, post *models.Post) error
	GetByAuthorIDs(ctx context.Context, authorIDs []uint) ([]*models.Post, error)
	GetByAuthorUsername(ctx context.Context, username string) ([]*models.Post, error)
	// GetChildren lists the direct replies to parentID; deeper descendants
	// are not included.
	GetChildren(ctx context.Context, parentID uint) ([]*models.Post, error)
	// GetRootWithTx returns the post with no parent, if one exists.
	GetRootWithTx(ctx context.Context, tx *gorm.DB) (*models.Post, error)
}

type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based PostRepository.
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return firstPost(r.db.WithContext(ctx).Preload("Author", publicAuthorColumns).Where("id = ?", id))
}

func (r *gormPostRepository) GetRootWithTx(ctx context.Context, tx *gorm.DB) (*models.Post, error) {
	return firstPost(tx.WithContext(ctx).Where("parent_id IS NULL"))
}

func (r *gormPostRepository) GetByIDLockedWithTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Post, error) {
	return firstPost(tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", id))
}

// publicAuthorColumns keeps credentials and email out of preloaded authors.
func publicAuthorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "name", "created_at", "updated_at")
}

func firstPost(query *gorm.DB) (*models.Post, error) {
	var post models.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// CreateWithTx inserts post. A second reply by the same author to the same
// parent fails with a *ConstraintError on post_author_parent_unique.
func (r *gormPostRepository) CreateWithTx(ctx context.Context, tx *gorm.DB, post *models.Post) error {
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return fmt.Errorf("insert post: %w", translateError(err))
	}
	return nil
}

// GetByAuthorIDs lists live posts written by any of authorIDs, newest first.
func (r *gormPostRepository) GetByAuthorIDs(ctx context.Context, authorIDs []uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(authorIDs) == 0 {
		return posts, nil
	}
	return findLivePosts(r.db.WithContext(ctx).Where("author_id IN ?", authorIDs))
}

// GetByAuthorUsername lists live posts written by username, newest first.
// An unknown username yields an empty list.
func (r *gormPostRepository) GetByAuthorUsername(ctx context.Context, username string) ([]*models.Post, error) {
	return findLivePosts(r.db.WithContext(ctx).
		Where("author_id = (?)", r.db.Model(&models.User{}).Select("id").Where("username = ?", username)))
}

func (r *gormPostRepository) GetChildren(ctx context.Context, parentID uint) ([]*models.Post, error) {
	return findLivePosts(r.db.WithContext(ctx).Where("parent_id = ?", parentID))
}

func findLivePosts(query *gorm.DB) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := query.
		Preload("Author", publicAuthorColumns).
		Where("deleted_at IS NULL").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
