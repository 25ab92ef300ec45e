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
	ErrPostNotFound   = errors.New("post not found")
	ErrDeletedParent  = errors.New("cannot reply to a deleted post")
	ErrArchivedParent = errors.New("cannot reply to an archived post")
	ErrSelfReply      = errors.New("cannot reply to your own post")
	ErrDuplicateReply = errors.New("already replied to this post")
)

const postAuthorParentUnique = "post_author_parent_unique"

// PostService defines the interface for post operations.
type PostService interface {
	CreateReply(ctx context.Context, authorID, parentID uint, body string) (*models.Post, error)
	GetPost(ctx context.Context, postID uint) (*models.Post, error)
	ListChildren(ctx context.Context, parentID uint) ([]*models.Post, error)
	ListUserPosts(ctx context.Context, username string) ([]*models.Post, error)
	ListOwnPosts(ctx context.Context, userID uint) ([]*models.Post, error)
}

type postService struct {
	uow      storage.UnitOfWork
	postRepo storage.PostRepository
}

// NewPostService creates a new PostService instance.
func NewPostService(uow storage.UnitOfWork, postRepo storage.PostRepository) PostService {
	return &postService{uow: uow, postRepo: postRepo}
}

// CreateReply inserts a reply by authorID under parentID. The parent is read
// with a shared row lock, so it cannot be archived or deleted between the
// checks below and the insert. Two replies by the same author race on
// post_author_parent_unique instead, which turns the loser into ErrDuplicateReply.
func (s *postService) CreateReply(ctx context.Context, authorID, parentID uint, body string) (*models.Post, error) {
	reply := &models.Post{
		AuthorID: &authorID,
		ParentID: &parentID,
		Body:     body,
	}

	err := storage.RunInTx(ctx, s.uow, func(tx storage.Tx) error {
		parent, err := s.postRepo.GetByIDLockedWithTx(ctx, tx.Exec(), parentID)
		if err != nil {
			return fmt.Errorf("reading parent post %d: %w", parentID, err)
		}

		switch {
		case parent == nil:
			return ErrPostNotFound
		case parent.IsDeleted():
			return ErrDeletedParent
		case parent.IsArchived():
			return ErrArchivedParent
		case parent.IsAuthoredBy(authorID):
			return ErrSelfReply
		}

		if err := s.postRepo.CreateWithTx(ctx, tx.Exec(), reply); err != nil {
			if storage.IsConstraintViolation(err, storage.UniqueViolation, postAuthorParentUnique) {
				return ErrDuplicateReply
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isReplyConflict(err) {
			log.Printf("Error creating reply by user %d to post %d: %v", authorID, parentID, err)
		}
		return nil, err
	}

	log.Printf("User %d replied to post %d (reply %d)", authorID, parentID, reply.ID)
	return reply, nil
}

func isReplyConflict(err error) bool {
	return errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrDeletedParent) ||
		errors.Is(err, ErrArchivedParent) ||
		errors.Is(err, ErrSelfReply) ||
		errors.Is(err, ErrDuplicateReply)
}

// GetPost retrieves a post with its author.
func (s *postService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", postID, err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// ListChildren returns the direct replies to parentID, newest first.
// An unknown parent has no children.
func (s *postService) ListChildren(ctx context.Context, parentID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.GetChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing replies to post %d: %w", parentID, err)
	}
	return posts, nil
}

// ListUserPosts returns the posts written by username, newest first.
func (s *postService) ListUserPosts(ctx context.Context, username string) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByAuthorUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing posts by %q: %w", username, err)
	}
	return posts, nil
}

func (s *postService) ListOwnPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByAuthorIDs(ctx, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("listing posts by user %d: %w", userID, err)
	}
	return posts, nil
}
