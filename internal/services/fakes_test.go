package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"spur-go/internal/models"
	"spur-go/internal/storage"
)

// fakeUnitOfWork records how every transaction it handed out ended.
type fakeUnitOfWork struct {
	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
	singles   int
	beginErr  error
}

func (u *fakeUnitOfWork) Begin(context.Context) (storage.Tx, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.beginErr != nil {
		return nil, u.beginErr
	}
	u.begins++
	return &fakeTx{uow: u}, nil
}

func (u *fakeUnitOfWork) SingleExec(context.Context) *gorm.DB {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.singles++
	return nil
}

type fakeTx struct {
	uow  *fakeUnitOfWork
	done bool
}

func (t *fakeTx) Exec() *gorm.DB { return nil }

func (t *fakeTx) Commit() error {
	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	t.done = true
	t.uow.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	if !t.done {
		t.done = true
		t.uow.rollbacks++
	}
	return nil
}

type fakeUserRepo struct {
	users     map[uint]*models.User
	nextID    uint
	lookupErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

// add stores a user fixture and returns it with its assigned ID.
func (r *fakeUserRepo) add(username string) *models.User {
	r.nextID++
	user := &models.User{Name: username, Username: username, Email: username + "@example.com"}
	user.ID = r.nextID
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("insert: %w", &storage.ConstraintError{Kind: storage.UniqueViolation, Constraint: usersUsernameUnique})
		}
		if u.Email == user.Email {
			return fmt.Errorf("insert: %w", &storage.ConstraintError{Kind: storage.UniqueViolation, Constraint: usersEmailUnique})
		}
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetMultipleBasicInfoByIDs(_ context.Context, ids []uint) ([]*models.UserBasicInfo, error) {
	infos := []*models.UserBasicInfo{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			infos = append(infos, &models.UserBasicInfo{ID: u.ID, Username: u.Username, Name: u.Name})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Username < infos[j].Username })
	return infos, nil
}

func (r *fakeUserRepo) GetRecipientForUpdateWithTx(_ context.Context, _ *gorm.DB, _ uint, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

type fakeFriendshipRepo struct {
	rows      map[models.UserIDPair]*models.Friendship
	writes    int
	createErr error
	acceptErr error
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{rows: map[models.UserIDPair]*models.Friendship{}}
}

// seed puts the pair (a, b) into status directly.
func (r *fakeFriendshipRepo) seed(a, b uint, status models.FriendshipStatus) {
	pair, err := models.NewUserIDPair(a, b)
	if err != nil {
		panic(err)
	}
	if status.State == models.FriendshipNil {
		delete(r.rows, pair)
		return
	}
	row := &models.Friendship{LesserID: pair.Lesser(), GreaterID: pair.Greater(), RequestedAt: time.Now()}
	if status.State == models.FriendshipPending {
		row.LesserRequested = status.From == pair.Lesser()
	} else {
		now := time.Now()
		row.ConfirmedAt = &now
	}
	r.rows[pair] = row
}

func (r *fakeFriendshipRepo) CreateRequestWithTx(_ context.Context, _ *gorm.DB, pair models.UserIDPair, requesterID uint) error {
	if r.createErr != nil {
		return r.createErr
	}
	lesserRequested, err := pair.IsLesser(requesterID)
	if err != nil {
		return err
	}
	if _, exists := r.rows[pair]; exists {
		return &storage.ConstraintError{Kind: storage.UniqueViolation, Constraint: "friendships_pkey"}
	}
	r.writes++
	r.rows[pair] = &models.Friendship{
		LesserID:        pair.Lesser(),
		GreaterID:       pair.Greater(),
		LesserRequested: lesserRequested,
		RequestedAt:     time.Now(),
	}
	return nil
}

func (r *fakeFriendshipRepo) AcceptRequestWithTx(_ context.Context, _ *gorm.DB, pair models.UserIDPair) error {
	if r.acceptErr != nil {
		return r.acceptErr
	}
	row, ok := r.rows[pair]
	if !ok || row.ConfirmedAt != nil {
		return storage.ErrNoPendingRequest
	}
	r.writes++
	now := time.Now()
	row.ConfirmedAt = &now
	return nil
}

func (r *fakeFriendshipRepo) GetStatusWithTx(_ context.Context, _ *gorm.DB, pair models.UserIDPair) (models.FriendshipStatus, error) {
	return r.rows[pair].Status(), nil
}

func (r *fakeFriendshipRepo) GetFriendIDs(_ context.Context, userID uint) ([]uint, error) {
	return r.collect(func(f *models.Friendship) (uint, bool) {
		if f.ConfirmedAt == nil {
			return 0, false
		}
		return other(f, userID)
	}), nil
}

func (r *fakeFriendshipRepo) GetPendingRequesterIDs(_ context.Context, userID uint) ([]uint, error) {
	return r.collect(func(f *models.Friendship) (uint, bool) {
		if f.ConfirmedAt != nil || f.RequesterID() == userID {
			return 0, false
		}
		return other(f, userID)
	}), nil
}

func (r *fakeFriendshipRepo) collect(pick func(*models.Friendship) (uint, bool)) []uint {
	var ids []uint
	for _, f := range r.rows {
		if id, ok := pick(f); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func other(f *models.Friendship, userID uint) (uint, bool) {
	switch userID {
	case f.LesserID:
		return f.GreaterID, true
	case f.GreaterID:
		return f.LesserID, true
	}
	return 0, false
}

type fakePostRepo struct {
	posts       map[uint]*models.Post
	authorNames map[uint]string
	nextID      uint
	createErr   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uint]*models.Post{}, authorNames: map[uint]string{}}
}

// add stores a post fixture. A zero authorID leaves the author empty and a
// zero parentID makes the post a root.
func (r *fakePostRepo) add(authorID, parentID uint, body string, opts ...func(*models.Post)) *models.Post {
	r.nextID++
	post := &models.Post{ID: r.nextID, Body: body, CreatedAt: time.Now()}
	if authorID != 0 {
		post.AuthorID = &authorID
	}
	if parentID != 0 {
		post.ParentID = &parentID
	}
	for _, opt := range opts {
		opt(post)
	}
	r.posts[post.ID] = post
	return post
}

func archived(p *models.Post) {
	now := time.Now()
	p.ArchivedAt = &now
}

func deleted(p *models.Post) {
	now := time.Now()
	p.DeletedAt = &now
}

func (r *fakePostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	if p, ok := r.posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePostRepo) GetByIDLockedWithTx(ctx context.Context, _ *gorm.DB, id uint) (*models.Post, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePostRepo) CreateWithTx(_ context.Context, _ *gorm.DB, post *models.Post) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.posts {
		if p.AuthorID != nil && post.AuthorID != nil && *p.AuthorID == *post.AuthorID &&
			p.ParentID != nil && post.ParentID != nil && *p.ParentID == *post.ParentID {
			return fmt.Errorf("insert post: %w", &storage.ConstraintError{Kind: storage.UniqueViolation, Constraint: postAuthorParentUnique})
		}
	}
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now()
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *fakePostRepo) GetRootWithTx(_ context.Context, _ *gorm.DB) (*models.Post, error) {
	for _, p := range r.posts {
		if p.IsRoot() {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePostRepo) GetChildren(_ context.Context, parentID uint) ([]*models.Post, error) {
	return r.live(func(p *models.Post) bool { return p.ParentID != nil && *p.ParentID == parentID }), nil
}

// GetByAuthorUsername resolves usernames through authorNames.
func (r *fakePostRepo) GetByAuthorUsername(_ context.Context, username string) ([]*models.Post, error) {
	return r.live(func(p *models.Post) bool {
		return p.AuthorID != nil && r.authorNames[*p.AuthorID] == username
	}), nil
}

func (r *fakePostRepo) live(match func(*models.Post) bool) []*models.Post {
	posts := []*models.Post{}
	for _, p := range r.posts {
		if match(p) && !p.IsDeleted() {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts
}

func (r *fakePostRepo) GetByAuthorIDs(_ context.Context, authorIDs []uint) ([]*models.Post, error) {
	wanted := map[uint]bool{}
	for _, id := range authorIDs {
		wanted[id] = true
	}
	return r.live(func(p *models.Post) bool { return p.AuthorID != nil && wanted[*p.AuthorID] }), nil
}
