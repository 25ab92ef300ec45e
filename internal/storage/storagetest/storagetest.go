// Package storagetest provides Postgres fixtures for tests that need a real
// database. Tests using it are skipped unless SPUR_TEST_DATABASE_DSN is set.
// Every OpenDB call truncates all tables, so run such packages with -p 1.
package storagetest

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"spur-go/internal/config"
	"spur-go/internal/models"
	"spur-go/internal/storage"
)

// DSNEnv names the environment variable holding the test database DSN.
const DSNEnv = "SPUR_TEST_DATABASE_DSN"

// OpenDB connects to the test database, migrates it and empties every table.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping Postgres test", DSNEnv)
	}

	db, err := storage.Open(postgres.Open(dsn), config.DatabaseConfig{MaxOpenConns: 10}, "silent")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, storage.AutoMigrateTables(db))
	require.NoError(t, db.Exec("TRUNCATE posts, friendships, users RESTART IDENTITY CASCADE").Error)
	return db
}

// CreateUser inserts a user whose name and email derive from username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// PostOption adjusts a post fixture before it is inserted.
type PostOption func(*models.Post)

// Archived marks the post as archived.
func Archived() PostOption {
	return func(p *models.Post) {
		now := time.Now().UTC()
		p.ArchivedAt = &now
	}
}

// Deleted marks the post as deleted.
func Deleted() PostOption {
	return func(p *models.Post) {
		now := time.Now().UTC()
		p.DeletedAt = &now
	}
}

// CreatePost inserts a post. A nil parent makes it the root post.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, parent *models.Post, body string, opts ...PostOption) *models.Post {
	t.Helper()
	post := &models.Post{Body: body}
	if author != nil {
		post.AuthorID = &author.ID
	}
	if parent != nil {
		post.ParentID = &parent.ID
	}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(t, db.Omit("Author", "Parent").Create(post).Error)
	return post
}
