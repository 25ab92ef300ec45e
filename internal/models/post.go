package models

import "time"

// Post is a node in the reply tree. Exactly one post (the root) has a nil
// ParentID. AuthorID becomes nil when the author's account is removed.
// AuthorID and ParentID never change after insertion.
type Post struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	AuthorID   *uint      `gorm:"uniqueIndex:post_author_parent_unique" json:"authorId,omitempty"`
	ParentID   *uint      `gorm:"uniqueIndex:post_author_parent_unique;index" json:"parentId,omitempty"`
	Body       string     `gorm:"type:text;not null;check:post_body_non_empty,btrim(body) <> ''" json:"body"`
	CreatedAt  time.Time  `json:"createdAt"`
	EditedAt   *time.Time `json:"editedAt,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Parent *Post `gorm:"foreignKey:ParentID" json:"-"`
}

// TableName specifies the table name for the Post model.
func (Post) TableName() string {
	return "posts"
}

// IsRoot reports whether this is the post every thread hangs from.
func (p *Post) IsRoot() bool {
	return p.ParentID == nil
}

// IsDeleted reports whether the post has been deleted.
func (p *Post) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsArchived reports whether the post has been archived.
func (p *Post) IsArchived() bool {
	return p.ArchivedAt != nil
}

// IsAuthoredBy reports whether userID wrote the post.
func (p *Post) IsAuthoredBy(userID uint) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}
