package models

// User represents an account in the system.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex:users_username_unique" json:"username"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:users_email_unique" json:"email,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // never exposed
}

// UserBasicInfo holds minimal public information about a user.
// Used when listing friends and incoming friend requests.
type UserBasicInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
