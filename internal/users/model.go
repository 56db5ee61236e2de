package users

import "time"

// User captures a registered account. Records are immutable after
// registration.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:72;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// PublicUser is the externally visible projection of an account.
type PublicUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// Public strips credential material from the account record.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
