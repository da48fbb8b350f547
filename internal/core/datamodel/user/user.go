package user

import "time"

// User is the authentication identity.
type User struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	EmailConfirmedAt *time.Time `gorm:"column:email_confirmed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Profile holds the display fields of a user. It shares the user's id.
type Profile struct {
	ID        string    `db:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `db:"email" gorm:"column:email;not null"`
	Name      string    `db:"name" gorm:"column:name"`
	AvatarURL string    `db:"avatar_url" gorm:"column:avatar_url"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// AuthToken is a single-use token for e-mail confirmation or password reset.
// Only the SHA-256 hash of the token is stored.
type AuthToken struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `gorm:"column:user_id;type:varchar(36);not null;index"`
	Purpose   string     `gorm:"column:purpose;type:varchar(20);not null"`
	TokenHash string     `gorm:"column:token_hash;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
