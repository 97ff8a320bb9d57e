package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4()" json:"id"`
	GithubID                   int64     `gorm:"column:github_id;uniqueIndex;not null" json:"github_id"`
	Login                      string    `gorm:"not null" json:"login"`
	Name                       string    `json:"name,omitempty"`
	Email                      string    `json:"email,omitempty"`
	AvatarURL                  string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Role                       string    `gorm:"default:user" json:"role"`
	EncryptedGithubAccessToken string    `gorm:"column:encrypted_github_access_token" json:"-"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}
