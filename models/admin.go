package models

import (
	"time"
)

type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:150" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"` // bcrypt hash, never returned in JSON
	Image        *string   `gorm:"size:512" json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicAdmin is the projection of an Admin that handlers may return.
type PublicAdmin struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

func (a Admin) Public() PublicAdmin {
	return PublicAdmin{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Image: a.Image,
	}
}
