// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is any principal in the marketplace. The Parent reference forms the
// attribution chain customer -> branch -> distributor; the company root has a
// nil parent. The transaction engine only reads this chain, it never mutates
// it.
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string     `json:"name" gorm:"size:255"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'customer';index"`
	ParentID     *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Metadata     JSONB      `json:"metadata" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Parent *User `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
