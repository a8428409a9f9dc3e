package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleReadonly Role = "readonly"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleReadonly:
		return true
	}
	return false
}

// CanWrite reports whether the role may invoke mutating operations.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	Username   string    `gorm:"primaryKey;size:120"     json:"username"`
	Email      string    `gorm:"type:text;not null"      json:"email"`
	Password   string    `gorm:"type:text;not null"      json:"-"`
	Role       Role      `gorm:"type:text;not null"      json:"role"`
	Name       string    `gorm:"type:text;not null"      json:"name"`
	Department string    `gorm:"type:text"               json:"department"`
	CreatedAt  time.Time `gorm:"autoCreateTime"          json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"          json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Username == "" || u.Email == "" || u.Password == "" {
		return gorm.ErrInvalidValue
	}
	if !u.Role.IsValid() {
		return gorm.ErrInvalidValue
	}
	return nil
}

// HashPassword matches the hash format used by existing deployments.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return u.Password == HashPassword(password)
}

// UserProfile is the public projection of a user.
type UserProfile struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) ToProfile() *UserProfile {
	return &UserProfile{
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		Name:       u.Name,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}
