package models

import (
	"time"

	"washtech-rental/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Lifecycle: logical deletion shared by every owned entity
// ============================================================

// Lifecycle marks a row Active or Retired. Rows are never purged.
type Lifecycle struct {
	IsActive bool `gorm:"not null;default:true;index" json:"is_active"`
}

// Retire flips the row to Retired
func (l *Lifecycle) Retire() {
	l.IsActive = false
}

// Retired reports whether the row has been logically deleted
func (l Lifecycle) Retired() bool {
	return !l.IsActive
}

// Active scopes a query to non-retired rows of table
func Active(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_active = ?", true)
	}
}

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Email        string      `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password     string      `gorm:"size:255;not null" json:"-"`
	Phone        string      `gorm:"size:20" json:"phone"`
	Address      string      `gorm:"size:255" json:"address"`
	Role         domain.Role `gorm:"size:20;not null;default:'client';index" json:"role"`
	Lifecycle
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return TableUsers
}

// UserResponse DTO
type UserResponse struct {
	ID           uint        `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	Address      string      `json:"address,omitempty"`
	Role         domain.Role `json:"role"`
	IsActive     bool        `json:"is_active"`
	RegisteredAt time.Time   `json:"registered_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Address:      u.Address,
		Role:         u.Role,
		IsActive:     u.IsActive,
		RegisteredAt: u.RegisteredAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&WashingMachine{},
		&Inventory{},
		&Reservation{},
		&Payment{},
		&Notification{},
	)
}
