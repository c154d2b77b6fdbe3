package model

import (
	"time"
)

type User struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	Username       string   `gorm:"size:30;not null;uniqueIndex" json:"username"`
	HashedPassword string   `gorm:"not null" json:"-"`
	Role           UserRole `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Park owns its coasters through Coaster.ParkID, ordered by Coaster.Position.
type Park struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Location string `gorm:"size:100;not null" json:"location"`
	Slug     string `gorm:"size:140;not null;uniqueIndex" json:"slug"`
}

// Coaster owns its reviews through Review.CoasterID, ordered by Review.Position.
type Coaster struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ParkID   uint   `gorm:"not null;index" json:"park_id"`
	Position int    `gorm:"not null" json:"-"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:140;not null;uniqueIndex" json:"slug"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CoasterID uint      `gorm:"not null;index" json:"coaster_id"`
	Position  int       `gorm:"not null" json:"-"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Slug      string    `gorm:"size:80;not null;uniqueIndex" json:"slug"`
	PostedAt  time.Time `gorm:"not null" json:"posted_at"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Park{}, &Coaster{}, &Review{}}
}
