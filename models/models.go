package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"size:150;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActivated  bool   `gorm:"not null;index"`
	SendMessages bool   `gorm:"not null"`
	IsStaff      bool   `gorm:"not null"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	Listings     []Listing `gorm:"foreignKey:AuthorID"`
}

// Rubric is a single table for both levels of the category tree: a
// super-rubric has ParentID nil, a sub-rubric points at its super-rubric.
type Rubric struct {
	ID       uint    `gorm:"primarykey"`
	Name     string  `gorm:"size:20;not null;uniqueIndex"`
	Order    int16   `gorm:"column:sort_order;not null;index"`
	ParentID *uint   `gorm:"index"`
	Parent   *Rubric `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

type Listing struct {
	ID        uint      `gorm:"primarykey"`
	RubricID  uint      `gorm:"not null;index"`
	Rubric    *Rubric   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Title     string    `gorm:"size:40;not null"`
	Content   string    `gorm:"type:text;not null"`
	Price     float64   `gorm:"not null"`
	Contacts  string    `gorm:"type:text;not null"`
	ImageKey  string    `gorm:"size:255"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IsActive  bool      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"index"`
	Images    []ListingImage
	Comments  []Comment
	Ratings   []Rating
}

type ListingImage struct {
	ID        uint     `gorm:"primarykey"`
	ListingID uint     `gorm:"not null;index"`
	Listing   *Listing `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ImageKey  string   `gorm:"size:255;not null"`
}

type Comment struct {
	ID         uint      `gorm:"primarykey"`
	ListingID  uint      `gorm:"not null;index"`
	Listing    *Listing  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorName string    `gorm:"size:30;not null"`
	Content    string    `gorm:"type:text;not null"`
	IsActive   bool      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"index"`
}

// Rating holds one score per (listing, user) pair; the composite unique
// index is what the store-level upsert rides on.
type Rating struct {
	ID        uint     `gorm:"primarykey"`
	ListingID uint     `gorm:"not null;uniqueIndex:idx_listing_user"`
	Listing   *Listing `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_listing_user"`
	User      *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Score     int      `gorm:"not null"`
	CreatedAt time.Time
}
