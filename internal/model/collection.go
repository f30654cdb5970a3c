package model

import "time"

// Possession entity types.
const (
	EntityAlbum       = "album"
	EntityMerchandise = "merchandise"
)

// Possession statuses.
const (
	StatusOwned    = "Owned"
	StatusWishlist = "Wishlist"
)

// UserPossession records that a user owns or wants an album or a piece of
// merchandise. EntityID refers to albums.id or merchandise.id depending on
// EntityType.
type UserPossession struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	EntityType   string    `json:"entity_type"`
	EntityID     uint64    `json:"entity_id"`
	Status       string    `json:"status"`
	StoreID      *uint64   `json:"store_id"`
	AcquiredDate Date      `json:"acquired_date"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserAttendance records that a user attended a performance.
type UserAttendance struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	PerformanceID uint64    `json:"performance_id"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
