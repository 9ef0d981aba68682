package model

import "time"

// MenuMirror is the local replica of an upstream menu item. Active and
// Soldout can be flipped by a local edit; the next successful sync
// re-asserts the upstream values.
type MenuMirror struct {
	ID        int64     `gorm:"primaryKey" json:"id"` // Upstream ID
	Name      string    `gorm:"size:256;not null;index" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Active    bool      `gorm:"not null" json:"active"`
	Soldout   bool      `gorm:"not null" json:"soldout"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
