package model

import "time"

// DailyCodeMirror holds one daily access code per calendar date.
// Re-fetching the same date updates the row in place.
type DailyCodeMirror struct {
	CodeDate string    `gorm:"primaryKey;size:32" json:"date"`
	Code     string    `gorm:"size:64;not null" json:"code"`
	Override bool      `gorm:"not null" json:"override"`
	SavedAt  time.Time `gorm:"not null" json:"savedAt"`
}
