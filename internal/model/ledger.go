package model

import "time"

// ClearRecord marks an order an admin has explicitly cleared. The upstream
// never sees these rows; absence means "not cleared".
type ClearRecord struct {
	OrderID   string    `gorm:"primaryKey;size:128" json:"orderId"`
	Cleared   bool      `gorm:"not null;default:true" json:"cleared"`
	ClearedAt time.Time `gorm:"not null" json:"clearedAt"`
}

// TableRecord is a physical table known to the admin. Created once,
// never deleted, only toggled.
type TableRecord struct {
	TableNo string `gorm:"primaryKey;size:32" json:"table_no"`
	Active  bool   `gorm:"not null;default:true" json:"active"`
}

// QRHistoryEntry is one generated QR code URL. Append-only.
type QRHistoryEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	TableNo   *string   `gorm:"size:32" json:"table_no"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
