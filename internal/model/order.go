package model

import (
	"time"

	"gorm.io/datatypes"
)

// Order status markers written by the write-through proxy.
const (
	StatusReceived = "received"
	StatusRefunded = "refunded"
)

// OrderMirror is the local replica of an upstream order. All fields except
// Cleared are owned by the upstream once a sync has run.
type OrderMirror struct {
	ID         string         `gorm:"primaryKey;size:128" json:"id"`
	TableNo    string         `gorm:"size:32;index" json:"tableNo"`
	Amount     int64          `gorm:"not null" json:"amount"`
	Status     string         `gorm:"size:32;not null" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"createdAt"`
	Cleared    bool           `gorm:"not null" json:"cleared"`
	PaymentKey string         `gorm:"size:256" json:"paymentKey"`
	Items      datatypes.JSON `json:"items"`
}
