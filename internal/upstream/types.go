package upstream

import (
	"encoding/json"
	"time"
)

// OrderPayload is one entry of the upstream GET /orders response. Optional
// fields are pointers so the reconciler can tell "absent" from a zero value.
type OrderPayload struct {
	ID         string          `json:"id"`
	TableNo    string          `json:"tableNo"`
	Amount     int64           `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  *time.Time      `json:"createdAt"`
	Cleared    *bool           `json:"cleared"`
	PaymentKey *string         `json:"paymentKey"`
	Items      json.RawMessage `json:"items"`
}

// MenuPayload is one entry of the upstream GET /menu response.
type MenuPayload struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Active  bool   `json:"active"`
	Soldout bool   `json:"soldout"`
}

// MenuPatch is a partial menu mutation body. Nil fields are omitted from the
// wire and left untouched by the local coalesce.
type MenuPatch struct {
	ID      *int64  `json:"id,omitempty"`
	Name    *string `json:"name,omitempty"`
	Price   *int64  `json:"price,omitempty"`
	Active  *bool   `json:"active,omitempty"`
	Soldout *bool   `json:"soldout,omitempty"`
}

// DailyCodePayload is the upstream daily-code record.
type DailyCodePayload struct {
	Date     string `json:"date"`
	Code     string `json:"code"`
	Override bool   `json:"override"`
}
