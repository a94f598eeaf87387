package tickets

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a sellable admission category under an event.
type TicketType struct {
	ID             int64           `json:"id"`
	EventID        int64           `json:"eventId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	TotalQuantity  int             `json:"totalQuantity"`
	BatchLabel     string          `json:"batchLabel,omitempty"`
	AdmissionType  string          `json:"admissionType,omitempty"`
	PerPersonLimit int             `json:"perPersonLimit,omitempty"`
	SaleStartsAt   *time.Time      `json:"saleStartsAt,omitempty"`
	SaleEndsAt     *time.Time      `json:"saleEndsAt,omitempty"`
	Description    string          `json:"description,omitempty"`
	CreatedBy      int64           `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
