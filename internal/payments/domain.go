package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge is the durable correlation record between an open PIX charge and
// the purchase it pays for. It is keyed by the gateway transaction id so any
// process instance can reconcile the webhook, and consumed exactly once.
type Charge struct {
	TxID         string          `json:"txid"`
	EventID      int64           `json:"eventId"`
	UserID       int64           `json:"userId"`
	TicketTypeID int64           `json:"ticketTypeId"`
	Quantity     int             `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"createdAt"`
	ConsumedAt   *time.Time      `json:"consumedAt,omitempty"`
}

// ChargeReceipt is returned to the buyer after opening a charge.
type ChargeReceipt struct {
	TxID          string `json:"txid"`
	CopyPasteCode string `json:"pixCopiaCola"`
	QRCodeImage   string `json:"qrCode"`
}

// Payer is the buyer identification forwarded to the gateway.
type Payer struct {
	Name  string
	TaxID string
}

// ChargeStatus values reported to the polling frontend.
const (
	StatusPending = "pending"
	StatusSettled = "settled"
)
