package credentials

import "time"

// Credential is an admission right for one person at one event. The id is
// minted at issuance and never changes; ownership may move between users.
type Credential struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	TicketTypeID int64     `json:"ticketTypeId"`
	EventID      int64     `json:"eventId"`
	TxID         string    `json:"txid,omitempty"`
	Barcode      string    `json:"barcode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChargeInfo is the slice of a settled charge needed to mint credentials.
type ChargeInfo struct {
	TxID         string
	EventID      int64
	UserID       int64
	TicketTypeID int64
	Quantity     int
}

// GateCheck is what the door staff sees after scanning a credential.
type GateCheck struct {
	CredentialID   string `json:"credentialId"`
	HolderName     string `json:"holderName"`
	TicketTypeName string `json:"ticketTypeName"`
	EventID        int64  `json:"eventId"`
}
