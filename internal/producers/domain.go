package producers

import "time"

// CommercialProfile identifies an event producer.
type CommercialProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	CompanyName string    `json:"companyName"`
	Username    string    `json:"username"`
	Category    string    `json:"category,omitempty"`
	Instagram   string    `json:"instagram,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Description string    `json:"description,omitempty"`
	TaxID       string    `json:"taxId,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
