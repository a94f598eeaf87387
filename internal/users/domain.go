package users

import (
	"time"

	"github.com/fauves/fauves-server/internal/rbac"
)

// Profile is the account view returned to the authenticated user. CPF holds
// the tax id (CPF or CNPJ digits) the payment flow charges against.
type Profile struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       rbac.Role  `json:"role"`
	Phone      string     `json:"phone,omitempty"`
	CPF        string     `json:"cpf,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
	PostalCode string     `json:"postalCode,omitempty"`
	Street     string     `json:"street,omitempty"`
	District   string     `json:"district,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	Number     string     `json:"number,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ProfileUpdate carries the mutable profile fields. Empty strings clear the
// optional columns.
type ProfileUpdate struct {
	Name       string
	Email      string
	Phone      string
	CPF        string
	BirthDate  *time.Time
	PostalCode string
	Street     string
	District   string
	City       string
	State      string
	Number     string
}
