package events

import (
	"time"

	"github.com/fauves/fauves-server/internal/rbac"
)

// Event is a produced event hosting ticket sales.
type Event struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	UserID       int64     `json:"userId"`
	ProfileID    int64     `json:"profileId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Grant binds a user to a role scoped to one event.
type Grant struct {
	EventID   int64     `json:"eventId"`
	UserID    int64     `json:"userId"`
	Role      rbac.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamMember is a roster entry: a user plus their role on the event.
type TeamMember struct {
	UserID int64     `json:"userId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
}
