package tickets

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// EventSource answers whether an event id exists.
type EventSource interface {
	EventExists(ctx context.Context, id int64) (bool, error)
}

// Service handles ticket type management.
type Service struct {
	repo   Repository
	events EventSource
}

// NewService builds Service instance.
func NewService(repo Repository, events EventSource) *Service {
	return &Service{repo: repo, events: events}
}

// Create validates and persists a new ticket type for the event.
func (s *Service) Create(ctx context.Context, tt TicketType) (TicketType, error) {
	if exists, err := s.events.EventExists(ctx, tt.EventID); err != nil {
		return TicketType{}, err
	} else if !exists {
		return TicketType{}, fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
	}
	if tt.Name == "" {
		return TicketType{}, fmt.Errorf("%w: nome do ingresso é obrigatório", httpx.ErrValidation)
	}
	if tt.Price.LessThan(decimal.Zero) {
		return TicketType{}, fmt.Errorf("%w: preço não pode ser negativo", httpx.ErrValidation)
	}
	if tt.TotalQuantity < 1 {
		return TicketType{}, fmt.Errorf("%w: quantidade deve ser pelo menos 1", httpx.ErrValidation)
	}
	if tt.SaleStartsAt != nil && tt.SaleEndsAt != nil && tt.SaleEndsAt.Before(*tt.SaleStartsAt) {
		return TicketType{}, fmt.Errorf("%w: período de vendas inválido", httpx.ErrValidation)
	}
	return s.repo.CreateTicketType(ctx, tt)
}

// ListByEvent returns the event's ticket types.
func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]TicketType, error) {
	if exists, err := s.events.EventExists(ctx, eventID); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// Find loads one ticket type.
func (s *Service) Find(ctx context.Context, id int64) (TicketType, error) {
	return s.repo.FindTicketType(ctx, id)
}
