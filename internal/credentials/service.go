package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fauves/fauves-server/internal/barcode"
	"github.com/fauves/fauves-server/internal/observability"
	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/tickets"
)

// TicketSource resolves ticket types for issuance checks.
type TicketSource interface {
	Find(ctx context.Context, id int64) (tickets.TicketType, error)
}

// Notifier delivers issuance notifications out of band. Failures are logged
// and never roll back an issuance.
type Notifier interface {
	NotifyIssuance(ctx context.Context, userID, eventID int64, quantity int) error
}

// Service drives the credential lifecycle: issue, gate check, transfer.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	tickets  TicketSource
	renderer *barcode.Renderer
	notifier Notifier
	metrics  *observability.Metrics
}

// NewService builds Service instance. metrics may be nil.
func NewService(logger *slog.Logger, repo Repository, ticketSource TicketSource, renderer *barcode.Renderer, notifier Notifier, metrics *observability.Metrics) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		tickets:  ticketSource,
		renderer: renderer,
		notifier: notifier,
		metrics:  metrics,
	}
}

// ConfirmPayment settles the charge identified by txid and issues its
// credentials. Calling it twice for the same txid issues nothing the second
// time and reports the charge as not found.
func (s *Service) ConfirmPayment(ctx context.Context, txid string) ([]Credential, error) {
	issued, err := s.repo.ConfirmPayment(ctx, txid, func(charge ChargeInfo) ([]Credential, error) {
		minted := make([]Credential, 0, charge.Quantity)
		for i := 0; i < charge.Quantity; i++ {
			c, err := s.mint(charge.EventID, charge.UserID, charge.TicketTypeID, charge.TxID)
			if err != nil {
				return nil, err
			}
			minted = append(minted, c)
		}
		return minted, nil
	})
	if err != nil {
		return nil, err
	}

	if len(issued) > 0 {
		s.metrics.CountIssued(len(issued))
		s.notify(ctx, issued[0].UserID, issued[0].EventID, len(issued))
	}
	return issued, nil
}

// IssueCourtesy grants a single free credential to the user behind email.
func (s *Service) IssueCourtesy(ctx context.Context, eventID int64, email string, ticketTypeID int64) (Credential, error) {
	recipientID, err := s.repo.FindUserIDByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Credential{}, err
	}
	tt, err := s.tickets.Find(ctx, ticketTypeID)
	if err != nil {
		return Credential{}, err
	}
	if tt.EventID != eventID {
		return Credential{}, fmt.Errorf("%w: ingresso não pertence ao evento", httpx.ErrValidation)
	}

	c, err := s.mint(eventID, recipientID, ticketTypeID, "")
	if err != nil {
		return Credential{}, err
	}
	if err := s.repo.InsertCredential(ctx, c); err != nil {
		return Credential{}, err
	}

	s.metrics.CountIssued(1)
	s.notify(ctx, recipientID, eventID, 1)
	return c, nil
}

// Validate performs the gate check: the credential must exist for the
// event and carry the ticket type the gate admits. It is read-only:
// scanning the same credential twice yields the same answer.
func (s *Service) Validate(ctx context.Context, eventID, ticketTypeID int64, credentialID string) (GateCheck, error) {
	return s.repo.GateLookup(ctx, credentialID, eventID, ticketTypeID)
}

// Transfer moves a credential from the sender to the user behind email.
// The credential id stays the same; only ownership changes, atomically.
func (s *Service) Transfer(ctx context.Context, senderID int64, credentialID string, ticketTypeID int64, email string) error {
	cred, err := s.repo.FindCredential(ctx, credentialID)
	if err != nil {
		return err
	}
	if cred.TicketTypeID != ticketTypeID {
		return fmt.Errorf("%w: credencial não encontrada", httpx.ErrNotFound)
	}
	recipientID, err := s.repo.FindUserIDByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if cred.UserID != senderID {
		return fmt.Errorf("%w: credencial pertence a outro usuário", httpx.ErrOwnership)
	}

	moved, err := s.repo.TransferOwnership(ctx, credentialID, senderID, recipientID)
	if err != nil {
		return err
	}
	if !moved {
		// lost a race with a concurrent transfer of the same credential
		return fmt.Errorf("%w: credencial pertence a outro usuário", httpx.ErrOwnership)
	}

	s.logger.Info("credential transferred",
		slog.String("credential_id", credentialID),
		slog.Int64("to_user_id", recipientID))
	return nil
}

// ListByUser returns the caller's credential set for profile views.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Credential, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) mint(eventID, holderID, ticketTypeID int64, txid string) (Credential, error) {
	id := uuid.NewString()
	payload := s.renderer.PayloadURL(eventID, holderID, ticketTypeID, id)
	dataURL, err := s.renderer.DataURL(payload)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		ID:           id,
		UserID:       holderID,
		TicketTypeID: ticketTypeID,
		EventID:      eventID,
		TxID:         txid,
		Barcode:      dataURL,
	}, nil
}

func (s *Service) notify(ctx context.Context, userID, eventID int64, quantity int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyIssuance(ctx, userID, eventID, quantity); err != nil {
		s.logger.Warn("issuance notification failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
	}
}
