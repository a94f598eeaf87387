package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fauves/fauves-server/internal/credentials"
	"github.com/fauves/fauves-server/internal/payments/efipay"
	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/tickets"
)

// Gateway is the outbound PIX collaborator.
type Gateway interface {
	CreateCharge(ctx context.Context, req efipay.ChargeRequest) (efipay.Charge, error)
	FetchQRCode(ctx context.Context, locationID int64) (image, copyPaste string, err error)
}

// TicketSource resolves ticket types for purchase validation.
type TicketSource interface {
	Find(ctx context.Context, id int64) (tickets.TicketType, error)
}

// Confirmer settles a consumed charge into issued credentials.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, txid string) ([]credentials.Credential, error)
}

// Service opens PIX charges and reconciles gateway notifications.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	gateway   Gateway
	tickets   TicketSource
	confirmer Confirmer
	brl       *message.Printer
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo Repository, gateway Gateway, ticketSource TicketSource, confirmer Confirmer) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		gateway:   gateway,
		tickets:   ticketSource,
		confirmer: confirmer,
		brl:       message.NewPrinter(language.BrazilianPortuguese),
	}
}

// RequestCharge validates the purchase, opens a PIX charge at the gateway and
// persists the correlation record keyed by the gateway transaction id.
func (s *Service) RequestCharge(ctx context.Context, userID, eventID, ticketTypeID int64, quantity int) (ChargeReceipt, error) {
	if quantity < 1 {
		return ChargeReceipt{}, fmt.Errorf("%w: quantidade deve ser pelo menos 1", httpx.ErrValidation)
	}
	tt, err := s.tickets.Find(ctx, ticketTypeID)
	if err != nil {
		return ChargeReceipt{}, err
	}
	if tt.EventID != eventID {
		return ChargeReceipt{}, fmt.Errorf("%w: ingresso não pertence ao evento", httpx.ErrValidation)
	}
	if !tt.Price.IsPositive() {
		return ChargeReceipt{}, fmt.Errorf("%w: ingresso gratuito não gera cobrança", httpx.ErrValidation)
	}
	payer, err := s.repo.FindPayer(ctx, userID)
	if err != nil {
		return ChargeReceipt{}, err
	}
	if strings.TrimSpace(payer.TaxID) == "" {
		return ChargeReceipt{}, fmt.Errorf("%w: CPF ou CNPJ é obrigatório para pagamento", httpx.ErrValidation)
	}

	amount := tt.Price.Mul(decimal.NewFromInt(int64(quantity)))
	opened, err := s.gateway.CreateCharge(ctx, efipay.ChargeRequest{
		Amount:      amount,
		PayerName:   payer.Name,
		PayerTaxID:  payer.TaxID,
		Description: s.chargeDescription(tt.Name, quantity, amount),
	})
	if err != nil {
		return ChargeReceipt{}, err
	}
	image, copyPaste, err := s.gateway.FetchQRCode(ctx, opened.LocationID)
	if err != nil {
		return ChargeReceipt{}, err
	}
	if copyPaste == "" {
		copyPaste = opened.CopyPasteCode
	}

	if err := s.repo.CreateCharge(ctx, Charge{
		TxID:         opened.TxID,
		EventID:      eventID,
		UserID:       userID,
		TicketTypeID: ticketTypeID,
		Quantity:     quantity,
		Amount:       amount,
	}); err != nil {
		return ChargeReceipt{}, err
	}

	s.logger.Info("pix charge opened",
		slog.String("txid", opened.TxID),
		slog.Int64("event_id", eventID),
		slog.Int("quantity", quantity))
	return ChargeReceipt{
		TxID:          opened.TxID,
		CopyPasteCode: copyPaste,
		QRCodeImage:   image,
	}, nil
}

// Status reports whether the charge behind txid was settled. Frontends poll
// this after showing the QR code.
func (s *Service) Status(ctx context.Context, txid string) (string, error) {
	charge, err := s.repo.FindCharge(ctx, txid)
	if err != nil {
		return "", err
	}
	if charge.ConsumedAt != nil {
		return StatusSettled, nil
	}
	return StatusPending, nil
}

// Settle runs credential issuance for a completed gateway notification.
// Gateways redeliver notifications; a txid that was already consumed is
// acknowledged as a no-op so only never-requested txids answer 404.
func (s *Service) Settle(ctx context.Context, txid string) error {
	issued, err := s.confirmer.ConfirmPayment(ctx, txid)
	if errors.Is(err, httpx.ErrNotFound) {
		charge, findErr := s.repo.FindCharge(ctx, txid)
		if findErr == nil && charge.ConsumedAt != nil {
			s.logger.Info("webhook redelivery ignored, charge already settled",
				slog.String("txid", txid))
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}
	s.logger.Info("payment settled",
		slog.String("txid", txid),
		slog.Int("credentials", len(issued)))
	return nil
}

func (s *Service) chargeDescription(ticketName string, quantity int, amount decimal.Decimal) string {
	value, _ := amount.Float64()
	formatted := number.Decimal(value, number.MinFractionDigits(2), number.MaxFractionDigits(2))
	return s.brl.Sprintf("%dx %s - R$ %v", quantity, ticketName, formatted)
}
