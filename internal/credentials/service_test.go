package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fauves/fauves-server/internal/barcode"
	"github.com/fauves/fauves-server/internal/observability"
	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/tickets"
)

type memoryCredentialRepo struct {
	charges     map[string]ChargeInfo
	consumed    map[string]bool
	credentials map[string]Credential
	userEmails  map[string]int64
	userNames   map[int64]string
	ticketNames map[int64]string
}

func newMemoryCredentialRepo() *memoryCredentialRepo {
	return &memoryCredentialRepo{
		charges:     map[string]ChargeInfo{},
		consumed:    map[string]bool{},
		credentials: map[string]Credential{},
		userEmails:  map[string]int64{},
		userNames:   map[int64]string{},
		ticketNames: map[int64]string{},
	}
}

func (m *memoryCredentialRepo) ConfirmPayment(_ context.Context, txid string, mint func(ChargeInfo) ([]Credential, error)) ([]Credential, error) {
	charge, ok := m.charges[txid]
	if !ok || m.consumed[txid] {
		return nil, fmt.Errorf("%w: cobrança não encontrada", httpx.ErrNotFound)
	}
	minted, err := mint(charge)
	if err != nil {
		return nil, err
	}
	m.consumed[txid] = true
	for _, c := range minted {
		m.credentials[c.ID] = c
	}
	return minted, nil
}

func (m *memoryCredentialRepo) InsertCredential(_ context.Context, c Credential) error {
	m.credentials[c.ID] = c
	return nil
}

func (m *memoryCredentialRepo) FindCredential(_ context.Context, id string) (Credential, error) {
	c, ok := m.credentials[id]
	if !ok {
		return Credential{}, fmt.Errorf("%w: credencial não encontrada", httpx.ErrNotFound)
	}
	return c, nil
}

func (m *memoryCredentialRepo) ListByUser(_ context.Context, userID int64) ([]Credential, error) {
	var list []Credential
	for _, c := range m.credentials {
		if c.UserID == userID {
			list = append(list, c)
		}
	}
	return list, nil
}

func (m *memoryCredentialRepo) TransferOwnership(_ context.Context, credentialID string, fromUserID, toUserID int64) (bool, error) {
	c, ok := m.credentials[credentialID]
	if !ok || c.UserID != fromUserID {
		return false, nil
	}
	c.UserID = toUserID
	m.credentials[credentialID] = c
	return true, nil
}

func (m *memoryCredentialRepo) GateLookup(_ context.Context, credentialID string, eventID, ticketTypeID int64) (GateCheck, error) {
	c, ok := m.credentials[credentialID]
	if !ok || c.EventID != eventID || c.TicketTypeID != ticketTypeID {
		return GateCheck{}, fmt.Errorf("%w: credencial não encontrada", httpx.ErrNotFound)
	}
	return GateCheck{
		CredentialID:   c.ID,
		HolderName:     m.userNames[c.UserID],
		TicketTypeName: m.ticketNames[c.TicketTypeID],
		EventID:        c.EventID,
	}, nil
}

func (m *memoryCredentialRepo) FindUserIDByEmail(_ context.Context, email string) (int64, error) {
	id, ok := m.userEmails[email]
	if !ok {
		return 0, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	return id, nil
}

type ticketDirectory map[int64]tickets.TicketType

func (d ticketDirectory) Find(_ context.Context, id int64) (tickets.TicketType, error) {
	tt, ok := d[id]
	if !ok {
		return tickets.TicketType{}, fmt.Errorf("%w: ingresso não encontrado", httpx.ErrNotFound)
	}
	return tt, nil
}

type recordingNotifier struct {
	calls []int
}

func (n *recordingNotifier) NotifyIssuance(_ context.Context, _, _ int64, quantity int) error {
	n.calls = append(n.calls, quantity)
	return nil
}

func newTestService(repo *memoryCredentialRepo, dir ticketDirectory, notifier Notifier) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, dir, barcode.NewRenderer("fauves.test"), notifier, nil)
}

func TestConfirmPaymentIssuesCredentials(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.charges["tx-1"] = ChargeInfo{TxID: "tx-1", EventID: 10, UserID: 7, TicketTypeID: 3, Quantity: 2}
	notifier := &recordingNotifier{}
	service := newTestService(repo, ticketDirectory{}, notifier)

	issued, err := service.ConfirmPayment(context.Background(), "tx-1")
	require.NoError(t, err)
	require.Len(t, issued, 2)
	require.NotEqual(t, issued[0].ID, issued[1].ID)
	for _, c := range issued {
		require.Equal(t, int64(7), c.UserID)
		require.Equal(t, "tx-1", c.TxID)
		require.Contains(t, c.Barcode, "data:image/png;base64,")
	}
	require.Equal(t, []int{2}, notifier.calls)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.charges["tx-1"] = ChargeInfo{TxID: "tx-1", EventID: 10, UserID: 7, TicketTypeID: 3, Quantity: 1}
	service := newTestService(repo, ticketDirectory{}, nil)

	_, err := service.ConfirmPayment(context.Background(), "tx-1")
	require.NoError(t, err)
	require.Len(t, repo.credentials, 1)

	_, err = service.ConfirmPayment(context.Background(), "tx-1")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
	require.Len(t, repo.credentials, 1)
}

func TestConfirmPaymentUnknownCharge(t *testing.T) {
	service := newTestService(newMemoryCredentialRepo(), ticketDirectory{}, nil)
	_, err := service.ConfirmPayment(context.Background(), "missing")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["ana@example.com"] = 7
	repo.userNames[7] = "Ana"
	repo.ticketNames[3] = "Pista"
	dir := ticketDirectory{3: {ID: 3, EventID: 10, Name: "Pista"}}
	service := newTestService(repo, dir, nil)

	c, err := service.IssueCourtesy(context.Background(), 10, "Ana@Example.com", 3)
	require.NoError(t, err)
	require.Empty(t, c.TxID)

	check, err := service.Validate(context.Background(), 10, 3, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana", check.HolderName)
	require.Equal(t, "Pista", check.TicketTypeName)

	// validation is read-only, repeating it works
	again, err := service.Validate(context.Background(), 10, 3, c.ID)
	require.NoError(t, err)
	require.Equal(t, check, again)
}

func TestValidateWrongTicketType(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userNames[7] = "Ana"
	repo.ticketNames[3] = "Pista"
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 7, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	// a VIP gate must not admit a Pista credential
	_, err := service.Validate(context.Background(), 10, 4, "cred-1")
	require.True(t, errors.Is(err, httpx.ErrNotFound))

	_, err = service.Validate(context.Background(), 10, 3, "cred-1")
	require.NoError(t, err)
}

func TestValidateWrongEvent(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 7, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	_, err := service.Validate(context.Background(), 99, 3, "cred-1")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestIssueCourtesyTicketFromOtherEvent(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["ana@example.com"] = 7
	dir := ticketDirectory{3: {ID: 3, EventID: 99, Name: "Pista"}}
	service := newTestService(repo, dir, nil)

	_, err := service.IssueCourtesy(context.Background(), 10, "ana@example.com", 3)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestTransfer(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["bob@example.com"] = 8
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 7, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	require.NoError(t, service.Transfer(context.Background(), 7, "cred-1", 3, "bob@example.com"))

	moved := repo.credentials["cred-1"]
	require.Equal(t, int64(8), moved.UserID)
	require.Equal(t, "cred-1", moved.ID)
}

func TestTransferOwnershipMismatch(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["bob@example.com"] = 8
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 99, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	err := service.Transfer(context.Background(), 7, "cred-1", 3, "bob@example.com")
	require.True(t, errors.Is(err, httpx.ErrOwnership))
	require.Equal(t, int64(99), repo.credentials["cred-1"].UserID)
}

func TestTransferUnknownRecipient(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 7, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	err := service.Transfer(context.Background(), 7, "cred-1", 3, "ghost@example.com")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestTransferUnknownCredential(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["bob@example.com"] = 8
	service := newTestService(repo, ticketDirectory{}, nil)

	err := service.Transfer(context.Background(), 7, "missing", 3, "bob@example.com")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestTransferWrongTicketType(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.userEmails["bob@example.com"] = 8
	repo.credentials["cred-1"] = Credential{ID: "cred-1", UserID: 7, TicketTypeID: 3, EventID: 10}
	service := newTestService(repo, ticketDirectory{}, nil)

	err := service.Transfer(context.Background(), 7, "cred-1", 4, "bob@example.com")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestIssuanceRecordsMetric(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.charges["tx-1"] = ChargeInfo{TxID: "tx-1", EventID: 10, UserID: 7, TicketTypeID: 3, Quantity: 2}
	repo.userEmails["ana@example.com"] = 7
	dir := ticketDirectory{3: {ID: 3, EventID: 10, Name: "Pista"}}
	metrics := observability.NewMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(logger, repo, dir, barcode.NewRenderer("fauves.test"), nil, metrics)

	_, err := service.ConfirmPayment(context.Background(), "tx-1")
	require.NoError(t, err)
	_, err = service.IssueCourtesy(context.Background(), 10, "ana@example.com", 3)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rr.Body.String(), "fauves_credentials_issued_total 3")
}

func TestPayloadEmbedsOwnerAndEvent(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.charges["tx-1"] = ChargeInfo{TxID: "tx-1", EventID: 10, UserID: 7, TicketTypeID: 3, Quantity: 1}
	service := newTestService(repo, ticketDirectory{}, nil)

	issued, err := service.ConfirmPayment(context.Background(), "tx-1")
	require.NoError(t, err)

	payload := barcode.NewRenderer("fauves.test").PayloadURL(10, 7, 3, issued[0].ID)
	require.True(t, strings.HasPrefix(payload, "https://fauves.test/event/10/7/3/#"))
}
