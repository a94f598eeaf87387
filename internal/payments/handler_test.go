package payments

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

func newWebhookServer(t *testing.T, confirmer Confirmer) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := newTestService(newMemoryChargeRepo(), &stubGateway{}, ticketDirectory{}, confirmer)
	handler := NewHandler(logger, service)

	router := chi.NewRouter()
	handler.MountWebhookRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postWebhook(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestWebhookConfirmsCompletedPayment(t *testing.T) {
	confirmer := &stubConfirmer{}
	srv := newWebhookServer(t, confirmer)

	resp := postWebhook(t, srv, "/paymentwebhook", `{"pix":[{"txid":"tx-1","status":"CONCLUIDA"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"tx-1"}, confirmer.calls)
}

func TestWebhookPixAliasPath(t *testing.T) {
	confirmer := &stubConfirmer{}
	srv := newWebhookServer(t, confirmer)

	resp := postWebhook(t, srv, "/paymentwebhook/pix", `{"pix":[{"txid":"tx-1","status":"CONCLUIDA"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"tx-1"}, confirmer.calls)
}

func TestWebhookUnknownTxid(t *testing.T) {
	confirmer := &stubConfirmer{err: fmt.Errorf("%w: cobrança não encontrada", httpx.ErrNotFound)}
	srv := newWebhookServer(t, confirmer)

	resp := postWebhook(t, srv, "/paymentwebhook", `{"pix":[{"txid":"tx-ghost","status":"CONCLUIDA"}]}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, confirmer.calls)
}

func TestWebhookRedeliveryAcknowledged(t *testing.T) {
	repo := newMemoryChargeRepo()
	now := time.Now()
	repo.charges["tx-done"] = Charge{TxID: "tx-done", ConsumedAt: &now}
	confirmer := &stubConfirmer{err: fmt.Errorf("%w: cobrança não encontrada", httpx.ErrNotFound)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, newTestService(repo, &stubGateway{}, ticketDirectory{}, confirmer))

	router := chi.NewRouter()
	handler.MountWebhookRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp := postWebhook(t, srv, "/paymentwebhook", `{"pix":[{"txid":"tx-done","status":"CONCLUIDA"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, confirmer.calls)
}

func TestWebhookNonCompletionAcknowledged(t *testing.T) {
	confirmer := &stubConfirmer{}
	srv := newWebhookServer(t, confirmer)

	resp := postWebhook(t, srv, "/paymentwebhook", `{"pix":[{"txid":"tx-1","status":"ATIVA"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, confirmer.calls)
}

func TestWebhookMalformedPayload(t *testing.T) {
	srv := newWebhookServer(t, &stubConfirmer{})

	resp := postWebhook(t, srv, "/paymentwebhook", `{"pix":[]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postWebhook(t, srv, "/paymentwebhook", `not-json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
