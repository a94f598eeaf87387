// Package efipay talks to the Efí (Gerencianet) PIX API: OAuth
// client_credentials over mTLS, charge creation and QR code retrieval.
package efipay

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

const (
	tokenCacheKey = "efipay:token"
	// shave a minute off the gateway TTL so we never present a token
	// about to expire mid-flight
	tokenTTLSlack = time.Minute

	chargeExpirySeconds = 3600
)

// Config holds the gateway credentials. CertFile/KeyFile are the mTLS
// client certificate required by the PIX API; leaving them empty skips
// client certificates (test servers).
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	CertFile     string
	KeyFile      string
	PixKey       string
}

// Client is the PIX gateway client. Access tokens are cached in redis and
// refreshes are deduplicated so concurrent charges trigger a single
// /oauth/token round trip.
type Client struct {
	cfg   Config
	rdb   *redis.Client
	group singleflight.Group
	hc    *http.Client
}

// NewClient builds the gateway client, loading the mTLS certificate when
// configured.
func NewClient(cfg Config, rdb *redis.Client) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("efipay: load client certificate: %w", err)
		}
		transport.TLSClientConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}
	return &Client{
		cfg: cfg,
		rdb: rdb,
		hc: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Charge is a created PIX charge as the gateway reports it.
type Charge struct {
	TxID          string
	CopyPasteCode string
	LocationID    int64
	Location      string
}

// ChargeRequest describes one charge to open.
type ChargeRequest struct {
	Amount      decimal.Decimal
	PayerName   string
	PayerTaxID  string
	Description string
}

type cobPayload struct {
	Calendario struct {
		Expiracao int `json:"expiracao"`
	} `json:"calendario"`
	Devedor map[string]string `json:"devedor,omitempty"`
	Valor   struct {
		Original string `json:"original"`
	} `json:"valor"`
	Chave              string `json:"chave"`
	SolicitacaoPagador string `json:"solicitacaoPagador,omitempty"`
}

type cobResponse struct {
	TxID string `json:"txid"`
	Loc  struct {
		ID       int64  `json:"id"`
		Location string `json:"location"`
	} `json:"loc"`
	PixCopiaECola string `json:"pixCopiaECola"`
}

// CreateCharge opens a PIX charge with a one hour expiry window.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error) {
	var payload cobPayload
	payload.Calendario.Expiracao = chargeExpirySeconds
	payload.Valor.Original = req.Amount.StringFixed(2)
	payload.Chave = c.cfg.PixKey
	payload.SolicitacaoPagador = req.Description
	if req.PayerTaxID != "" {
		payload.Devedor = map[string]string{"nome": req.PayerName}
		if len(onlyDigits(req.PayerTaxID)) > 11 {
			payload.Devedor["cnpj"] = onlyDigits(req.PayerTaxID)
		} else {
			payload.Devedor["cpf"] = onlyDigits(req.PayerTaxID)
		}
	}

	var out cobResponse
	if err := c.do(ctx, http.MethodPost, "/v2/cob", payload, &out); err != nil {
		return Charge{}, err
	}
	if out.TxID == "" {
		return Charge{}, fmt.Errorf("%w: efipay não retornou txid", httpx.ErrGateway)
	}
	return Charge{
		TxID:          out.TxID,
		CopyPasteCode: out.PixCopiaECola,
		LocationID:    out.Loc.ID,
		Location:      out.Loc.Location,
	}, nil
}

type qrcodeResponse struct {
	QRCode string `json:"qrcode"`
	Image  string `json:"imagemQrcode"`
}

// FetchQRCode retrieves the scannable image for a charge location. The
// returned image is already a base64 data URL.
func (c *Client) FetchQRCode(ctx context.Context, locationID int64) (image, copyPaste string, err error) {
	var out qrcodeResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v2/loc/%d/qrcode", locationID), nil, &out); err != nil {
		return "", "", err
	}
	return out.Image, out.QRCode, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: efipay %s %s: status %d: %s", httpx.ErrGateway, method, path, resp.StatusCode, raw)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid OAuth access token, from redis when cached.
func (c *Client) token(ctx context.Context) (string, error) {
	if cached, err := c.rdb.Get(ctx, tokenCacheKey).Result(); err == nil && cached != "" {
		return cached, nil
	}

	fresh, err, _ := c.group.Do(tokenCacheKey, func() (any, error) {
		// a concurrent caller may have refreshed while we waited
		if cached, err := c.rdb.Get(ctx, tokenCacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return fresh.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	body := strings.NewReader(`{"grant_type":"client_credentials"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/oauth/token", body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", httpx.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: efipay oauth: status %d", httpx.ErrGateway, resp.StatusCode)
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: efipay oauth: %v", httpx.ErrGateway, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: efipay oauth: token vazio", httpx.ErrGateway)
	}

	ttl := time.Duration(out.ExpiresIn)*time.Second - tokenTTLSlack
	if ttl > 0 {
		if err := c.rdb.Set(ctx, tokenCacheKey, out.AccessToken, ttl).Err(); err != nil {
			return "", err
		}
	}
	return out.AccessToken, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
