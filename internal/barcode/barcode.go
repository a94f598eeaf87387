// Package barcode renders QR payloads for admission credentials.
package barcode

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// Renderer turns credential payloads into storable QR images.
type Renderer struct {
	publicHost string
}

// NewRenderer constructs a renderer. publicHost is the scheme-less host
// embedded into credential payload URLs, e.g. "fauves.com.br".
func NewRenderer(publicHost string) *Renderer {
	return &Renderer{publicHost: publicHost}
}

// PayloadURL builds the canonical credential payload. The credential id
// rides in the fragment so gate scanners can split it off cheaply.
func (r *Renderer) PayloadURL(eventID, holderID, ticketTypeID int64, credentialID string) string {
	return fmt.Sprintf("https://%s/event/%d/%d/%d/#%s",
		r.publicHost, eventID, holderID, ticketTypeID, credentialID)
}

// DataURL renders the payload as a PNG QR code wrapped in a base64 data URL.
func (r *Renderer) DataURL(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
