package barcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadURL(t *testing.T) {
	r := NewRenderer("fauves.com.br")
	url := r.PayloadURL(12, 7, 3, "0b8df6a1-3f1a-4c3f-9a40-2f3f18c2a001")
	require.Equal(t, "https://fauves.com.br/event/12/7/3/#0b8df6a1-3f1a-4c3f-9a40-2f3f18c2a001", url)
}

func TestDataURL(t *testing.T) {
	r := NewRenderer("fauves.com.br")
	dataURL, err := r.DataURL("https://fauves.com.br/event/12/7/3/#abc")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	require.Greater(t, len(dataURL), len("data:image/png;base64,"))
}
