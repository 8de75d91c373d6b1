package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
)

func TestGenerateReceipt_DevuelvePDF(t *testing.T) {
	g := NewMarotoReceiptGenerator()
	doc, err := g.GenerateReceipt(ports.ReceiptData{
		BusinessName:  "Aromas Pampeanos",
		MovementID:    "0f6c2a8e-1c1b-4a57-9a0e-1b8f9c1d2e3f",
		Branch:        "Macachín",
		Date:          "10/05/2024",
		SellerName:    "Ana",
		FinalConsumer: true,
		Lines: []ports.ReceiptLine{
			{ProductName: "Vela de soja", Quantity: 2, UnitPrice: "$ 1.500,00", Subtotal: "$ 3.000,00"},
			{ProductName: "Sahumerio lavanda", Quantity: 1, UnitPrice: "$ 500,00", Subtotal: "$ 500,00"},
		},
		Total:        "$ 3.500,00",
		Observations: "envolver para regalo",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "N° 0f6c2a8e", shortID("0f6c2a8e-1c1b"))
	assert.Equal(t, "N° abc", shortID("abc"))
}
