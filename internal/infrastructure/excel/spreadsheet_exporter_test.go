package excel

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
)

func TestExportMovements_EncabezadoYFilas(t *testing.T) {
	e := NewSpreadsheetExporter()
	out, err := e.ExportMovements([]ports.ExportRow{
		{MovementID: "m1", Date: "10/05/2024", Kind: "sell", Branch: "Santa Rosa", ProductID: "p1",
			ProductName: "Vela <soja> & coco", Quantity: 2, UnitPrice: "$ 1.500,00", FinalConsumer: true},
		{MovementID: "m2", Date: "10/05/2024", Kind: "transfer", Branch: "Santa Rosa", Destination: "Macachín",
			ProductID: "p1", ProductName: "Vela", Quantity: 4},
	})
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	rows := doc.FindElements("//Worksheet/Table/Row")
	require.Len(t, rows, 3)

	cells := func(row *etree.Element) []string {
		var out []string
		for _, d := range row.FindElements("Cell/Data") {
			out = append(out, d.Text())
		}
		return out
	}
	assert.Equal(t, headers, cells(rows[0]))

	first := cells(rows[1])
	assert.Equal(t, "Venta", first[2])
	assert.Equal(t, "Vela <soja> & coco", first[6])
	assert.Equal(t, "2", first[7])
	assert.Equal(t, "Sí", first[11])

	second := cells(rows[2])
	assert.Equal(t, "Traslado", second[2])
	assert.Equal(t, "Macachín", second[4])
	assert.Equal(t, "No", second[11])
}

func TestExportMovements_SinFilas(t *testing.T) {
	out, err := NewSpreadsheetExporter().ExportMovements(nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Len(t, doc.FindElements("//Table/Row"), 1)
	assert.Equal(t, "application/vnd.ms-excel", NewSpreadsheetExporter().ContentType())
}
