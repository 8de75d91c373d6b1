// Package excel exporta el historial de movimientos como libro Excel 2003 XML (SpreadsheetML),
// que Excel y LibreOffice abren sin dependencias de formato binario.
package excel

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
)

const (
	nsSpreadsheet = "urn:schemas-microsoft-com:office:spreadsheet"
	nsOffice      = "urn:schemas-microsoft-com:office:office"
	nsExcel       = "urn:schemas-microsoft-com:office:excel"
	nsHTML        = "http://www.w3.org/TR/REC-html40"

	sheetName = "Movimientos"
)

// Encabezados en el orden de las columnas.
var headers = []string{
	"ID", "Fecha", "Tipo", "Sucursal", "Destino", "Producto ID", "Producto",
	"Cantidad", "Precio unitario", "Total", "Vendedor/a", "Consumidor final", "Observaciones",
}

// Nombres de tipo para la planilla.
var kindLabels = map[string]string{
	"add":      "Carga",
	"sell":     "Venta",
	"transfer": "Traslado",
	"shortage": "Faltante",
}

var _ ports.MovementExporter = (*SpreadsheetExporter)(nil)

// SpreadsheetExporter implementa ports.MovementExporter con beevik/etree.
type SpreadsheetExporter struct{}

// NewSpreadsheetExporter construye el exportador.
func NewSpreadsheetExporter() *SpreadsheetExporter { return &SpreadsheetExporter{} }

func (e *SpreadsheetExporter) ContentType() string { return "application/vnd.ms-excel" }
func (e *SpreadsheetExporter) Extension() string   { return "xls" }

// ExportMovements una hoja con encabezado en negrita y una fila por línea de movimiento.
func (e *SpreadsheetExporter) ExportMovements(rows []ports.ExportRow) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateProcInst("mso-application", `progid="Excel.Sheet"`)

	wb := doc.CreateElement("Workbook")
	wb.CreateAttr("xmlns", nsSpreadsheet)
	wb.CreateAttr("xmlns:o", nsOffice)
	wb.CreateAttr("xmlns:x", nsExcel)
	wb.CreateAttr("xmlns:ss", nsSpreadsheet)
	wb.CreateAttr("xmlns:html", nsHTML)

	styles := wb.CreateElement("Styles")
	header := styles.CreateElement("Style")
	header.CreateAttr("ss:ID", "header")
	font := header.CreateElement("Font")
	font.CreateAttr("ss:Bold", "1")
	interior := header.CreateElement("Interior")
	interior.CreateAttr("ss:Color", "#E6DFF0")
	interior.CreateAttr("ss:Pattern", "Solid")

	ws := wb.CreateElement("Worksheet")
	ws.CreateAttr("ss:Name", sheetName)
	table := ws.CreateElement("Table")
	table.CreateAttr("ss:ExpandedColumnCount", strconv.Itoa(len(headers)))
	table.CreateAttr("ss:ExpandedRowCount", strconv.Itoa(len(rows)+1))

	hr := table.CreateElement("Row")
	for _, h := range headers {
		c := stringCell(hr, h)
		c.CreateAttr("ss:StyleID", "header")
	}

	for _, r := range rows {
		row := table.CreateElement("Row")
		stringCell(row, r.MovementID)
		stringCell(row, r.Date)
		stringCell(row, kindLabel(r.Kind))
		stringCell(row, r.Branch)
		stringCell(row, r.Destination)
		stringCell(row, r.ProductID)
		stringCell(row, r.ProductName)
		numberCell(row, r.Quantity)
		stringCell(row, r.UnitPrice)
		stringCell(row, r.Total)
		stringCell(row, r.SellerName)
		stringCell(row, yesNo(r.FinalConsumer))
		stringCell(row, r.Observations)
	}

	opts := ws.CreateElement("WorksheetOptions")
	opts.CreateAttr("xmlns", nsExcel)
	opts.CreateElement("FreezePanes")
	opts.CreateElement("FrozenNoSplit")
	opts.CreateElement("SplitHorizontal").SetText("1")
	opts.CreateElement("TopRowBottomPane").SetText("1")

	doc.Indent(1)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("excel: serializar: %w", err)
	}
	return out, nil
}

func stringCell(row *etree.Element, v string) *etree.Element {
	c := row.CreateElement("Cell")
	d := c.CreateElement("Data")
	d.CreateAttr("ss:Type", "String")
	d.SetText(v)
	return c
}

func numberCell(row *etree.Element, v int) *etree.Element {
	c := row.CreateElement("Cell")
	d := c.CreateElement("Data")
	d.CreateAttr("ss:Type", "Number")
	d.SetText(strconv.Itoa(v))
	return c
}

func kindLabel(kind string) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	return kind
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
