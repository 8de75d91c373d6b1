package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
)

// DocumentsUseCase comprobantes de venta (PDF) y exportación del historial a planilla.
type DocumentsUseCase struct {
	movements    repository.MovementRepository
	products     repository.ProductRepository
	sellers      repository.SellerRepository
	receipts     ports.ReceiptGenerator
	exporter     ports.MovementExporter
	cal          civildate.Calendar
	businessName string
	footnote     string
}

// NewDocumentsUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentsUseCase(
	movements repository.MovementRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	receipts ports.ReceiptGenerator,
	exporter ports.MovementExporter,
	cal civildate.Calendar,
	businessName, footnote string,
) *DocumentsUseCase {
	return &DocumentsUseCase{
		movements:    movements,
		products:     products,
		sellers:      sellers,
		receipts:     receipts,
		exporter:     exporter,
		cal:          cal,
		businessName: businessName,
		footnote:     footnote,
	}
}

// DownloadReceipt genera el comprobante de una venta.
//
// Retorna:
//   - domain.ErrNotFound     si el movimiento no existe.
//   - domain.ErrInvalidInput si el movimiento no es una venta.
func (uc *DocumentsUseCase) DownloadReceipt(ctx context.Context, movementID string) (pdf []byte, filename string, err error) {
	m, err := uc.movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener movimiento: %w", err)
	}
	if m == nil {
		return nil, "", domain.NotFound("movimiento", movementID)
	}
	if m.Kind != entity.MovementSell {
		return nil, "", domain.Invalid("id", "sólo las ventas tienen comprobante")
	}

	names, err := uc.productNames(ctx)
	if err != nil {
		return nil, "", err
	}
	data := ports.ReceiptData{
		BusinessName:  uc.businessName,
		Footnote:      uc.footnote,
		MovementID:    m.ID,
		Branch:        m.Branch,
		Date:          uc.cal.Format(m.Date),
		FinalConsumer: m.FinalConsumer,
		Total:         FormatMoney(m.Amount()),
		Observations:  m.Observations,
	}
	if m.SellerID != "" {
		if s, err := uc.sellers.GetByID(ctx, m.SellerID); err == nil && s != nil {
			data.SellerName = s.Name
		}
	}
	for _, it := range saleItems(m) {
		data.Lines = append(data.Lines, ports.ReceiptLine{
			ProductName: nameOr(names, it.ProductID),
			Quantity:    it.Quantity,
			UnitPrice:   FormatMoney(it.UnitPrice),
			Subtotal:    FormatMoney(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}

	pdf, err = uc.receipts.GenerateReceipt(data)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("comprobante-%s.pdf", m.ID), nil
}

// ExportMovements planilla con todo el historial que coincide con el filtro (sin paginar).
func (uc *DocumentsUseCase) ExportMovements(ctx context.Context, req dto.MovementListRequest) (content []byte, filename, contentType string, err error) {
	filter, err := ParseMovementFilter(uc.cal, req)
	if err != nil {
		return nil, "", "", err
	}
	filter.Limit, filter.Offset = 0, 0

	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, "", "", err
	}
	names, err := uc.productNames(ctx)
	if err != nil {
		return nil, "", "", err
	}
	sellerNames := make(map[string]string)
	sellers, err := uc.sellers.List(ctx)
	if err != nil {
		return nil, "", "", err
	}
	for _, s := range sellers {
		sellerNames[s.ID] = s.Name
	}

	rows := make([]ports.ExportRow, 0, len(list))
	for _, m := range list {
		base := ports.ExportRow{
			MovementID:    m.ID,
			Date:          uc.cal.Format(m.Date),
			Kind:          string(m.Kind),
			Branch:        m.Branch,
			Destination:   m.Destination,
			SellerName:    sellerNames[m.SellerID],
			FinalConsumer: m.FinalConsumer,
			Observations:  m.Observations,
		}
		if m.Total != nil {
			base.Total = FormatMoney(*m.Total)
		}
		for _, it := range saleItems(m) {
			row := base
			row.ProductID = it.ProductID
			row.ProductName = nameOr(names, it.ProductID)
			row.Quantity = it.Quantity
			if m.Kind == entity.MovementSell || !it.UnitPrice.IsZero() {
				row.UnitPrice = FormatMoney(it.UnitPrice)
			}
			rows = append(rows, row)
		}
	}

	content, err = uc.exporter.ExportMovements(rows)
	if err != nil {
		return nil, "", "", fmt.Errorf("exportación: %w", err)
	}
	filename = fmt.Sprintf("movimientos-%s.%s", uc.cal.Format(uc.cal.Now()), uc.exporter.Extension())
	return content, filename, uc.exporter.ContentType(), nil
}

func (uc *DocumentsUseCase) productNames(ctx context.Context) (map[string]string, error) {
	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

// saleItems líneas con precio: en movimientos de un producto el precio es UnitPrice (o cero).
func saleItems(m *entity.Movement) []entity.SaleItem {
	switch p := m.Payload.(type) {
	case entity.MultiItem:
		return p.Items
	case entity.SingleItem:
		item := entity.SaleItem{ProductID: p.ProductID, Quantity: p.Quantity}
		if m.UnitPrice != nil {
			item.UnitPrice = *m.UnitPrice
		}
		return []entity.SaleItem{item}
	}
	return nil
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id + " (eliminado)"
}

var moneyPrinter = message.NewPrinter(language.Spanish)

// FormatMoney importe en pesos con separadores locales: "$ 12.345,50".
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return moneyPrinter.Sprintf("$ %.2f", f)
}
