// Package analytics contiene los casos de uso de reportes del negocio: ventas por sucursal,
// comisiones de vendedores y productos más vendidos, calculados sobre el libro de movimientos.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
)

const topProductsLimit = 10 // productos en el ranking

var hundred = decimal.NewFromInt(100)

// StatsUseCase genera el resumen de un período. El resultado se guarda en caché hasta el
// próximo movimiento aceptado.
type StatsUseCase struct {
	movements repository.MovementRepository
	products  repository.ProductRepository
	sellers   repository.SellerRepository
	cache     ports.Cache
	ttl       time.Duration
	cal       civildate.Calendar
	log       zerolog.Logger
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(
	movements repository.MovementRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	cache ports.Cache,
	ttl time.Duration,
	cal civildate.Calendar,
	log zerolog.Logger,
) *StatsUseCase {
	if cache == nil {
		cache = ports.NoopCache{}
	}
	return &StatsUseCase{
		movements: movements,
		products:  products,
		sellers:   sellers,
		cache:     cache,
		ttl:       ttl,
		cal:       cal,
		log:       log,
	}
}

// GetSummary resumen del período [from, to] (días inclusive, opcionales) y sucursal opcional.
//
// Tres lecturas en paralelo:
//  1. movimientos del período
//  2. productos (nombres)
//  3. vendedores (nombres y porcentaje de comisión)
func (uc *StatsUseCase) GetSummary(ctx context.Context, in dto.StatsSummaryRequest) (*dto.StatsSummaryResponse, error) {
	from, to, err := uc.cal.Range(in.From, in.To)
	if err != nil {
		return nil, domain.Invalid("from", err.Error())
	}
	branch := ""
	if strings.TrimSpace(in.Branch) != "" {
		b, ok := entity.NormalizeBranch(in.Branch)
		if !ok {
			return nil, domain.Invalid("branch", "sucursal desconocida")
		}
		branch = b
	}

	key := fmt.Sprintf("stats:%s:%s:%s", strings.TrimSpace(in.From), strings.TrimSpace(in.To), branch)
	var cached dto.StatsSummaryResponse
	if ok, err := uc.cache.Get(ctx, key, &cached); err != nil {
		uc.log.Warn().Err(err).Msg("lectura de caché fallida")
	} else if ok {
		return &cached, nil
	}

	// ── Lecturas en paralelo ──────────────────────────────────────────────────
	type movementsResult struct {
		list []*entity.Movement
		err  error
	}
	type productsResult struct {
		list []*entity.Product
		err  error
	}
	type sellersResult struct {
		list []*entity.Seller
		err  error
	}
	movCh := make(chan movementsResult, 1)
	prodCh := make(chan productsResult, 1)
	sellCh := make(chan sellersResult, 1)

	go func() {
		list, err := uc.movements.List(ctx, entity.MovementFilter{From: from, To: to, Branch: branch})
		movCh <- movementsResult{list, err}
	}()
	go func() {
		list, err := uc.products.ListAll(ctx)
		prodCh <- productsResult{list, err}
	}()
	go func() {
		list, err := uc.sellers.List(ctx)
		sellCh <- sellersResult{list, err}
	}()

	movs, prods, sells := <-movCh, <-prodCh, <-sellCh
	if movs.err != nil {
		return nil, fmt.Errorf("estadísticas: movimientos: %w", movs.err)
	}
	if prods.err != nil {
		return nil, fmt.Errorf("estadísticas: productos: %w", prods.err)
	}
	if sells.err != nil {
		return nil, fmt.Errorf("estadísticas: vendedores: %w", sells.err)
	}

	out := Summarize(movs.list, prods.list, sells.list)
	out.From, out.To, out.Branch = strings.TrimSpace(in.From), strings.TrimSpace(in.To), branch

	if err := uc.cache.Set(ctx, key, out, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Msg("escritura de caché fallida")
	}
	return out, nil
}

// Summarize agrega los movimientos. Los traslados se cuentan en la sucursal de origen.
// La comisión de cada vendedor es total × porcentaje / 100, redondeada a centavos.
func Summarize(movements []*entity.Movement, products []*entity.Product, sellers []*entity.Seller) *dto.StatsSummaryResponse {
	productNames := make(map[string]string, len(products))
	for _, p := range products {
		productNames[p.ID] = p.Name
	}
	sellerByID := make(map[string]*entity.Seller, len(sellers))
	for _, s := range sellers {
		sellerByID[s.ID] = s
	}

	type kindBranch struct {
		kind   entity.MovementKind
		branch string
	}
	byKind := make(map[kindBranch]*dto.KindBranchStatDTO)
	bySeller := make(map[string]*dto.SellerStatDTO)
	byProduct := make(map[string]*dto.TopProductDTO)
	out := &dto.StatsSummaryResponse{Revenue: decimal.Zero}

	for _, m := range movements {
		k := kindBranch{m.Kind, m.Branch}
		stat, ok := byKind[k]
		if !ok {
			stat = &dto.KindBranchStatDTO{Type: string(m.Kind), Branch: m.Branch, Amount: decimal.Zero}
			byKind[k] = stat
		}
		stat.Movements++
		for _, l := range m.Lines() {
			stat.Units += l.Quantity
		}
		if m.Kind != entity.MovementSell {
			continue
		}

		amount := m.Amount()
		stat.Amount = stat.Amount.Add(amount)
		out.SalesCount++
		out.Revenue = out.Revenue.Add(amount)
		if m.FinalConsumer {
			out.FinalConsumerSales++
		}

		if m.SellerID != "" {
			s, ok := bySeller[m.SellerID]
			if !ok {
				s = &dto.SellerStatDTO{SellerID: m.SellerID, Name: m.SellerID, Total: decimal.Zero, BonusPercent: decimal.Zero}
				if seller := sellerByID[m.SellerID]; seller != nil {
					s.Name, s.BonusPercent = seller.Name, seller.BonusPercent
				}
				bySeller[m.SellerID] = s
			}
			s.Sales++
			s.Total = s.Total.Add(amount)
		}

		for _, line := range lineRevenue(m) {
			p, ok := byProduct[line.productID]
			if !ok {
				name := productNames[line.productID]
				if name == "" {
					name = line.productID
				}
				p = &dto.TopProductDTO{ProductID: line.productID, Name: name, Revenue: decimal.Zero}
				byProduct[line.productID] = p
			}
			p.Units += line.quantity
			p.Revenue = p.Revenue.Add(line.revenue)
		}
	}

	out.ByKind = make([]dto.KindBranchStatDTO, 0, len(byKind))
	for _, s := range byKind {
		out.ByKind = append(out.ByKind, *s)
	}
	sort.Slice(out.ByKind, func(i, j int) bool {
		if out.ByKind[i].Type != out.ByKind[j].Type {
			return out.ByKind[i].Type < out.ByKind[j].Type
		}
		return out.ByKind[i].Branch < out.ByKind[j].Branch
	})

	out.Sellers = make([]dto.SellerStatDTO, 0, len(bySeller))
	for _, s := range bySeller {
		s.Bonus = s.Total.Mul(s.BonusPercent).Div(hundred).Round(2)
		out.Sellers = append(out.Sellers, *s)
	}
	sort.Slice(out.Sellers, func(i, j int) bool {
		if !out.Sellers[i].Total.Equal(out.Sellers[j].Total) {
			return out.Sellers[i].Total.GreaterThan(out.Sellers[j].Total)
		}
		return out.Sellers[i].SellerID < out.Sellers[j].SellerID
	})

	out.TopProducts = make([]dto.TopProductDTO, 0, len(byProduct))
	for _, p := range byProduct {
		out.TopProducts = append(out.TopProducts, *p)
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.ProductID < b.ProductID
	})
	if len(out.TopProducts) > topProductsLimit {
		out.TopProducts = out.TopProducts[:topProductsLimit]
	}
	return out
}

type soldLine struct {
	productID string
	quantity  int
	revenue   decimal.Decimal
}

// lineRevenue importe por línea. En ventas de un producto sin precio unitario se usa el total.
func lineRevenue(m *entity.Movement) []soldLine {
	switch p := m.Payload.(type) {
	case entity.MultiItem:
		out := make([]soldLine, 0, len(p.Items))
		for _, it := range p.Items {
			out = append(out, soldLine{it.ProductID, it.Quantity, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))})
		}
		return out
	case entity.SingleItem:
		return []soldLine{{p.ProductID, p.Quantity, m.Amount()}}
	}
	return nil
}
