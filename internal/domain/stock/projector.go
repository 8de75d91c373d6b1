// Package stock contiene la proyección de saldos: funciones puras que derivan el stock
// de cada producto y sucursal a partir del libro de movimientos.
//
// El saldo es una suma de cantidades con signo agrupadas por (producto, sucursal):
//
//	add       +q en Branch
//	sell      −q en Branch (por línea en ventas de varios productos)
//	shortage  −q en Branch
//	transfer  −q en Branch (origen), +q en Destination
//
// Al ser una suma, el resultado no depende del orden de los movimientos.
package stock

import (
	"fmt"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// Delta variación con signo del stock de un producto en una sucursal.
type Delta struct {
	ProductID string
	Branch    string
	Quantity  int
}

// Deltas devuelve las variaciones que produce un movimiento.
func Deltas(m *entity.Movement) []Delta {
	lines := m.Lines()
	out := make([]Delta, 0, len(lines)*2)
	for _, l := range lines {
		switch m.Kind {
		case entity.MovementAdd:
			out = append(out, Delta{ProductID: l.ProductID, Branch: m.Branch, Quantity: l.Quantity})
		case entity.MovementSell, entity.MovementShortage:
			out = append(out, Delta{ProductID: l.ProductID, Branch: m.Branch, Quantity: -l.Quantity})
		case entity.MovementTransfer:
			out = append(out,
				Delta{ProductID: l.ProductID, Branch: m.Branch, Quantity: -l.Quantity},
				Delta{ProductID: l.ProductID, Branch: m.Destination, Quantity: l.Quantity},
			)
		}
	}
	return out
}

// Availability stock disponible de un producto en una sucursal según los movimientos dados.
// Los movimientos que no tocan el par (producto, sucursal) se ignoran.
func Availability(movements []*entity.Movement, productID, branch string) int {
	total := 0
	for _, m := range movements {
		for _, d := range Deltas(m) {
			if d.ProductID == productID && d.Branch == branch {
				total += d.Quantity
			}
		}
	}
	return total
}

// Apply actualización incremental: aplica al producto las variaciones del movimiento que le corresponden.
// El stock global cambia por la suma de esas variaciones (un traslado lo deja igual).
// No verifica no-negatividad: el validador ya lo hizo antes de aceptar el movimiento.
func Apply(p *entity.Product, m *entity.Movement) {
	if p.StockByBranch == nil {
		p.StockByBranch = entity.EmptyBranchStock()
	}
	for _, d := range Deltas(m) {
		if d.ProductID != p.ID {
			continue
		}
		p.StockByBranch[d.Branch] += d.Quantity
		p.Stock += d.Quantity
	}
}

// Fits indica si, aplicado el movimiento, ningún saldo del producto supera entity.MaxQuantity.
// Calcula en int64 para no desbordar con saldos y cantidades cercanos al máximo.
func Fits(p *entity.Product, m *entity.Movement) bool {
	total := int64(p.Stock)
	byBranch := make(map[string]int64, len(p.StockByBranch))
	for b, q := range p.StockByBranch {
		byBranch[b] = int64(q)
	}
	for _, d := range Deltas(m) {
		if d.ProductID != p.ID {
			continue
		}
		byBranch[d.Branch] += int64(d.Quantity)
		total += int64(d.Quantity)
		if byBranch[d.Branch] > entity.MaxQuantity || total > entity.MaxQuantity {
			return false
		}
	}
	return true
}

// Orphan línea de movimiento que referencia un producto inexistente.
type Orphan struct {
	MovementID string
	ProductID  string
}

// ReplayResult resultado de una reconstrucción completa.
type ReplayResult struct {
	Products          map[string]*entity.Product
	MovementsReplayed int
	Orphans           []Orphan
}

// Replay reconstrucción completa: copia los productos, pone todos los saldos en cero y suma
// las variaciones de todos los movimientos. Los productos de entrada no se modifican.
// Es idempotente e independiente del orden de movements.
func Replay(products []*entity.Product, movements []*entity.Movement) ReplayResult {
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		c := p.Clone()
		c.ResetStock()
		byID[c.ID] = c
	}
	res := ReplayResult{Products: byID}
	for _, m := range movements {
		res.MovementsReplayed++
		for _, d := range Deltas(m) {
			p, ok := byID[d.ProductID]
			if !ok {
				res.Orphans = append(res.Orphans, Orphan{MovementID: m.ID, ProductID: d.ProductID})
				continue
			}
			p.StockByBranch[d.Branch] += d.Quantity
			p.Stock += d.Quantity
		}
	}
	return res
}

// CheckInvariants devuelve un error si el producto viola Stock == Σ sucursales, tiene sucursales
// negativas o supera entity.MaxQuantity.
func CheckInvariants(p *entity.Product) error {
	sum := 0
	for b, q := range p.StockByBranch {
		if q < 0 {
			return fmt.Errorf("producto %s: stock negativo en %s (%d)", p.ID, b, q)
		}
		if q > entity.MaxQuantity {
			return fmt.Errorf("producto %s: stock en %s fuera de rango (%d)", p.ID, b, q)
		}
		sum += q
	}
	if sum != p.Stock {
		return fmt.Errorf("producto %s: stock %d distinto de la suma por sucursal %d", p.ID, p.Stock, sum)
	}
	if p.Stock > entity.MaxQuantity {
		return fmt.Errorf("producto %s: stock global fuera de rango (%d)", p.ID, p.Stock)
	}
	return nil
}
