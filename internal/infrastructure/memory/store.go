// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory (desarrollo y demos) y en los tests de casos de uso.
// Los datos se pierden al reiniciar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

// Store guarda todas las entidades. Las escrituras se serializan con txMu; las transacciones
// toman una foto de productos y libro al empezar y la restauran si fallan.
// Las lecturas fuera de transacción pueden ver escrituras aún no confirmadas.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	products    map[string]*entity.Product
	movements   []*entity.Movement
	movementIdx map[string]int
	categories  map[string]*entity.Category
	sellers     map[string]*entity.Seller
	users       map[string]*entity.User

	stockFault func(productID string) error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products:    make(map[string]*entity.Product),
		movementIdx: make(map[string]int),
		categories:  make(map[string]*entity.Category),
		sellers:     make(map[string]*entity.Seller),
		users:       make(map[string]*entity.User),
	}
}

// SetStockFault hace que UpdateStock devuelva el error de fn (nil = sin falla).
// Permite simular fallas de la proyección de saldos.
func (s *Store) SetStockFault(fn func(productID string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stockFault = fn
}

func (s *Store) Products() *ProductRepo       { return &ProductRepo{s: s} }
func (s *Store) Movements() *MovementRepo     { return &MovementRepo{s: s} }
func (s *Store) Categories() *CategoryRepo    { return &CategoryRepo{s: s} }
func (s *Store) Sellers() *SellerRepo         { return &SellerRepo{s: s} }
func (s *Store) Users() *UserRepo             { return &UserRepo{s: s} }
func (s *Store) TxRunner() inventory.TxRunner { return &txRunner{s: s} }

// write ejecuta fn con el lock de datos tomado. Fuera de una transacción también toma txMu
// para no intercalarse con una que pueda restaurar su foto.
func (s *Store) write(inTx bool, fn func() error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	products     map[string]*entity.Product
	movementsLen int
}

// Los productos y movimientos guardados nunca se modifican en el lugar (se reemplazan),
// así que alcanza con copiar el mapa y recordar el largo del libro.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make(map[string]*entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	return snapshot{products: products, movementsLen: len(s.movements)}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	for _, m := range s.movements[snap.movementsLen:] {
		delete(s.movementIdx, m.ID)
	}
	s.movements = s.movements[:snap.movementsLen]
}

type txRunner struct {
	s *Store
}

// Run ejecuta fn de forma exclusiva; si devuelve error se restaura la foto tomada al inicio.
func (r *txRunner) Run(ctx context.Context, fn func(tx inventory.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	snap := r.s.snapshot()
	if err := fn(&tx{s: r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type tx struct {
	s *Store
}

func (t *tx) Movements() repository.MovementRepository { return &MovementRepo{s: t.s, inTx: true} }
func (t *tx) Products() repository.ProductRepository   { return &ProductRepo{s: t.s, inTx: true} }

// Savepoint sólo protege productos: es lo único que la proyección escribe.
func (t *tx) Savepoint(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	snap := t.s.snapshot()
	if err := fn(&ProductRepo{s: t.s, inTx: true}); err != nil {
		t.s.mu.Lock()
		t.s.products = snap.products
		t.s.mu.Unlock()
		return err
	}
	return nil
}
