package inventory_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con la semántica transaccional del TxRunner de PostgreSQL:
// Run toma una foto del estado y la restaura si fn falla; los Run anidados se unen.
// ──────────────────────────────────────────────────────────────────────────────

var errInjected = errors.New("fallo inyectado")

type txKey struct{}

type memState struct {
	serials    map[string]*entity.SerialUnit
	stock      map[string]*entity.Stock
	movements  []*entity.InventoryMovement
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	lots       map[string]*entity.Lot
	kits       map[string][]entity.KitComponent
}

type memStore struct {
	st  memState
	seq int
	// failMovementAt hace fallar la N-ésima inserción de movimiento (1-based); 0 = nunca.
	failMovementAt int
	movementCalls  int
	// stockLocks registra los almacenes de cada LockOrCreate, en orden.
	stockLocks []string
}

func newMemStore() *memStore {
	return &memStore{st: memState{
		serials:    map[string]*entity.SerialUnit{},
		stock:      map[string]*entity.Stock{},
		products:   map[string]*entity.Product{},
		warehouses: map[string]*entity.Warehouse{},
		lots:       map[string]*entity.Lot{},
		kits:       map[string][]entity.KitComponent{},
	}}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func (st memState) clone() memState {
	c := memState{
		serials:    make(map[string]*entity.SerialUnit, len(st.serials)),
		stock:      make(map[string]*entity.Stock, len(st.stock)),
		movements:  make([]*entity.InventoryMovement, len(st.movements)),
		products:   make(map[string]*entity.Product, len(st.products)),
		warehouses: maps.Clone(st.warehouses),
		lots:       make(map[string]*entity.Lot, len(st.lots)),
		kits:       maps.Clone(st.kits),
	}
	for k, v := range st.serials {
		u := *v
		c.serials[k] = &u
	}
	for k, v := range st.stock {
		r := *v
		c.stock[k] = &r
	}
	copy(c.movements, st.movements)
	for k, v := range st.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range st.lots {
		l := *v
		c.lots[k] = &l
	}
	return c
}

// Run implementa inventory.TxRunner.
func (s *memStore) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if s.InTransaction(ctx) {
		return fn(ctx, s.repos())
	}
	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true), s.repos()); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *memStore) InTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *memStore) repos() inventory.Repos {
	return inventory.Repos{
		Serials:    memSerials{s},
		Stock:      memStock{s},
		Movements:  memMovements{s},
		Products:   memProducts{s},
		Warehouses: memWarehouses{s},
		Lots:       memLots{s},
	}
}

// ── helpers de fixture ───────────────────────────────────────────────────────

func (s *memStore) addProduct(p entity.Product) *entity.Product {
	if p.Kind == "" {
		p.Kind = entity.ProductKindSimple
	}
	if p.SKU == "" {
		p.SKU = p.ID
	}
	s.st.products[p.ID] = &p
	return &p
}

func (s *memStore) addWarehouse(id string, active bool) {
	status := entity.WarehouseStatusActive
	if !active {
		status = entity.WarehouseStatusInactive
	}
	s.st.warehouses[id] = &entity.Warehouse{ID: id, Name: id, Status: status}
}

func (s *memStore) stockQty(productID, warehouseID string) int64 {
	if r, ok := s.st.stock[stockKey(productID, warehouseID)]; ok {
		return r.Quantity
	}
	return 0
}

func (s *memStore) hasStockRow(productID, warehouseID string) bool {
	_, ok := s.st.stock[stockKey(productID, warehouseID)]
	return ok
}

func (s *memStore) serialBy(productID, serial string) *entity.SerialUnit {
	for _, u := range s.st.serials {
		if u.ProductID == productID && u.SerialNumber == serial && u.DeletedAt == nil {
			return u
		}
	}
	return nil
}

func (s *memStore) trueCount(productID, warehouseID string) int64 {
	var n int64
	for _, u := range s.st.serials {
		if u.ProductID == productID && u.WarehouseID == warehouseID && u.InStock() {
			n++
		}
	}
	return n
}

func (s *memStore) movementsFor(productID string) []*entity.InventoryMovement {
	var out []*entity.InventoryMovement
	for _, m := range s.st.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// ── SerialUnitRepository ─────────────────────────────────────────────────────

type memSerials struct{ s *memStore }

var _ repository.SerialUnitRepository = memSerials{}

func (r memSerials) Create(_ context.Context, u *entity.SerialUnit) error {
	if r.s.serialBy(u.ProductID, u.SerialNumber) != nil {
		return domain.ErrDuplicateSerial
	}
	if u.ID == "" {
		u.ID = r.s.nextID("serie")
	}
	c := *u
	r.s.st.serials[u.ID] = &c
	return nil
}

func (r memSerials) GetByID(_ context.Context, id string) (*entity.SerialUnit, error) {
	u, ok := r.s.st.serials[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r memSerials) GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.GetByID(ctx, id)
}

func (r memSerials) Update(_ context.Context, u *entity.SerialUnit) error {
	if _, ok := r.s.st.serials[u.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *u
	r.s.st.serials[u.ID] = &c
	return nil
}

func (r memSerials) SoftDelete(_ context.Context, id string) error {
	u, ok := r.s.st.serials[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (r memSerials) Restore(_ context.Context, id string) error {
	u, ok := r.s.st.serials[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.DeletedAt = nil
	return nil
}

func (r memSerials) ExistsActive(_ context.Context, productID, serial, excludePurchaseID string) (bool, error) {
	for _, u := range r.s.st.serials {
		if u.ProductID != productID || u.SerialNumber != serial || u.DeletedAt != nil {
			continue
		}
		if excludePurchaseID != "" && u.PurchaseID == excludePurchaseID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r memSerials) list(match func(*entity.SerialUnit) bool) []*entity.SerialUnit {
	var out []*entity.SerialUnit
	for _, u := range r.s.st.serials {
		if u.DeletedAt == nil && match(u) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out
}

func (r memSerials) ListByPurchase(_ context.Context, purchaseID, productID string) ([]*entity.SerialUnit, error) {
	return r.list(func(u *entity.SerialUnit) bool {
		return u.PurchaseID == purchaseID && (productID == "" || u.ProductID == productID)
	}), nil
}

func (r memSerials) ListBySale(_ context.Context, saleID string) ([]*entity.SerialUnit, error) {
	return r.list(func(u *entity.SerialUnit) bool { return u.SaleID == saleID }), nil
}

func (r memSerials) CountInStockByWarehouse(_ context.Context, productID string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range r.s.st.serials {
		if u.ProductID == productID && u.InStock() && u.WarehouseID != "" {
			out[u.WarehouseID]++
		}
	}
	return out, nil
}

// ── StockRepository ──────────────────────────────────────────────────────────

type memStock struct{ s *memStore }

var _ repository.StockRepository = memStock{}

func (r memStock) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	row, ok := r.s.st.stock[stockKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r memStock) LockOrCreate(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	r.s.stockLocks = append(r.s.stockLocks, warehouseID)
	k := stockKey(productID, warehouseID)
	row, ok := r.s.st.stock[k]
	if !ok {
		row = &entity.Stock{ProductID: productID, WarehouseID: warehouseID}
		r.s.st.stock[k] = row
	}
	c := *row
	return &c, nil
}

func (r memStock) Upsert(_ context.Context, st *entity.Stock) error {
	c := *st
	r.s.st.stock[stockKey(st.ProductID, st.WarehouseID)] = &c
	return nil
}

func (r memStock) ListByProductForUpdate(_ context.Context, productID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, row := range r.s.st.stock {
		if row.ProductID == productID {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (r memStock) SumByProduct(_ context.Context, productID string) (int64, error) {
	var n int64
	for _, row := range r.s.st.stock {
		if row.ProductID == productID {
			n += row.Quantity
		}
	}
	return n, nil
}

// ── InventoryMovementRepository ──────────────────────────────────────────────

type memMovements struct{ s *memStore }

var _ repository.InventoryMovementRepository = memMovements{}

func (r memMovements) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.movementCalls++
	if r.s.failMovementAt > 0 && r.s.movementCalls == r.s.failMovementAt {
		return errInjected
	}
	if m.ID == "" {
		m.ID = r.s.nextID("mov")
	}
	c := *m
	r.s.st.movements = append(r.s.st.movements, &c)
	return nil
}

func (r memMovements) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	for _, m := range r.s.st.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r memMovements) ListByProduct(_ context.Context, productID string, _, _ *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	all := r.s.movementsFor(productID)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memMovements) ListByWarehouse(_ context.Context, warehouseID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.st.movements {
		if m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type memProducts struct{ s *memStore }

var _ repository.ProductRepository = memProducts{}

func (r memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r memProducts) UpdateStock(_ context.Context, productID string, stock int64) error {
	p, ok := r.s.st.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r memProducts) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	p, ok := r.s.st.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

func (r memProducts) ListSerializedIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id, p := range r.s.st.products {
		if p.RequiresSerial {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r memProducts) ListKitComponents(_ context.Context, kitID string) ([]entity.KitComponent, error) {
	return r.s.st.kits[kitID], nil
}

func (r memProducts) FindSummaryDiscrepancies(ctx context.Context) ([]repository.SummaryDiscrepancy, error) {
	var out []repository.SummaryDiscrepancy
	for _, p := range r.s.st.products {
		if p.IsKit() {
			continue
		}
		total, _ := memStock(r).SumByProduct(ctx, p.ID)
		if total != p.Stock {
			out = append(out, repository.SummaryDiscrepancy{
				ProductID: p.ID, SKU: p.SKU, Name: p.Name,
				Summary: p.Stock, RowsTotal: total, Difference: p.Stock - total,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ── WarehouseRepository ──────────────────────────────────────────────────────

type memWarehouses struct{ s *memStore }

var _ repository.WarehouseRepository = memWarehouses{}

func (r memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

// ── LotRepository ────────────────────────────────────────────────────────────

type memLots struct{ s *memStore }

var _ repository.LotRepository = memLots{}

func (r memLots) LockByNumber(_ context.Context, productID, warehouseID, number string) (*entity.Lot, error) {
	for _, l := range r.s.st.lots {
		if l.ProductID == productID && l.WarehouseID == warehouseID && strings.EqualFold(l.Number, number) {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r memLots) Create(_ context.Context, l *entity.Lot) error {
	if l.ID == "" {
		l.ID = r.s.nextID("lote")
	}
	c := *l
	r.s.st.lots[l.ID] = &c
	return nil
}

func (r memLots) Update(_ context.Context, l *entity.Lot) error {
	c := *l
	r.s.st.lots[l.ID] = &c
	return nil
}

func (r memLots) ListAvailableForUpdate(_ context.Context, productID, warehouseID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.st.lots {
		if l.ProductID == productID && l.WarehouseID == warehouseID && l.CurrentQty > 0 {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ExpiresAt, out[j].ExpiresAt
		switch {
		case a == nil && b == nil:
			return out[i].Number < out[j].Number
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return out, nil
}
