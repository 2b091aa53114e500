// Package storetest provides an in-memory store implementation for
// unit tests of the ledger services.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/store"
)

// Store is an in-memory implementation of the store interfaces.
// Zero value is not usable; create with New.
type Store struct {
	mu sync.Mutex

	products   map[id.ID]entity.Product
	warehouses []entity.Warehouse
	movements  []entity.Movement
	nextSeq    int64

	requisitions []*entity.Requisition
	sequences    map[string]int64

	alerts []entity.Alert

	// Err, when set, is returned by every read to simulate a store
	// outage.
	Err error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		products:  make(map[id.ID]entity.Product),
		sequences: make(map[string]int64),
	}
}

// AddProduct registers a catalog product.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddWarehouse registers a warehouse.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses = append(s.warehouses, w)
}

// AddMovement appends to the movement log, assigning insertion order.
func (s *Store) AddMovement(m entity.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	m.Seq = s.nextSeq
	s.movements = append(s.movements, m)
}

// Alerts returns a copy of the stored alerts.
func (s *Store) Alerts() []entity.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Requisitions returns the stored requisitions.
func (s *Store) Requisitions() []*entity.Requisition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Requisition, len(s.requisitions))
	copy(out, s.requisitions)
	return out
}

// --- store.MovementReader ---

func (s *Store) ListMovements(ctx context.Context, q store.MovementQuery) ([]entity.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	wanted := make(map[id.ID]bool, len(q.ProductIDs))
	for _, pid := range q.ProductIDs {
		wanted[pid] = true
	}

	var out []entity.Movement
	for _, m := range s.movements {
		if !wanted[m.ProductID] {
			continue
		}
		if q.WarehouseID != nil && m.WarehouseID != *q.WarehouseID {
			continue
		}
		if q.From != nil && m.OccurredAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !m.OccurredAt.Before(*q.To) {
			continue
		}
		if len(q.Kinds) > 0 && !containsKind(q.Kinds, m.Kind) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func containsKind(kinds []entity.MovementKind, k entity.MovementKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// --- store.CatalogReader ---

func (s *Store) GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, q store.ProductQuery) ([]entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []entity.Product
	for _, p := range s.products {
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}
		if q.ReorderManagedOnly && !p.MinStock.IsPositive() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *Store) ListWarehouses(ctx context.Context, activeOnly bool) ([]entity.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []entity.Warehouse
	for _, w := range s.warehouses {
		if activeOnly && !w.IsActive {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (s *Store) GetWarehouse(ctx context.Context, warehouseID id.ID) (*entity.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, w := range s.warehouses {
		if w.ID == warehouseID {
			wh := w
			return &wh, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", warehouseID.String())
}

// --- store.RequisitionStore ---

func (s *Store) NextSequence(ctx context.Context, year int, month time.Month) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	key := fmt.Sprintf("%04d-%02d", year, month)
	s.sequences[key]++
	return s.sequences[key], nil
}

func (s *Store) InsertRequisition(ctx context.Context, req *entity.Requisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.requisitions = append(s.requisitions, req)
	return nil
}

func (s *Store) GetRequisition(ctx context.Context, number string) (*entity.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, r := range s.requisitions {
		if r.Number == number {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("requisition", number)
}

// --- store.AlertStore ---

func (s *Store) FindPending(ctx context.Context, productID, warehouseID id.ID, alertType entity.AlertType) (*entity.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.alerts {
		a := s.alerts[i]
		if a.State == entity.AlertPending && a.ProductID == productID && a.WarehouseID == warehouseID && a.Type == alertType {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) Insert(ctx context.Context, alert entity.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.alerts = append(s.alerts, alert)
	return nil
}
