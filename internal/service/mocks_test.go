package service

import (
	"context"
	"sort"

	"orderflow/internal/catalog"
	"orderflow/internal/models"
	"orderflow/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the Postgres repositories with
// transactional semantics: WithTx stages writes on a copy and publishes them
// only when the closure succeeds, so rollback behavior is observable.
type memStore struct {
	orders map[uuid.UUID]*models.Order
	items  map[uuid.UUID][]models.OrderItem
	keys   map[string]*models.IdempotencyKey

	failItemWrite error // injected fault for BulkCreate
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[uuid.UUID]*models.Order{},
		items:  map[uuid.UUID][]models.OrderItem{},
		keys:   map[string]*models.IdempotencyKey{},
	}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.failItemWrite = m.failItemWrite
	for id, o := range m.orders {
		cp := *o
		c.orders[id] = &cp
	}
	for id, rows := range m.items {
		c.items[id] = append([]models.OrderItem(nil), rows...)
	}
	for token, k := range m.keys {
		cp := *k
		c.keys[token] = &cp
	}
	return c
}

func (m *memStore) repos() *repository.Repository {
	return &repository.Repository{
		Orders:      &memOrderRepo{s: m},
		OrderItems:  &memItemRepo{s: m},
		Idempotency: &memKeyRepo{s: m},
	}
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	cp.Items = nil
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), r.s.items[id]...)
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].Position < cp.Items[j].Position })
	return &cp, nil
}

func (r *memOrderRepo) ListByEmail(_ context.Context, email string) ([]*models.Order, error) {
	var list []*models.Order
	for id, o := range r.s.orders {
		if o.CustomerEmail != email {
			continue
		}
		cp := *o
		cp.Items = append([]models.OrderItem(nil), r.s.items[id]...)
		sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].Position < cp.Items[j].Position })
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *memOrderRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.s.orders[id]
	return ok, nil
}

func (r *memOrderRepo) WithTx(ctx context.Context, fn func(repository.OrderRepo, repository.OrderItemRepo, repository.IdempotencyRepo) error) error {
	staged := r.s.clone()
	err := fn(&memOrderRepo{s: staged}, &memItemRepo{s: staged}, &memKeyRepo{s: staged})
	if err != nil {
		return err
	}
	r.s.orders = staged.orders
	r.s.items = staged.items
	r.s.keys = staged.keys
	return nil
}

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) BulkCreate(_ context.Context, items []models.OrderItem) error {
	if r.s.failItemWrite != nil {
		return r.s.failItemWrite
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		r.s.items[it.OrderID] = append(r.s.items[it.OrderID], it)
	}
	return nil
}

func (r *memItemRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows := append([]models.OrderItem(nil), r.s.items[orderID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (r *memItemRepo) SumByOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	for _, it := range r.s.items[orderID] {
		total += it.LineTotalCents
	}
	return total, nil
}

type memKeyRepo struct{ s *memStore }

func (r *memKeyRepo) Reserve(_ context.Context, token string) (*models.IdempotencyKey, bool, error) {
	if k, ok := r.s.keys[token]; ok {
		cp := *k
		return &cp, false, nil
	}
	r.s.keys[token] = &models.IdempotencyKey{Token: token, Status: models.IdempotencyStatusPending}
	return nil, true, nil
}

func (r *memKeyRepo) Complete(_ context.Context, token string, orderID uuid.UUID) error {
	k := r.s.keys[token]
	k.Status = models.IdempotencyStatusCompleted
	k.OrderID = &orderID
	return nil
}

func (r *memKeyRepo) Get(_ context.Context, token string) (*models.IdempotencyKey, error) {
	k, ok := r.s.keys[token]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

type fakeCatalog struct {
	products map[string]*catalog.Product
	err      error
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeBus struct {
	published []OrderPlacedEvent
	err       error
}

func (f *fakeBus) PublishOrderPlaced(_ context.Context, e OrderPlacedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}
