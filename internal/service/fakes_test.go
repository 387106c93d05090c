package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

var errStoreDown = errors.New("store unavailable")

func page[T any](list []*T, opts query.Options) []*T {
	if opts.Limit <= 0 {
		return list
	}
	start := opts.Skip()
	if start >= len(list) {
		return []*T{}
	}
	end := start + opts.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[string]*user.User
	err   error
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{items: map[string]*user.User{}}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.items[id]
	if !ok {
		return nil, query.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, query.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, opts query.Options) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*user.User, 0, len(f.items))
	for _, u := range f.items {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, opts), nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[u.ID] = u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[u.ID]; !ok {
		return query.ErrNotFound
	}
	f.items[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return query.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]*product.Product
}

func newFakeProducts(products ...*product.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]*product.Product{}}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) match(p *product.Product, flt product.Filter) bool {
	if flt.Company != "" && p.Company != flt.Company {
		return false
	}
	if flt.Featured != nil && p.Featured != *flt.Featured {
		return false
	}
	if flt.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(flt.Name)) {
		return false
	}
	if flt.Category != "" && p.Category != flt.Category {
		return false
	}
	return true
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, query.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []string) ([]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*product.Product
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByName(_ context.Context, name string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, query.ErrNotFound
}

func (f *fakeProducts) List(_ context.Context, flt product.Filter, opts query.Options) ([]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*product.Product
	for _, p := range f.items {
		if f.match(p, flt) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, opts), nil
}

func (f *fakeProducts) Count(_ context.Context, flt product.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.items {
		if f.match(p, flt) {
			n++
		}
	}
	return n, nil
}

func (f *fakeProducts) Create(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.ID] = p
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return query.ErrNotFound
	}
	f.items[p.ID] = p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return query.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.items))
	f.items = map[string]*product.Product{}
	return n, nil
}

type fakeCategories struct {
	mu    sync.Mutex
	items map[string]*category.Category
}

func newFakeCategories(cats ...*category.Category) *fakeCategories {
	f := &fakeCategories{items: map[string]*category.Category{}}
	for _, c := range cats {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, query.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategories) FindByName(_ context.Context, name string) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, query.ErrNotFound
}

func (f *fakeCategories) ListAll(context.Context) ([]*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*category.Category, 0, len(f.items))
	for _, c := range f.items {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (f *fakeCategories) Create(_ context.Context, c *category.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[c.ID] = c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return query.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeOrders struct {
	mu    sync.Mutex
	items map[string]*order.Order
	err   error
}

func newFakeOrders(orders ...*order.Order) *fakeOrders {
	f := &fakeOrders{items: map[string]*order.Order{}}
	for _, o := range orders {
		f.items[o.ID] = o
	}
	return f
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items[o.ID] = o
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, query.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*order.Order
	for _, o := range f.items {
		if o.User == userID {
			list = append(list, o)
		}
	}
	return list, nil
}

func (f *fakeOrders) List(_ context.Context, opts query.Options) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*order.Order, 0, len(f.items))
	for _, o := range f.items {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, opts), nil
}

func (f *fakeOrders) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, status order.Status, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return query.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return query.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeAddresses struct {
	mu    sync.Mutex
	items []*address.Address
	err   error
}

func (f *fakeAddresses) FindMatch(_ context.Context, key address.Key) (*address.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.items {
		if a.Key() == key {
			return a, nil
		}
	}
	return nil, query.ErrNotFound
}

func (f *fakeAddresses) ListAll(context.Context) ([]*address.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*address.Address(nil), f.items...), nil
}

func (f *fakeAddresses) Create(_ context.Context, a *address.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, a)
	return nil
}

func (f *fakeAddresses) DeleteMany(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.items[:0]
	var n int64
	for _, a := range f.items {
		if drop[a.ID] {
			n++
			continue
		}
		kept = append(kept, a)
	}
	f.items = kept
	return n, nil
}

type recordedEvent struct {
	key     string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{key: key, payload: payload})
	return nil
}
