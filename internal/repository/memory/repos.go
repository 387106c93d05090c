package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

// ---------- 商品 ----------

type productRepo struct {
	t *table[product.Product]
}

// NewProductRepository 创建商品仓储
func NewProductRepository() product.Repository {
	t := newTable(
		func(p *product.Product) string { return p.ID },
		func(p *product.Product) time.Time { return p.CreatedAt },
	)
	t.deepCopy = func(p *product.Product) {
		p.Variants = slices.Clone(p.Variants)
		for i, v := range p.Variants {
			if v.Price != nil {
				price := *v.Price
				p.Variants[i].Price = &price
			}
		}
	}
	return &productRepo{t: t}
}

func matchProduct(f product.Filter) func(*product.Product) bool {
	name := strings.ToLower(f.Name)
	return func(p *product.Product) bool {
		if f.Company != "" && p.Company != f.Company {
			return false
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			return false
		}
		if f.Category != "" && p.Category != f.Category {
			return false
		}
		return name == "" || strings.Contains(strings.ToLower(p.Name), name)
	}
}

// nameTaken 商品名不区分大小写唯一
func (r *productRepo) nameTaken(p *product.Product) bool {
	return len(r.t.find(func(o *product.Product) bool {
		return o.ID != p.ID && strings.EqualFold(o.Name, p.Name)
	})) > 0
}

func (r *productRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	return r.t.get(id)
}

func (r *productRepo) FindByIDs(_ context.Context, ids []string) ([]*product.Product, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.t.find(func(p *product.Product) bool { return want[p.ID] }), nil
}

func (r *productRepo) FindByName(_ context.Context, name string) (*product.Product, error) {
	rows := r.t.find(func(p *product.Product) bool { return strings.EqualFold(p.Name, name) })
	if len(rows) == 0 {
		return nil, query.ErrNotFound
	}
	return rows[0], nil
}

func (r *productRepo) List(_ context.Context, f product.Filter, opts query.Options) ([]*product.Product, error) {
	return r.t.list(matchProduct(f), opts, product.SortFields), nil
}

func (r *productRepo) Count(_ context.Context, f product.Filter) (int64, error) {
	return int64(len(r.t.find(matchProduct(f)))), nil
}

func (r *productRepo) Create(_ context.Context, p *product.Product) error {
	if r.nameTaken(p) {
		return query.ErrDuplicate
	}
	return r.t.insert(p)
}

func (r *productRepo) Update(_ context.Context, p *product.Product) error {
	if r.nameTaken(p) {
		return query.ErrDuplicate
	}
	return r.t.replace(p)
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.t.remove(id)
}

func (r *productRepo) DeleteAll(_ context.Context) (int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	n := int64(len(r.t.rows))
	r.t.rows = make(map[string]*product.Product)
	return n, nil
}

// ---------- 分类 ----------

type categoryRepo struct {
	t *table[category.Category]
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository() category.Repository {
	return &categoryRepo{t: newTable(
		func(c *category.Category) string { return c.ID },
		func(*category.Category) time.Time { return time.Time{} },
	)}
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*category.Category, error) {
	return r.t.get(id)
}

func (r *categoryRepo) FindByName(_ context.Context, name string) (*category.Category, error) {
	rows := r.t.find(func(c *category.Category) bool { return strings.EqualFold(c.Name, name) })
	if len(rows) == 0 {
		return nil, query.ErrNotFound
	}
	return rows[0], nil
}

func (r *categoryRepo) ListAll(_ context.Context) ([]*category.Category, error) {
	return r.t.find(nil), nil
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	if _, err := r.FindByName(ctx, c.Name); err == nil {
		return query.ErrDuplicate
	}
	return r.t.insert(c)
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	return r.t.remove(id)
}

// ---------- 用户 ----------

type userRepo struct {
	t *table[user.User]
}

// NewUserRepository 创建用户仓储
func NewUserRepository() user.Repository {
	return &userRepo{t: newTable(
		func(u *user.User) string { return u.ID },
		func(u *user.User) time.Time { return u.CreatedAt },
	)}
}

func (r *userRepo) emailTaken(u *user.User) bool {
	return len(r.t.find(func(o *user.User) bool { return o.ID != u.ID && o.Email == u.Email })) > 0
}

func (r *userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	return r.t.get(id)
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	rows := r.t.find(func(u *user.User) bool { return u.Email == email })
	if len(rows) == 0 {
		return nil, query.ErrNotFound
	}
	return rows[0], nil
}

func (r *userRepo) List(_ context.Context, opts query.Options) ([]*user.User, error) {
	rows := r.t.list(nil, opts, user.Fields)
	for _, u := range rows {
		u.Password = ""
	}
	return rows, nil
}

func (r *userRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.t.find(nil))), nil
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	if r.emailTaken(u) {
		return query.ErrDuplicate
	}
	return r.t.insert(u)
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	if r.emailTaken(u) {
		return query.ErrDuplicate
	}
	return r.t.replace(u)
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	return r.t.remove(id)
}

// ---------- 订单 ----------

type orderRepo struct {
	t *table[order.Order]
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository() order.Repository {
	t := newTable(
		func(o *order.Order) string { return o.ID },
		func(o *order.Order) time.Time { return o.CreatedAt },
	)
	t.deepCopy = func(o *order.Order) {
		o.Items = slices.Clone(o.Items)
	}
	return &orderRepo{t: t}
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	return r.t.insert(o)
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	return r.t.get(id)
}

func (r *orderRepo) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	return r.t.list(func(o *order.Order) bool { return o.User == userID }, query.Options{}, nil), nil
}

func (r *orderRepo) List(_ context.Context, opts query.Options) ([]*order.Order, error) {
	return r.t.list(nil, opts, order.SortFields), nil
}

func (r *orderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.t.find(nil))), nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id string, status order.Status, updatedAt time.Time) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	o, ok := r.t.rows[id]
	if !ok {
		return query.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	return r.t.remove(id)
}

// ---------- 地址 ----------

type addressRepo struct {
	t *table[address.Address]
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository() address.Repository {
	return &addressRepo{t: newTable(
		func(a *address.Address) string { return a.ID },
		func(a *address.Address) time.Time { return a.CreatedAt },
	)}
}

func (r *addressRepo) FindMatch(_ context.Context, key address.Key) (*address.Address, error) {
	rows := r.t.find(func(a *address.Address) bool { return a.Key() == key })
	if len(rows) == 0 {
		return nil, query.ErrNotFound
	}
	return rows[0], nil
}

func (r *addressRepo) ListAll(_ context.Context) ([]*address.Address, error) {
	return r.t.find(nil), nil
}

func (r *addressRepo) Create(_ context.Context, a *address.Address) error {
	return r.t.insert(a)
}

func (r *addressRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if r.t.remove(id) == nil {
			n++
		}
	}
	return n, nil
}
