package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/validation"
)

const (
	defaultProductPageSize = 4
	maxCategoryQueryLen    = 20
)

var (
	errProductRequired = apperr.Validation("Name, price, company, and category are required")
	errProductExists   = apperr.Conflict("Product with the same name already exists")
	errProductNotFound = apperr.NotFound("Product not found")
	errInvalidCategory = apperr.NotFound("Invalid category")
)

// ProductInput 新建商品
type ProductInput struct {
	Name        string
	Description string
	Image       string
	Price       float64
	Featured    bool
	Rating      *float64
	Company     string
	Category    string
	Stock       int64
	Variants    []product.Variant
}

// ProductPatch 部分更新，nil 表示不修改
type ProductPatch struct {
	Name        *string
	Description *string
	Image       *string
	Price       *float64
	Featured    *bool
	Rating      *float64
	Company     *string
	Category    *string
	Stock       *int64
	Variants    *[]product.Variant
}

type ProductPage struct {
	Products      []*product.Product `json:"products"`
	Page          int                `json:"page"`
	TotalPages    int                `json:"totalPages"`
	TotalProducts int64              `json:"totalProducts"`
	Results       int                `json:"results"`
}

type ProductService struct {
	products   product.Repository
	categories category.Repository
	rules      *validation.VariantRules
	uploads    *UploadService
	now        func() time.Time
}

// NewProductService uploads 可为 nil，此时不支持上传商品图片
func NewProductService(products product.Repository, categories category.Repository, rules *validation.VariantRules, uploads *UploadService) *ProductService {
	return &ProductService{products: products, categories: categories, rules: rules, uploads: uploads, now: time.Now}
}

func (s *ProductService) List(ctx context.Context, f product.Filter, opts query.Options) (*ProductPage, error) {
	opts = opts.Normalize(defaultProductPageSize)
	list, err := s.products.List(ctx, f, opts)
	if err != nil {
		return nil, storeErr("product.list", err)
	}
	total, err := s.products.Count(ctx, f)
	if err != nil {
		return nil, storeErr("product.count", err)
	}
	return &ProductPage{
		Products:      list,
		Page:          opts.Page,
		TotalPages:    query.TotalPages(total, opts.Limit),
		TotalProducts: total,
		Results:       len(list),
	}, nil
}

// ListByCategoryName 分类名不区分大小写
func (s *ProductService) ListByCategoryName(ctx context.Context, name string) ([]*product.Product, error) {
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	if utf8.RuneCountInString(name) >= maxCategoryQueryLen {
		return nil, apperr.Validation("Invalid category length.")
	}
	c, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, lookupErr("category.find_by_name", err, "Category not found")
	}
	list, err := s.products.List(ctx, product.Filter{Category: c.ID}, query.Options{})
	if err != nil {
		return nil, storeErr("product.list", err)
	}
	if len(list) == 0 {
		return nil, apperr.NotFoundf("No products found in category: %s", name)
	}
	return list, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*product.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("product.get", err, "Product not found")
	}
	return p, nil
}

// ValidateVariants 规格必须属于分类允许的集合，未配置规则的分类不限制
func (s *ProductService) ValidateVariants(ctx context.Context, categoryID string, variants []product.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	c, err := s.category(ctx, categoryID)
	if err != nil {
		return err
	}
	return s.rules.Check(c.Name, variantSizes(variants))
}

func (s *ProductService) category(ctx context.Context, id string) (*category.Category, error) {
	if !query.ValidID(id) {
		return nil, errInvalidCategory
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("category.get", err, "Invalid category")
	}
	return c, nil
}

func variantSizes(variants []product.Variant) []string {
	sizes := make([]string, len(variants))
	for i, v := range variants {
		sizes[i] = v.Size
	}
	return sizes
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*product.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name != "" {
		if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
			return nil, err
		}
	}
	if in.Name == "" || in.Price == 0 || in.Company == "" || in.Category == "" {
		return nil, errProductRequired
	}
	err := validation.First(
		func() error { return checkName(in.Name) },
		func() error { return checkPrice(in.Price) },
		func() error { return checkRating(in.Rating) },
		func() error { return checkStock(in.Stock) },
		func() error { return checkDescription(in.Description) },
		func() error { return validation.OneOf(in.Company, "Company", product.Companies) },
		func() error { return checkVariants(in.Variants) },
	)
	if err != nil {
		return nil, err
	}

	c, err := s.category(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	if len(in.Variants) > 0 {
		if err := s.rules.Check(c.Name, variantSizes(in.Variants)); err != nil {
			return nil, err
		}
	}

	rating := product.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}
	p := &product.Product{
		ID:          query.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Featured:    in.Featured,
		Rating:      rating,
		Company:     in.Company,
		Category:    c.ID,
		Stock:       in.Stock,
		Variants:    in.Variants,
		CreatedAt:   s.now(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, writeErr("product.create", err, errProductExists.Error())
	}
	return p, nil
}

// Update 只校验并修改请求中出现的字段，规格按修改后的分类重新校验
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*product.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	err := validation.First(
		func() error {
			if patch.Name == nil {
				return nil
			}
			return checkName(strings.TrimSpace(*patch.Name))
		},
		func() error {
			if patch.Price == nil {
				return nil
			}
			return checkPrice(*patch.Price)
		},
		func() error {
			if patch.Description == nil {
				return nil
			}
			return checkDescription(*patch.Description)
		},
		func() error { return checkRating(patch.Rating) },
		func() error {
			if patch.Company == nil {
				return nil
			}
			return validation.OneOf(*patch.Company, "Company", product.Companies)
		},
		func() error {
			if patch.Stock == nil {
				return nil
			}
			return checkStock(*patch.Stock)
		},
		func() error {
			if patch.Variants == nil {
				return nil
			}
			return checkVariants(*patch.Variants)
		},
	)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("product.get", err, errProductNotFound.Error())
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.ensureNameFree(ctx, name, p.ID); err != nil {
			return nil, err
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Company != nil {
		p.Company = *patch.Company
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Variants != nil {
		p.Variants = *patch.Variants
	}
	if patch.Category != nil || patch.Variants != nil {
		categoryID := p.Category
		if patch.Category != nil {
			categoryID = *patch.Category
		}
		c, err := s.category(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if err := s.rules.Check(c.Name, variantSizes(p.Variants)); err != nil {
			return nil, err
		}
		p.Category = c.ID
	}

	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, errProductNotFound
		}
		return nil, writeErr("product.update", err, errProductExists.Error())
	}
	return p, nil
}

// AttachImage 保存图片并写回商品
func (s *ProductService) AttachImage(ctx context.Context, id string, up *Upload) (*product.Product, error) {
	if s.uploads == nil {
		return nil, errors.New("image uploads are not configured")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.uploads.Save(ctx, up)
	if err != nil {
		return nil, err
	}
	p.Image = ref
	if err := s.products.Update(ctx, p); err != nil {
		return nil, lookupErr("product.update", err, errProductNotFound.Error())
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return lookupErr("product.delete", err, errProductNotFound.Error())
	}
	return nil
}

// ReplaceAll 清空商品后按顺序写入，供 seed 工具使用
func (s *ProductService) ReplaceAll(ctx context.Context, inputs []ProductInput) (deleted int64, created []*product.Product, err error) {
	deleted, err = s.products.DeleteAll(ctx)
	if err != nil {
		return 0, nil, storeErr("product.delete_all", err)
	}
	for _, in := range inputs {
		p, err := s.Create(ctx, in)
		if err != nil {
			return deleted, created, err
		}
		created = append(created, p)
	}
	return deleted, created, nil
}

func (s *ProductService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.products.FindByName(ctx, name)
	switch {
	case errors.Is(err, query.ErrNotFound):
		return nil
	case err != nil:
		return storeErr("product.find_by_name", err)
	case existing.ID != selfID:
		return errProductExists
	}
	return nil
}

func checkName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > 30 {
		return apperr.Validation("Name must be a string of max 30 characters")
	}
	return nil
}

func checkPrice(price float64) error {
	if price <= 0 {
		return apperr.Validation("Price must be a positive number")
	}
	return nil
}

func checkRating(rating *float64) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func checkStock(stock int64) error {
	if stock < 0 {
		return apperr.Validation("Stock must be a non-negative number")
	}
	return nil
}

func checkDescription(desc string) error {
	if utf8.RuneCountInString(desc) > 1000 {
		return apperr.Validation("Description must be a string of max 1000 characters")
	}
	return nil
}

func checkVariants(variants []product.Variant) error {
	for _, v := range variants {
		if strings.TrimSpace(v.Size) == "" {
			return apperr.Validation("Each variant must have a valid size (string)")
		}
		if utf8.RuneCountInString(v.Size) > 20 {
			return apperr.Validation("Variant size must be max 20 characters")
		}
		if v.Stock < 0 {
			return apperr.Validation("Each variant must have a non-negative stock")
		}
		if v.Price != nil && *v.Price < 0 {
			return apperr.Validation("Variant price must be a non-negative number")
		}
	}
	return nil
}
