package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/validation"
)

var (
	clothingID = query.NewID()
	gadgetsID  = query.NewID()
	drinksID   = query.NewID()
)

type productFixture struct {
	svc        *ProductService
	products   *fakeProducts
	categories *fakeCategories
}

func newProductFixture(products ...*product.Product) *productFixture {
	f := &productFixture{
		products: newFakeProducts(products...),
		categories: newFakeCategories(
			&category.Category{ID: clothingID, Name: "Clothing"},
			&category.Category{ID: gadgetsID, Name: "gadgets"},
			&category.Category{ID: drinksID, Name: "Drinks"},
		),
	}
	rules := validation.NewVariantRules(config.DefaultConfig().VariantRules)
	f.svc = NewProductService(f.products, f.categories, rules, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func shirtInput() ProductInput {
	return ProductInput{
		Name:     "Basic Tee",
		Price:    19.99,
		Company:  "zara",
		Category: clothingID,
		Stock:    10,
		Variants: []product.Variant{{Size: "M", Stock: 4}, {Size: "L", Stock: 6}},
	}
}

func TestValidateVariants(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	assert.NoError(t, f.svc.ValidateVariants(ctx, query.NewID(), nil))
	assert.NoError(t, f.svc.ValidateVariants(ctx, clothingID, []product.Variant{{Size: "S"}, {Size: "XL"}}))
	assert.NoError(t, f.svc.ValidateVariants(ctx, gadgetsID, []product.Variant{{Size: "anything"}}))

	err := f.svc.ValidateVariants(ctx, clothingID, []product.Variant{{Size: "M"}, {Size: "XXL"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Invalid variant 'XXL' for category 'Clothing'. Allowed: S, M, L, XL", apperr.MessageOf(err))

	err = f.svc.ValidateVariants(ctx, query.NewID(), []product.Variant{{Size: "M"}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateProduct(t *testing.T) {
	f := newProductFixture()

	p, err := f.svc.Create(context.Background(), shirtInput())
	require.NoError(t, err)
	assert.Equal(t, product.DefaultRating, p.Rating)
	assert.Equal(t, clothingID, p.Category)
	assert.True(t, query.ValidID(p.ID))
	assert.Contains(t, f.products.items, p.ID)
}

func TestCreateProductValidation(t *testing.T) {
	rating := 6.0
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		kind   apperr.Kind
		msg    string
	}{
		{"missing company", func(in *ProductInput) { in.Company = "" }, apperr.KindValidation, "Name, price, company, and category are required"},
		{"long name", func(in *ProductInput) { in.Name = "a very long product name over thirty" }, apperr.KindValidation, "Name must be a string of max 30 characters"},
		{"negative price", func(in *ProductInput) { in.Price = -1 }, apperr.KindValidation, "Price must be a positive number"},
		{"rating out of range", func(in *ProductInput) { in.Rating = &rating }, apperr.KindValidation, "Rating must be between 1 and 5"},
		{"negative stock", func(in *ProductInput) { in.Stock = -3 }, apperr.KindValidation, "Stock must be a non-negative number"},
		{"unknown company", func(in *ProductInput) { in.Company = "acme" }, apperr.KindValidation, "Company is not allowed"},
		{"blank variant size", func(in *ProductInput) { in.Variants = []product.Variant{{Size: ""}} }, apperr.KindValidation, "Each variant must have a valid size (string)"},
		{"variant not allowed", func(in *ProductInput) { in.Variants = []product.Variant{{Size: "500ml"}} }, apperr.KindValidation, "Invalid variant '500ml' for category 'Clothing'. Allowed: S, M, L, XL"},
		{"unknown category", func(in *ProductInput) { in.Category = query.NewID() }, apperr.KindNotFound, "Invalid category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			in := shirtInput()
			tt.mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.MessageOf(err))
			assert.Empty(t, f.products.items)
		})
	}
}

func TestCreateProductDuplicateName(t *testing.T) {
	f := newProductFixture(&product.Product{ID: query.NewID(), Name: "basic tee"})

	_, err := f.svc.Create(context.Background(), shirtInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Product with the same name already exists", apperr.MessageOf(err))
}

func TestUpdateProductRevalidatesVariantsAgainstNewCategory(t *testing.T) {
	id := query.NewID()
	f := newProductFixture(&product.Product{
		ID: id, Name: "Cola", Price: 2, Company: "coca-cola", Category: gadgetsID,
		Variants: []product.Variant{{Size: "500ml"}},
	})

	clothing := clothingID
	_, err := f.svc.Update(context.Background(), id, ProductPatch{Category: &clothing})
	require.Error(t, err)
	assert.Contains(t, apperr.MessageOf(err), "Invalid variant '500ml'")

	drinks := drinksID
	price := 2.5
	p, err := f.svc.Update(context.Background(), id, ProductPatch{Category: &drinks, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, drinksID, p.Category)
	assert.Equal(t, 2.5, f.products.items[id].Price)
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newProductFixture()
	price := 3.0

	_, err := f.svc.Update(context.Background(), query.NewID(), ProductPatch{Price: &price})
	assert.Equal(t, "Product not found", apperr.MessageOf(err))

	_, err = f.svc.Update(context.Background(), "nope", ProductPatch{Price: &price})
	assert.Equal(t, "Invalid ID format", apperr.MessageOf(err))
}

func TestListByCategoryName(t *testing.T) {
	f := newProductFixture(&product.Product{ID: query.NewID(), Name: "Tee", Category: clothingID})
	ctx := context.Background()

	list, err := f.svc.ListByCategoryName(ctx, "CLOTHING")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListByCategoryName(ctx, "drinks")
	assert.Equal(t, "No products found in category: drinks", apperr.MessageOf(err))

	_, err = f.svc.ListByCategoryName(ctx, "toys")
	assert.Equal(t, "Category not found", apperr.MessageOf(err))

	_, err = f.svc.ListByCategoryName(ctx, "abcdefghijklmnopqrst")
	assert.Equal(t, "Invalid category length.", apperr.MessageOf(err))
}

func TestListProducts(t *testing.T) {
	featured := true
	f := newProductFixture(
		&product.Product{ID: query.NewID(), Name: "Air Max", Company: "nike", Featured: true},
		&product.Product{ID: query.NewID(), Name: "Air Force", Company: "nike"},
		&product.Product{ID: query.NewID(), Name: "Galaxy", Company: "samsung", Featured: true},
	)

	res, err := f.svc.List(context.Background(), product.Filter{Company: "nike", Featured: &featured}, query.Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.TotalProducts)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)

	res, err = f.svc.List(context.Background(), product.Filter{Name: "air"}, query.Options{Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalProducts)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 1, res.Results)
}

func TestDeleteProduct(t *testing.T) {
	id := query.NewID()
	f := newProductFixture(&product.Product{ID: id, Name: "Tee"})

	require.NoError(t, f.svc.Delete(context.Background(), id))
	assert.Equal(t, "Product not found", apperr.MessageOf(f.svc.Delete(context.Background(), id)))
}

func TestReplaceAll(t *testing.T) {
	f := newProductFixture(&product.Product{ID: query.NewID(), Name: "Old"})

	deleted, created, err := f.svc.ReplaceAll(context.Background(), []ProductInput{shirtInput()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	require.Len(t, created, 1)
	assert.Len(t, f.products.items, 1)
}
