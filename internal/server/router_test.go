package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iris-contrib/httpexpect/v2"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/infra/storage"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/service"
)

type testEnv struct {
	deps  *Deps
	web   *httpexpect.Expect
	admin *httpexpect.Expect
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	cfg.RateLimit.ReadMax = 1000
	cfg.RateLimit.WriteMax = 1000

	store, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.URLPath)
	require.NoError(t, err)
	d := NewDeps(cfg, repository.Memory(), service.NopPublisher{}, store, nil)

	webApp := iris.New()
	RegisterRoutes(webApp, d)
	adminApp := iris.New()
	RegisterAdminRoutes(adminApp, d)

	return &testEnv{deps: d, web: httptest.New(t, webApp), admin: httptest.New(t, adminApp)}
}

// adminToken 直接通过服务创建管理员
func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	res, err := env.deps.Users.Register(context.Background(), service.RegisterInput{
		Name: "Root", Email: "root@example.com", Password: "secret123", Role: user.RoleAdmin,
	})
	require.NoError(t, err)
	return res.Token
}

// register 返回用户 ID 与令牌
func (env *testEnv) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	body := env.web.POST("/api/users/register").
		WithJSON(map[string]any{"name": name, "email": email, "password": "secret123"}).
		Expect().Status(iris.StatusCreated).JSON().Object().Raw()
	u := body["user"].(map[string]any)
	return u["id"].(string), u["token"].(string)
}

func bearer(token string) string { return "Bearer " + token }

func validAddress() map[string]any {
	return map[string]any{
		"fullName":   "Ann Smith",
		"email":      "ann@example.com",
		"phone":      "0123456789",
		"street":     "1 Main Street",
		"city":       "Oslo",
		"postalCode": "0150",
		"country":    "Norway",
	}
}

// seedCatalog 通过后台接口创建分类与商品，返回商品 ID
func (env *testEnv) seedCatalog(t *testing.T, adminToken string) string {
	t.Helper()
	cat := env.admin.POST("/api/categories").WithHeader("Authorization", bearer(adminToken)).
		WithJSON(map[string]any{"name": "Clothing"}).
		Expect().Status(iris.StatusCreated).JSON().Object().Raw()
	catID := cat["category"].(map[string]any)["id"].(string)

	p := env.admin.POST("/api/products").WithHeader("Authorization", bearer(adminToken)).
		WithJSON(map[string]any{
			"name":     "Tee",
			"price":    25,
			"company":  "nike",
			"category": catID,
			"variants": []map[string]any{{"size": "M", "stock": 3}},
		}).
		Expect().Status(iris.StatusCreated).JSON().Object().Raw()
	return p["product"].(map[string]any)["id"].(string)
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	productID := env.seedCatalog(t, admin)
	userID, token := env.register(t, "Ann", "ann@example.com")

	created := env.web.POST("/api/orders").WithHeader("Authorization", bearer(token)).
		WithJSON(map[string]any{
			"items":      []map[string]any{{"product": productID, "quantity": 1, "priceAtPurchase": 25}},
			"totalPrice": 100,
			"address":    validAddress(),
		}).
		Expect().Status(iris.StatusCreated).JSON().Object().Raw()
	assert.Equal(t, "Order placed", created["message"])
	o := created["order"].(map[string]any)
	assert.Equal(t, 25.0, o["totalPrice"])
	assert.Equal(t, "pending", o["status"])
	assert.Equal(t, userID, o["user"])
	orderID := o["id"].(string)

	orders := env.web.GET("/api/users/"+userID+"/orders").WithHeader("Authorization", bearer(token)).
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	assert.Len(t, orders["orders"], 1)

	_, other := env.register(t, "Bob", "bob@example.com")
	env.web.GET("/api/users/"+userID+"/orders").WithHeader("Authorization", bearer(other)).
		Expect().Status(iris.StatusForbidden)

	env.admin.PUT("/api/orders/"+orderID+"/status").WithHeader("Authorization", bearer(admin)).
		WithJSON(map[string]any{"status": "shipped"}).
		Expect().Status(iris.StatusOK).Body().Contains(`"status":"shipped"`)
	env.admin.PUT("/api/orders/"+orderID+"/status").WithHeader("Authorization", bearer(admin)).
		WithJSON(map[string]any{"status": "shipped"}).
		Expect().Status(iris.StatusBadRequest).Body().Contains("Order is already in requested status")
	env.admin.PUT("/api/orders/"+orderID+"/status").WithHeader("Authorization", bearer(admin)).
		WithJSON(map[string]any{"status": "lost"}).
		Expect().Status(iris.StatusBadRequest).Body().Contains("Invalid status")

	list := env.admin.GET("/api/orders").WithHeader("Authorization", bearer(admin)).
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	assert.Equal(t, 1.0, list["totalOrders"])

	env.admin.DELETE("/api/orders/"+orderID).WithHeader("Authorization", bearer(admin)).
		Expect().Status(iris.StatusOK).Body().Contains("Order deleted")
	env.admin.DELETE("/api/orders/"+orderID).WithHeader("Authorization", bearer(admin)).
		Expect().Status(iris.StatusNotFound)
}

func TestOrderRejectsUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Ann", "ann@example.com")

	env.web.POST("/api/orders").WithHeader("Authorization", bearer(token)).
		WithJSON(map[string]any{
			"items":      []map[string]any{{"product": "64b7f0c2a1b2c3d4e5f60718", "quantity": 1, "priceAtPurchase": 5}},
			"totalPrice": 5,
			"address":    validAddress(),
		}).
		Expect().Status(iris.StatusNotFound).Body().Contains("not found")

	env.web.POST("/api/orders").WithHeader("Authorization", bearer(token)).
		WithJSON(map[string]any{"items": []map[string]any{}}).
		Expect().Status(iris.StatusBadRequest).Body().Contains("are required")

	env.web.POST("/api/orders").Expect().Status(iris.StatusUnauthorized)
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ann", "ann@example.com")

	env.web.POST("/api/users/register").
		WithJSON(map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret123"}).
		Expect().Status(iris.StatusConflict).Body().Contains("User already exists")

	env.web.POST("/api/users/register").
		WithJSON(map[string]any{"name": "Eve", "email": "eve@example.com", "password": strings.Repeat("x", 80)}).
		Expect().Status(iris.StatusBadRequest).Body().Contains("password must not exceed 72")

	env.web.POST("/api/users/login").
		WithJSON(map[string]any{"email": "ann@example.com", "password": "wrong-pass"}).
		Expect().Status(iris.StatusUnauthorized).Body().Contains("Invalid credentials")

	login := env.web.POST("/api/users/login").
		WithJSON(map[string]any{"email": "ann@example.com", "password": "secret123"}).
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	assert.Equal(t, "Login successful", login["message"])
	u := login["user"].(map[string]any)
	assert.Equal(t, "customer", u["role"])
	assert.NotContains(t, u, "password")

	env.web.PUT("/api/users/profile").WithHeader("Authorization", bearer(token)).
		WithJSON(map[string]any{"name": "Annie"}).
		Expect().Status(iris.StatusOK).Body().Contains(`"name":"Annie"`)

	env.web.GET("/api/users/"+userID).WithHeader("Authorization", bearer(token)).
		Expect().Status(iris.StatusOK).Body().Contains(`"email":"ann@example.com"`)

	env.web.POST("/api/users/register").WithText("{not json").
		Expect().Status(iris.StatusBadRequest).Body().Contains("Invalid request body")
}

func TestProductListing(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	productID := env.seedCatalog(t, admin)

	body := env.web.GET("/api/products").WithQuery("select", "name").
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	assert.Equal(t, 1.0, body["totalProducts"])
	items := body["products"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"id": productID, "name": "Tee"}, items[0])

	body = env.web.GET("/api/products").WithQuery("page", "9223372036854775807").
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	assert.Empty(t, body["products"])
	assert.Equal(t, 1.0, body["totalProducts"])

	env.web.GET("/api/products/category/clothing").
		Expect().Status(iris.StatusOK).Body().Contains(`"count":1`)
	env.web.GET("/api/products/category/toys").
		Expect().Status(iris.StatusNotFound).Body().Contains("Category not found")
	env.web.GET("/api/products/"+productID).Expect().Status(iris.StatusOK)
	env.web.GET("/api/products/bad-id").Expect().Status(iris.StatusBadRequest)

	env.admin.PATCH("/api/products/"+productID).WithHeader("Authorization", bearer(admin)).
		WithJSON(map[string]any{"price": 30}).
		Expect().Status(iris.StatusOK).Body().Contains(`"price":30`)
	env.admin.PATCH("/api/products/"+productID).WithHeader("Authorization", bearer(admin)).
		WithJSON(map[string]any{"variants": []map[string]any{{"size": "500ml", "stock": 1}}}).
		Expect().Status(iris.StatusBadRequest)

	env.admin.DELETE("/api/products/"+productID).WithHeader("Authorization", bearer(admin)).
		Expect().Status(iris.StatusOK).Body().Contains("Product deleted successfully")
}

func TestAdminRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Ann", "ann@example.com")

	env.admin.GET("/api/orders").Expect().Status(iris.StatusUnauthorized)
	env.admin.GET("/api/orders").WithHeader("Authorization", bearer(token)).
		Expect().Status(iris.StatusForbidden).Body().Contains("Admin access required")
	env.admin.POST("/api/addresses/dedup").WithHeader("Authorization", bearer(env.adminToken(t))).
		Expect().Status(iris.StatusOK).Body().Contains(`"deleted":0`)
}

func TestUploadAndServe(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Ann", "ann@example.com")

	body := env.web.POST("/api/uploads").WithHeader("Authorization", bearer(token)).
		WithMultipart().WithFileBytes("image", "photo.png", []byte("png-bytes")).
		Expect().Status(iris.StatusOK).JSON().Object().Raw()
	ref := body["imageUrl"].(string)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))

	env.web.GET(ref).Expect().Status(iris.StatusOK).Body().Contains("png-bytes")

	env.web.POST("/api/uploads").WithHeader("Authorization", bearer(token)).
		WithMultipart().WithFormField("note", "x").
		Expect().Status(iris.StatusBadRequest).Body().Contains("No image uploaded")
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.web.GET("/api/health").Expect().Status(iris.StatusOK).Body().Contains(`"status":"ok"`)
	env.web.GET("/metrics").Expect().Status(iris.StatusOK)
	env.admin.GET("/api/health").Expect().Status(iris.StatusOK)
}

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:  iris.StatusBadRequest,
		apperr.KindNotFound:    iris.StatusNotFound,
		apperr.KindAuth:        iris.StatusUnauthorized,
		apperr.KindForbidden:   iris.StatusForbidden,
		apperr.KindConflict:    iris.StatusConflict,
		apperr.KindRateLimited: iris.StatusTooManyRequests,
		apperr.KindUnknown:     iris.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusOf(kind), kind.String())
	}
	assert.Equal(t, iris.StatusInternalServerError, statusOf(apperr.KindOf(errors.New("boom"))))
}
