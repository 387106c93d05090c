package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/service"
)

type productRequest struct {
	Name        string            `json:"name" validate:"max=100"`
	Description string            `json:"description"`
	Image       string            `json:"image" validate:"max=255"`
	Price       float64           `json:"price"`
	Featured    bool              `json:"featured"`
	Rating      *float64          `json:"rating"`
	Company     string            `json:"company"`
	Category    string            `json:"category"`
	Stock       int64             `json:"stock"`
	Variants    []product.Variant `json:"variants" validate:"max=50"`
}

func (r productRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		Price:       r.Price,
		Featured:    r.Featured,
		Rating:      r.Rating,
		Company:     r.Company,
		Category:    r.Category,
		Stock:       r.Stock,
		Variants:    r.Variants,
	}
}

// productPatchRequest 字段缺省表示不修改
type productPatchRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Image       *string            `json:"image"`
	Price       *float64           `json:"price"`
	Featured    *bool              `json:"featured"`
	Rating      *float64           `json:"rating"`
	Company     *string            `json:"company"`
	Category    *string            `json:"category"`
	Stock       *int64             `json:"stock"`
	Variants    *[]product.Variant `json:"variants"`
}

func (r productPatchRequest) patch() service.ProductPatch {
	return service.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		Price:       r.Price,
		Featured:    r.Featured,
		Rating:      r.Rating,
		Company:     r.Company,
		Category:    r.Category,
		Stock:       r.Stock,
		Variants:    r.Variants,
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=255"`
}

type statusRequest struct {
	Status string `json:"status" validate:"max=32"`
}

// RegisterAdminRoutes 注册后台管理端路由，全部要求 admin 角色
// 与前台服务分端口部署，令牌由前台登录接口签发
func RegisterAdminRoutes(app *iris.Application, d *Deps) {
	cfg := d.Config
	mountCommon(app, d, "admin")

	api := app.Party("/api",
		middleware.Authenticate(&cfg.JWT, d.TokenCache),
		middleware.RequireRole(user.RoleAdmin),
	)

	// ---------- 商品管理 ----------

	api.Get("/products", func(ctx iris.Context) {
		opts := listOptions(ctx)
		page, err := d.Products.List(ctx.Request().Context(), productFilter(ctx), opts)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{
			"products":      project(page.Products, opts.SelectFields(product.Fields)),
			"page":          page.Page,
			"totalPages":    page.TotalPages,
			"totalProducts": page.TotalProducts,
			"results":       page.Results,
		})
	})

	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if !readJSON(ctx, &req) {
			return
		}
		p, err := d.Products.Create(ctx.Request().Context(), req.input())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"success": true, "message": "Product created successfully", "product": p})
	})

	api.Patch("/products/{id}", func(ctx iris.Context) {
		var req productPatchRequest
		if !readJSON(ctx, &req) {
			return
		}
		p, err := d.Products.Update(ctx.Request().Context(), ctx.Params().Get("id"), req.patch())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "message": "Product updated successfully", "product": p})
	})

	api.Post("/products/{id}/image", func(ctx iris.Context) {
		up, done, err := readUpload(ctx)
		defer done()
		if err != nil {
			writeError(ctx, err)
			return
		}
		p, err := d.Products.AttachImage(ctx.Request().Context(), ctx.Params().Get("id"), up)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "message": "Image uploaded successfully", "product": p})
	})

	api.Delete("/products/{id}", func(ctx iris.Context) {
		if err := d.Products.Delete(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "message": "Product deleted successfully"})
	})

	// ---------- 分类管理 ----------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := d.Categories.List(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req categoryRequest
		if !readJSON(ctx, &req) {
			return
		}
		c, err := d.Categories.Create(ctx.Request().Context(), req.Name, req.Description)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"message": "Category created", "category": c})
	})

	api.Delete("/categories/{id}", func(ctx iris.Context) {
		if err := d.Categories.Delete(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Category deleted"})
	})

	// ---------- 用户管理 ----------

	api.Get("/users", func(ctx iris.Context) {
		opts := listOptions(ctx)
		page, err := d.Users.List(ctx.Request().Context(), opts)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{
			"result":     project(page.Users, opts.SelectFields(user.Fields)),
			"page":       page.Page,
			"totalPages": page.TotalPages,
			"totalUsers": page.TotalUsers,
			"results":    page.Results,
		})
	})

	// 后台创建账号可以指定角色
	api.Post("/users", func(ctx iris.Context) {
		var req registerRequest
		if !readJSON(ctx, &req) {
			return
		}
		res, err := d.Users.Register(ctx.Request().Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     user.Role(req.Role),
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"success": true, "message": "User created successfully", "user": res.User})
	})

	api.Delete("/users/{id}", func(ctx iris.Context) {
		if err := d.Users.Delete(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "User deleted successfully"})
	})

	// ---------- 订单管理 ----------

	api.Get("/orders", func(ctx iris.Context) {
		opts := listOptions(ctx)
		page, err := d.Orders.List(ctx.Request().Context(), opts)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{
			"orders":      project(page.Orders, opts.SelectFields(order.Fields)),
			"page":        page.Page,
			"totalPages":  page.TotalPages,
			"totalOrders": page.TotalOrders,
			"results":     page.Results,
		})
	})

	api.Put("/orders/{id}/status", func(ctx iris.Context) {
		var req statusRequest
		if !readJSON(ctx, &req) {
			return
		}
		o, err := d.Orders.UpdateStatus(ctx.Request().Context(), ctx.Params().Get("id"), req.Status)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Order status updated", "order": o})
	})

	api.Delete("/orders/{id}", func(ctx iris.Context) {
		if err := d.Orders.Delete(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Order deleted"})
	})

	// ---------- 地址簿 ----------

	api.Post("/addresses/dedup", func(ctx iris.Context) {
		n, err := d.Addresses.RemoveDuplicates(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Duplicate addresses removed", "deleted": n})
	})
}
