package server

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"max=100"`
	Password string `json:"password" validate:"max=72"` // bcrypt 只取前 72 字节
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"max=100"`
	Password string `json:"password" validate:"max=72"`
}

type profileRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"max=100"`
	Password string `json:"password" validate:"max=72"`
}

type orderRequest struct {
	User       string           `json:"user"`
	Items      []order.Item     `json:"items" validate:"max=100"`
	TotalPrice *float64         `json:"totalPrice"`
	Address    *address.Details `json:"address"`
}

// authView 注册/登录返回的用户信息附带令牌
type authView struct {
	*user.User
	Token string `json:"token"`
}

// selfOrAdmin 只能访问自己的资源，管理员不受限制
func selfOrAdmin(ctx iris.Context, userID string) bool {
	if middleware.UserID(ctx) == userID || middleware.Role(ctx) == user.RoleAdmin {
		return true
	}
	writeError(ctx, apperr.Forbidden("Not allowed to access another user's data"))
	return false
}

func productFilter(ctx iris.Context) product.Filter {
	f := product.Filter{
		Company:  ctx.URLParam("company"),
		Name:     ctx.URLParam("name"),
		Category: ctx.URLParam("category"),
	}
	if ctx.URLParamExists("featured") {
		featured := ctx.URLParam("featured") == "true"
		f.Featured = &featured
	}
	return f
}

// mountCommon 两个服务共用的指标、健康检查与静态目录
func mountCommon(app *iris.Application, d *Deps, server string) {
	app.UseRouter(recover.New())
	app.Use(middleware.Metrics(server))
	app.Get("/metrics", iris.FromStd(promhttp.Handler()))
	app.Get("/api/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok", "stats": service.GetMonitor().GetStats()})
	})
	up := d.Config.Upload
	if up.Backend == "" || up.Backend == "local" {
		urlPath := up.URLPath
		if urlPath == "" {
			urlPath = "/uploads"
		}
		app.HandleDir(urlPath, iris.Dir(up.Dir))
	}
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, d *Deps) {
	cfg := d.Config
	mountCommon(app, d, "web")

	read := middleware.ReadLimit(d.Limits, &cfg.RateLimit)
	write := middleware.WriteLimit(d.Limits, &cfg.RateLimit)
	authn := middleware.Authenticate(&cfg.JWT, d.TokenCache)

	api := app.Party("/api")

	// ---------- 用户 ----------

	users := api.Party("/users")

	users.Post("/register", write, func(ctx iris.Context) {
		var req registerRequest
		if !readJSON(ctx, &req) {
			return
		}
		// 前台注册一律为 customer，其他角色由后台创建
		res, err := d.Users.Register(ctx.Request().Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{
			"success": true,
			"message": "User registered successfully",
			"user":    authView{User: res.User, Token: res.Token},
		})
	})

	users.Post("/login", write, func(ctx iris.Context) {
		var req loginRequest
		if !readJSON(ctx, &req) {
			return
		}
		res, err := d.Users.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{
			"success": true,
			"message": "Login successful",
			"user":    authView{User: res.User, Token: res.Token},
		})
	})

	users.Put("/profile", write, authn, func(ctx iris.Context) {
		var req profileRequest
		if !readJSON(ctx, &req) {
			return
		}
		u, err := d.Users.UpdateProfile(ctx.Request().Context(), middleware.UserID(ctx), service.ProfileInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "message": "Profile updated successfully", "user": u})
	})

	users.Get("/{id}", authn, read, func(ctx iris.Context) {
		id := ctx.Params().Get("id")
		if !selfOrAdmin(ctx, id) {
			return
		}
		u, err := d.Users.Get(ctx.Request().Context(), id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "user": u})
	})

	users.Get("/{id}/orders", authn, read, func(ctx iris.Context) {
		id := ctx.Params().Get("id")
		if !selfOrAdmin(ctx, id) {
			return
		}
		list, err := d.Orders.ListByUser(ctx.Request().Context(), id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"orders": list})
	})

	// ---------- 商品与分类 ----------

	api.Get("/products", read, func(ctx iris.Context) {
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

	api.Get("/products/category/{name}", read, func(ctx iris.Context) {
		list, err := d.Products.ListByCategoryName(ctx.Request().Context(), ctx.Params().Get("name"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "count": len(list), "products": list})
	})

	api.Get("/products/{id}", read, func(ctx iris.Context) {
		p, err := d.Products.Get(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"success": true, "product": p})
	})

	api.Get("/categories", read, func(ctx iris.Context) {
		list, err := d.Categories.List(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	// ---------- 下单与上传 ----------

	api.Post("/orders", authn, write, func(ctx iris.Context) {
		var req orderRequest
		if !readJSON(ctx, &req) {
			return
		}
		if req.User == "" {
			req.User = middleware.UserID(ctx)
		}
		if !selfOrAdmin(ctx, req.User) {
			return
		}
		o, err := d.Orders.Create(ctx.Request().Context(), service.CreateOrderInput{
			User:       req.User,
			Items:      req.Items,
			TotalPrice: req.TotalPrice,
			Address:    req.Address,
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"message": "Order placed", "order": o})
	})

	api.Post("/uploads", authn, write, func(ctx iris.Context) {
		up, done, err := readUpload(ctx)
		defer done()
		if err != nil {
			writeError(ctx, err)
			return
		}
		ref, err := d.Uploads.Save(ctx.Request().Context(), up)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Image uploaded successfully", "imageUrl": ref})
	})
}
