package middleware

import (
	"errors"
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/user"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "user_role"
)

// Authenticate 校验 Authorization: Bearer <token>，命中缓存时跳过验签
func Authenticate(cfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		header := ctx.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if token == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": "Not authorized, no token"})
			return
		}

		reqCtx := ctx.Request().Context()
		claims, hit, err := cache.Get(reqCtx, token)
		if err != nil {
			zap.L().Warn("token cache get failed", zap.Error(err))
		}
		if !hit {
			claims, err = auth.ParseToken(cfg, token)
			if err != nil {
				msg := "Not authorized, token failed"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Token expired, please login again"
				}
				ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": msg})
				return
			}
			if err := cache.Set(reqCtx, token, claims); err != nil {
				zap.L().Warn("token cache set failed", zap.Error(err))
			}
		}

		ctx.Values().Set(ctxUserID, claims.UserID)
		ctx.Values().Set(ctxRole, string(claims.Role))
		ctx.Next()
	}
}

// RequireRole 必须在 Authenticate 之后使用
func RequireRole(roles ...user.Role) iris.Handler {
	msg := "Access denied"
	if len(roles) == 1 {
		name := string(roles[0])
		msg = strings.ToUpper(name[:1]) + name[1:] + " access required"
	}
	return func(ctx iris.Context) {
		role := user.Role(ctx.Values().GetString(ctxRole))
		for _, r := range roles {
			if role == r {
				ctx.Next()
				return
			}
		}
		ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"message": msg})
	}
}

// UserID 当前登录用户
func UserID(ctx iris.Context) string {
	return ctx.Values().GetString(ctxUserID)
}

// Role 当前登录用户角色
func Role(ctx iris.Context) user.Role {
	return user.Role(ctx.Values().GetString(ctxRole))
}
