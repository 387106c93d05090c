package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/service"
)

var validate = newValidator()

// newValidator 错误信息使用 json 字段名
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return iris.StatusBadRequest
	case apperr.KindNotFound:
		return iris.StatusNotFound
	case apperr.KindAuth:
		return iris.StatusUnauthorized
	case apperr.KindForbidden:
		return iris.StatusForbidden
	case apperr.KindConflict:
		return iris.StatusConflict
	case apperr.KindRateLimited:
		return iris.StatusTooManyRequests
	}
	return iris.StatusInternalServerError
}

// writeError 业务错误按分类返回，其余记录日志后统一返回 500
func writeError(ctx iris.Context, err error) {
	status := statusOf(apperr.KindOf(err))
	if status == iris.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err))
		ctx.StopWithJSON(status, iris.Map{"message": "Something went wrong"})
		return
	}
	ctx.StopWithJSON(status, iris.Map{"message": apperr.MessageOf(err)})
}

// readJSON 解析并做结构校验，失败时已写回 400
func readJSON(ctx iris.Context, v any) bool {
	if err := ctx.ReadJSON(v); err != nil {
		writeError(ctx, apperr.Validation("Invalid request body"))
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(ctx, apperr.Validation(fieldMessage(verrs[0])))
			return false
		}
		writeError(ctx, err)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// listOptions 读取 ?sort=&select=&page=&limit=
func listOptions(ctx iris.Context) query.Options {
	return query.Options{
		Sort:   ctx.URLParam("sort"),
		Select: ctx.URLParam("select"),
		Page:   ctx.URLParamIntDefault("page", 0),
		Limit:  ctx.URLParamIntDefault("limit", 0),
	}
}

// project 按 select 只输出指定字段，id 始终保留
func project[T any](list []*T, fields []string) any {
	if len(fields) == 0 {
		return list
	}
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		keep[f] = true
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		full := map[string]any{}
		if err := json.Unmarshal(b, &full); err != nil {
			continue
		}
		m := make(map[string]any, len(keep))
		for k, v := range full {
			if keep[k] {
				m[k] = v
			}
		}
		out = append(out, m)
	}
	return out
}

// readUpload 读取 multipart 中的 image 字段，未上传时返回 nil
func readUpload(ctx iris.Context) (*service.Upload, func(), error) {
	file, header, err := ctx.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Validation("Invalid upload")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}
