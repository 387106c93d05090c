package mysql

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once

	naming = schema.NamingStrategy{}
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			zap.L().Fatal("failed to connect mysql", zap.Error(err))
		}

		if err = db.AutoMigrate(&user.User{}, &category.Category{}, &product.Product{}, &order.Order{}, &address.Address{}); err != nil {
			zap.L().Fatal("auto migrate failed", zap.Error(err))
		}
	})
	return db
}

// translate gorm 错误转换为仓储层错误
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return query.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return query.ErrDuplicate
	}
	return err
}

// column 对外字段名（camelCase）转列名
func column(field string) string {
	return naming.ColumnName("", field)
}

// applyOptions 排序、字段筛选与分页
func applyOptions(q *gorm.DB, opts query.Options, sortable, selectable map[string]bool) *gorm.DB {
	sorts := opts.SortFields(sortable)
	if len(sorts) == 0 {
		q = q.Order("created_at DESC")
	}
	for _, f := range sorts {
		dir := " ASC"
		if f.Desc {
			dir = " DESC"
		}
		q = q.Order(column(f.Field) + dir)
	}

	if fields := opts.SelectFields(selectable); len(fields) > 0 {
		cols := make([]string, 0, len(fields)+1)
		cols = append(cols, "id")
		for _, f := range fields {
			if f != "id" {
				cols = append(cols, column(f))
			}
		}
		q = q.Select(cols)
	}

	if opts.Limit > 0 {
		q = q.Offset(opts.Skip()).Limit(opts.Limit)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern LIKE 子串匹配，转义通配符
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
