package query

import (
	"errors"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound 仓储层统一的“记录不存在”，由各实现从驱动错误转换而来
var ErrNotFound = errors.New("record not found")

// ErrDuplicate 违反唯一索引
var ErrDuplicate = errors.New("duplicate record")

// NewID 生成 24 位十六进制 ID，mongo / mysql 两种存储共用同一格式
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID 校验 ID 格式
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// Options 列表查询参数，对应 ?sort=&select=&page=&limit=
type Options struct {
	Sort   string
	Select string
	Page   int
	Limit  int
}

// SortField 单个排序字段，Desc 对应 "-field" 写法
type SortField struct {
	Field string
	Desc  bool
}

// MaxLimit 单页最多返回的记录数
const MaxLimit = 100

// maxSkip 跳过数上限，超大页码直接落到空页而不是溢出
const maxSkip = math.MaxInt32

// Normalize 补全默认分页参数
func (o Options) Normalize(defaultLimit int) Options {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

// Skip 需要跳过的记录数，不超过 maxSkip
func (o Options) Skip() int {
	if o.Page < 1 || o.Limit < 1 {
		return 0
	}
	if o.Page-1 > maxSkip/o.Limit {
		return maxSkip
	}
	return (o.Page - 1) * o.Limit
}

// SortFields 解析 "price,-name"，不在 allowed 中的字段直接忽略
func (o Options) SortFields(allowed map[string]bool) []SortField {
	var out []SortField
	for _, raw := range splitList(o.Sort) {
		f := SortField{Field: raw}
		if strings.HasPrefix(raw, "-") {
			f = SortField{Field: raw[1:], Desc: true}
		}
		if allowed[f.Field] {
			out = append(out, f)
		}
	}
	return out
}

// SelectFields 解析 "name,price"，不在 allowed 中的字段直接忽略
func (o Options) SelectFields(allowed map[string]bool) []string {
	var out []string
	for _, f := range splitList(o.Select) {
		if allowed[f] {
			out = append(out, f)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TotalPages 向上取整
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Fields 便于声明允许排序/投影的字段集合
func Fields(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
