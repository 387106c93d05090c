package validation

import (
	"strings"

	"github.com/example/storefront/internal/apperr"
)

// VariantRules 分类名 -> 允许的规格集合，分类名不区分大小写
type VariantRules struct {
	allowed map[string][]string
}

// NewVariantRules 通常由配置 variant_rules 构造
func NewVariantRules(m map[string][]string) *VariantRules {
	r := &VariantRules{allowed: make(map[string][]string, len(m))}
	for name, sizes := range m {
		r.allowed[strings.ToLower(strings.TrimSpace(name))] = append([]string(nil), sizes...)
	}
	return r
}

// Allowed 返回分类允许的规格；未配置的分类返回 false，表示不做限制
func (r *VariantRules) Allowed(categoryName string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	sizes, ok := r.allowed[strings.ToLower(categoryName)]
	return sizes, ok
}

// Check 每个规格都必须在分类允许的集合内
func (r *VariantRules) Check(categoryName string, sizes []string) error {
	allowed, ok := r.Allowed(categoryName)
	if !ok {
		return nil
	}
	for _, size := range sizes {
		if !contains(allowed, size) {
			return apperr.Validationf("Invalid variant '%s' for category '%s'. Allowed: %s",
				size, categoryName, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
