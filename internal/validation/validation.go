package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/example/storefront/internal/apperr"
)

var (
	looseEmailRe   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	accountEmailRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
	phoneRe        = regexp.MustCompile(`^\d{10,15}$`)
	postalCodeRe   = regexp.MustCompile(`^\d{4,10}$`)
	categoryNameRe = regexp.MustCompile(`^[a-zA-Z\s\-]+$`)
)

// Rule 单条校验，nil 表示通过
type Rule func() error

// First 依次执行，返回第一个失败
func First(rules ...Rule) error {
	for _, r := range rules {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

// StringField 按去除首尾空白后的字符数校验长度
func StringField(value, name string, min, max int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return apperr.Validationf("%s is required", name)
	}
	n := utf8.RuneCountInString(trimmed)
	if n < min {
		return apperr.Validationf("%s must be at least %d characters", name, min)
	}
	if n > max {
		return apperr.Validationf("%s must be at most %d characters", name, max)
	}
	return nil
}

// MaxLength 可选字段只限制最大长度
func MaxLength(value, name string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.Validationf("%s must be at most %d characters", name, max)
	}
	return nil
}

// Email 地址簿使用的宽松格式 local@domain.tld
func Email(email string) error {
	if !looseEmailRe.MatchString(email) {
		return apperr.Validation("A valid email is required")
	}
	return nil
}

// AccountEmail 注册/登录使用的严格格式
func AccountEmail(email string) error {
	if !accountEmailRe.MatchString(email) {
		return apperr.Validation("Invalid email format")
	}
	return nil
}

// Phone 去空白后 10-15 位数字
func Phone(phone string) error {
	if !phoneRe.MatchString(strings.TrimSpace(phone)) {
		return apperr.Validation("Phone number must be a string of 10–15 digits")
	}
	return nil
}

// PostalCode 去空白后 4-10 位数字
func PostalCode(code string) error {
	if !postalCodeRe.MatchString(strings.TrimSpace(code)) {
		return apperr.Validation("Postal code must be a string of 4–10 digits")
	}
	return nil
}

// CategoryName 只允许字母、空格和连字符
func CategoryName(name string) error {
	if !categoryNameRe.MatchString(name) {
		return apperr.Validation("Category name should contain only letters, spaces, and hyphens")
	}
	return nil
}

// OneOf 枚举校验
func OneOf(value, name string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.Validation(fmt.Sprintf("%s is not allowed", name))
}
