package validation

import (
	"github.com/example/storefront/internal/datamodels/address"
)

// Address 校验完整地址，state/province 可选，返回第一个失败
func Address(d address.Details) error {
	return First(
		func() error { return StringField(d.FullName, "Full Name", 3, 50) },
		func() error { return Email(d.Email) },
		func() error { return Phone(d.Phone) },
		func() error { return StringField(d.Street, "Street", 5, 100) },
		func() error { return StringField(d.City, "City", 2, 50) },
		func() error { return PostalCode(d.PostalCode) },
		func() error { return StringField(d.Country, "Country", 2, 50) },
	)
}
