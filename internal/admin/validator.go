package admin

import (
	"github.com/go-playground/validator/v10"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	appval "github.com/xtaxx12/BGR-SHRIMP/platform/validator"
)

// registerValidations installs the catalog field rules on the shared
// validator. productcode accepts any spelling the product parser
// resolves; sizecode anything the size normalizer reads, "16-20" and
// "u15" included.
func registerValidations(val *appval.Validator) {
	_ = val.RegisterValidation("productcode", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseProduct(fl.Field().String())
		return ok
	})
	_ = val.RegisterValidation("sizecode", func(fl validator.FieldLevel) bool {
		_, ok := domain.NormalizeSize(fl.Field().String())
		return ok
	})
}
