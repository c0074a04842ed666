package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/davidbz/tarifa/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Range tags compare decimals as numbers.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// DecodePricingConfig parses and validates pricing-config.json.
func DecodePricingConfig(data []byte) (PricingConfig, error) {
	var doc PricingConfig
	if err := decodeJSON(PricingConfigName, data, &doc); err != nil {
		return PricingConfig{}, err
	}
	if err := validate.Struct(doc); err != nil {
		return PricingConfig{}, validationError(PricingConfigName, err)
	}
	return doc, nil
}

// DecodeTierPrices parses and validates module-pricing.json.
func DecodeTierPrices(data []byte) (TierPrices, error) {
	var doc TierPrices
	if err := decodeJSON(TierPricesName, data, &doc); err != nil {
		return nil, err
	}
	if err := validate.Var(doc, "min=1,dive,keys,min=1,endkeys,gte=0"); err != nil {
		return nil, validationError(TierPricesName, err)
	}
	return doc, nil
}

// DecodeModules parses and validates modules-data.json.
func DecodeModules(data []byte) (Modules, error) {
	var doc Modules
	if err := decodeJSON(ModulesName, data, &doc); err != nil {
		return nil, err
	}
	if err := validate.Var(doc, "min=1,unique=ID"); err != nil {
		return nil, validationError(ModulesName, err)
	}
	for i, module := range doc {
		if err := validate.Struct(module); err != nil {
			return nil, validationError(fmt.Sprintf("%s[%d]", ModulesName, i), err)
		}
	}
	return doc, nil
}

// DecodeCategories parses and validates categories-config.json.
func DecodeCategories(data []byte) (Categories, error) {
	var doc Categories
	if err := decodeJSON(CategoriesName, data, &doc); err != nil {
		return nil, err
	}
	for key, category := range doc {
		if err := validate.Struct(category); err != nil {
			return nil, validationError(fmt.Sprintf("%s[%s]", CategoriesName, key), err)
		}
	}
	return doc, nil
}

func decodeJSON(name string, data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewConfigurationError(name, "document is empty")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ConfigurationError{Field: name, Reason: "malformed JSON", Cause: err}
	}
	return nil
}

// validationError turns the first validator failure into a ConfigurationError
// naming the offending field.
func validationError(name string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ConfigurationError{Field: name, Reason: "invalid document", Cause: err}
	}

	fe := fieldErrs[0]
	field := name
	if ns := fe.Namespace(); ns != "" {
		field = name + ":" + ns
	}

	reason := "failed " + fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}

	return &domain.ConfigurationError{Field: field, Reason: reason, Cause: err}
}
