package document

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Schema returns the JSON Schema describing the named document.
func Schema(name string) (*jsonschema.Schema, error) {
	var target any
	switch name {
	case PricingConfigName:
		target = &PricingConfig{}
	case TierPricesName:
		target = &TierPrices{}
	case ModulesName:
		target = &Modules{}
	case CategoriesName:
		target = &Categories{}
	default:
		return nil, fmt.Errorf("no schema for document %q", name)
	}

	reflector := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: true,
		Mapper:         mapDecimal,
	}

	schema := reflector.Reflect(target)
	schema.ID = jsonschema.ID("https://tarifa.dev/schemas/" + name)
	schema.Title = name
	return schema, nil
}

// Schemas returns the schema of every known document keyed by name.
func Schemas() (map[string]*jsonschema.Schema, error) {
	schemas := make(map[string]*jsonschema.Schema, len(Names()))
	for _, name := range Names() {
		schema, err := Schema(name)
		if err != nil {
			return nil, err
		}
		schemas[name] = schema
	}
	return schemas, nil
}

// mapDecimal describes decimals as plain JSON numbers.
func mapDecimal(t reflect.Type) *jsonschema.Schema {
	if t == decimalType || (t.Kind() == reflect.Ptr && t.Elem() == decimalType) {
		return &jsonschema.Schema{Type: "number"}
	}
	return nil
}
