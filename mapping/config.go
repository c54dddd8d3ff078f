package mapping

import (
	"fmt"
	"sort"
)

// Config holds per-field mapping directives keyed by field name.
// Fields without an entry get the defaults: the column named after the field
// for scalars, nested derivation for composites.
type Config map[string]FieldConfig

// FieldConfig overrides how one field is mapped.
type FieldConfig struct {
	// Skip leaves the field out of both reads and writes. Required fields can
	// only be skipped by write-only derivations.
	Skip bool
	// Custom hands the field to another mapper entirely.
	Custom Mapper
	// Column overrides the column name; qualified "table.column" names are allowed.
	Column string
	// NullDiscriminator names the column whose NULL-ness decides whether an
	// optional composite field is present. Required for optional composites.
	NullDiscriminator string
	// Product configures the fields of a nested product.
	Product *ProductConfig
	// Sum configures a sum-shaped field.
	Sum *SumConfig
}

// ProductConfig configures the fields of a nested product.
type ProductConfig struct {
	Fields Config
}

// SumConfig configures a sum-shaped field.
type SumConfig struct {
	// CaseColumn names the column holding the case value.
	CaseColumn string
	// Cases converts between case values and variant names. When nil the
	// variant names themselves are stored.
	Cases CaseConversion
	// Variants overrides the configuration of individual variants. For open
	// families it is also the list of variants and every entry needs a Shape.
	Variants []VariantConfig
}

// VariantConfig configures one variant of a sum.
type VariantConfig struct {
	// Name selects a variant of a closed family. Defaults to Shape.Name.
	Name string
	// Shape is the variant's product shape. Required for open families.
	Shape *Shape
	// Fields configures the variant's fields.
	Fields Config
}

func (vc VariantConfig) name() string {
	if vc.Name == "" && vc.Shape != nil {
		return vc.Shape.Name
	}
	return vc.Name
}

// CaseConversion converts between the values stored in a case column and
// variant names.
type CaseConversion interface {
	// Variant returns the variant name for a case value read from a row.
	Variant(caseValue any) (string, error)
	// CaseValue returns the case value to store for a variant.
	CaseValue(variant string) (any, error)
}

type caseTable struct {
	byVariant map[string]any
	byCase    map[string]string
}

// CaseValues builds a CaseConversion from variant name to case value.
// Case values are compared by their string form, so an int64 read from the
// database matches an int given here.
func CaseValues(cases map[string]any) (CaseConversion, error) {
	t := &caseTable{
		byVariant: make(map[string]any, len(cases)),
		byCase:    make(map[string]string, len(cases)),
	}
	variants := make([]string, 0, len(cases))
	for v := range cases {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		key := caseKey(cases[v])
		if other, dup := t.byCase[key]; dup {
			return nil, fmt.Errorf("%w: case value %v used by %s and %s", ErrConfig, cases[v], other, v)
		}
		t.byVariant[v] = cases[v]
		t.byCase[key] = v
	}
	return t, nil
}

// MustCaseValues is like CaseValues but panics on duplicate case values.
func MustCaseValues(cases map[string]any) CaseConversion {
	c, err := CaseValues(cases)
	if err != nil {
		panic(err)
	}
	return c
}

func (t *caseTable) Variant(caseValue any) (string, error) {
	v, ok := t.byCase[caseKey(caseValue)]
	if !ok {
		return "", fmt.Errorf("%w: case value %v", ErrUnknownVariant, caseValue)
	}
	return v, nil
}

func (t *caseTable) CaseValue(variant string) (any, error) {
	c, ok := t.byVariant[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no case value", ErrUnknownVariant, variant)
	}
	return c, nil
}

// VariantNames stores variant names as case values.
type VariantNames struct{}

func (VariantNames) Variant(caseValue any) (string, error) {
	return caseKey(caseValue), nil
}

func (VariantNames) CaseValue(variant string) (any, error) {
	return variant, nil
}

func caseKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
