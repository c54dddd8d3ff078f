package mapping

import "github.com/lucasefe/dbmap/schema"

// Rule is the mapping of one constructor field. It is one of *Primitive,
// *Composite, *Custom or *Skip.
type Rule interface {
	// Target returns the field the rule maps.
	Target() Field
	rule()
}

type target struct {
	field Field
}

func (t target) Target() Field { return t.field }
func (target) rule()           {}

// Primitive maps a scalar field to a single column.
type Primitive struct {
	target
	Column *schema.Column
}

// Composite maps a nested product or sum.
type Composite struct {
	target
	Nullability Nullability
	Adt         Adt
}

// Custom delegates a field to another mapper.
type Custom struct {
	target
	Mapper Mapper
}

// Skip leaves a field out of reads and writes; it reads back as absent.
type Skip struct {
	target
}

// Nullability is NonNullable or Nullable.
type Nullability interface {
	nullability()
}

// NonNullable marks a composite field whose type cannot be absent.
type NonNullable struct{}

// Nullable marks an optional composite field. A NULL in Discriminator means
// the whole nested value is absent.
type Nullable struct {
	Discriminator *schema.Column
}

func (NonNullable) nullability() {}
func (Nullable) nullability()    {}

// Adt is the shape of a composite: *ProductRules or *SumRules.
type Adt interface {
	adt()
}

// ProductRules maps the fields of a nested product, in constructor order.
type ProductRules struct {
	Shape *Shape
	Rules []Rule
}

// SumRules maps each variant of a sum to its product rules.
type SumRules struct {
	Shape      *Shape
	Variants   map[string]*ProductRules
	CaseColumn *schema.Column
	Cases      CaseConversion

	order   []string
	columns []*schema.Column
}

func (*ProductRules) adt() {}
func (*SumRules) adt()     {}

// VariantNames returns the variant names in declaration order.
func (s *SumRules) VariantNames() []string {
	return append([]string(nil), s.order...)
}

// Columns returns the case column and the columns of every variant.
func (s *SumRules) Columns() []*schema.Column {
	return append([]*schema.Column(nil), s.columns...)
}

// variantOf finds the variant a value belongs to.
func (s *SumRules) variantOf(v any) (string, *ProductRules, bool) {
	for _, name := range s.order {
		p := s.Variants[name]
		if p.Shape.Match != nil && p.Shape.Match(v) {
			return name, p, true
		}
	}
	return "", nil, false
}
