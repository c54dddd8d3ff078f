package mapping

import (
	"fmt"
	"log/slog"

	"github.com/lucasefe/dbmap/schema"
)

// DeriveOption configures Derive.
type DeriveOption func(*deriveOptions)

type deriveOptions struct {
	config    Config
	custom    map[string]Mapper
	writeOnly bool
	logger    *slog.Logger
}

// WithConfig sets the per-field directives of the top-level shape.
func WithConfig(config Config) DeriveOption {
	return func(o *deriveOptions) {
		o.config = config
	}
}

// WithCustomRule maps a top-level field with m. It takes precedence over
// any configuration of the same field.
func WithCustomRule(field string, m Mapper) DeriveOption {
	return func(o *deriveOptions) {
		if o.custom == nil {
			o.custom = make(map[string]Mapper)
		}
		o.custom[field] = m
	}
}

// WriteOnly derives a tree that is only used for writes, which allows
// required fields to be skipped.
func WriteOnly() DeriveOption {
	return func(o *deriveOptions) {
		o.writeOnly = true
	}
}

// WithLogger sets the logger for configuration warnings.
func WithLogger(logger *slog.Logger) DeriveOption {
	return func(o *deriveOptions) {
		o.logger = logger
	}
}

type deriver struct {
	registry  *Registry
	writeOnly bool
	logger    *slog.Logger
}

// Derive builds the mapping tree of a product shape against the columns of
// registry. All configuration problems are reported here; a returned tree
// never fails for structural reasons at read or write time.
func Derive(shape *Shape, registry *Registry, opts ...DeriveOption) (*Tree, error) {
	o := &deriveOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	d := &deriver{registry: registry, writeOnly: o.writeOnly, logger: o.logger}
	rules, err := d.product(shape, o.config, o.custom, shape.String())
	if err != nil {
		return nil, err
	}
	return newTree(shape, rules), nil
}

func (d *deriver) product(shape *Shape, config Config, custom map[string]Mapper, path string) ([]Rule, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: %s has no shape", ErrConfig, path)
	}
	if shape.Kind != ProductShape {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotInstantiable, path, shape.Kind)
	}
	if shape.Construct == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoConstructor, path)
	}

	params := make(map[string]bool, len(shape.Params))
	for _, p := range shape.Params {
		params[p.Name] = true
	}
	for name := range config {
		if !params[name] {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrConfig, path, name)
		}
	}

	rules := make([]Rule, 0, len(shape.Params))
	for _, p := range shape.Params {
		fieldPath := path + "." + p.Name

		f, ok := shape.Field(p.Name)
		if !ok {
			return nil, fmt.Errorf("%w: constructor parameter %s is not a field of %s", ErrTypeMismatch, p.Name, shape.Name)
		}

		if m, ok := custom[p.Name]; ok {
			rules = append(rules, &Custom{target: target{f}, Mapper: m})
			continue
		}

		if f.Shape != p.Shape || f.Optional != p.Optional {
			return nil, fmt.Errorf("%w: %s is %s but the constructor takes %s",
				ErrTypeMismatch, fieldPath, describe(f.Shape, f.Optional), describe(p.Shape, p.Optional))
		}

		r, err := d.field(f, config[p.Name], fieldPath)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (d *deriver) field(f Field, fc FieldConfig, path string) (Rule, error) {
	if f.Shape == nil {
		return nil, fmt.Errorf("%w: %s has no shape", ErrConfig, path)
	}
	if err := d.check(f, fc, path); err != nil {
		return nil, err
	}

	if fc.Skip {
		return &Skip{target: target{f}}, nil
	}
	if fc.Custom != nil {
		return &Custom{target: target{f}, Mapper: fc.Custom}, nil
	}

	if f.Shape.Kind == ScalarShape {
		name := f.Name
		if fc.Column != "" {
			name = fc.Column
		}
		col, err := d.column(name, f, path)
		if err != nil {
			return nil, err
		}
		return &Primitive{target: target{f}, Column: col}, nil
	}

	var nullability Nullability = NonNullable{}
	if f.Optional {
		if fc.NullDiscriminator == "" {
			return nil, fmt.Errorf("%w: %s is an optional %s and needs a null discriminator", ErrMissingDiscriminator, path, f.Shape.Name)
		}
		col, err := d.column(fc.NullDiscriminator, f, path)
		if err != nil {
			return nil, err
		}
		nullability = Nullable{Discriminator: col}
	}

	var adt Adt
	if f.Shape.Kind == SumShape {
		sum, err := d.sum(f.Shape, fc.Sum, path)
		if err != nil {
			return nil, err
		}
		adt = sum
	} else {
		var nested Config
		if fc.Product != nil {
			nested = fc.Product.Fields
		}
		rules, err := d.product(f.Shape, nested, nil, path)
		if err != nil {
			return nil, err
		}
		adt = &ProductRules{Shape: f.Shape, Rules: rules}
	}

	if n, ok := nullability.(Nullable); ok {
		var nested columnSet
		nested.addAdt(adt)
		if !nested.seen[n.Discriminator] {
			d.logger.Warn("null discriminator is not written by the nested structure and stays unset when the value is present",
				"field", path, "type", f.Shape.Name, "column", n.Discriminator.QualifiedName())
		}
	}

	return &Composite{target: target{f}, Nullability: nullability, Adt: adt}, nil
}

// check validates a field's directives against its shape and optionality.
func (d *deriver) check(f Field, fc FieldConfig, path string) error {
	if f.Optional {
		if fc.Skip && (fc.NullDiscriminator != "" || fc.Product != nil || fc.Sum != nil) {
			d.logger.Warn("null discriminator and sub-structure config are unnecessary when skip is set",
				"field", path, "type", f.Shape.Name)
		}
	} else {
		if fc.Skip && !d.writeOnly {
			return fmt.Errorf("%w: %s", ErrSkipRequired, path)
		}
		if fc.NullDiscriminator != "" {
			return fmt.Errorf("%w: %s", ErrUnexpectedDiscriminator, path)
		}
	}

	switch f.Shape.Kind {
	case ScalarShape:
		if fc.NullDiscriminator != "" && f.Optional {
			d.logger.Warn("null discriminator is set for a primitive field and will be ignored",
				"field", path, "type", f.Shape.Name)
		}
		if fc.Product != nil || fc.Sum != nil {
			d.logger.Warn("sub-structure config is set for a primitive field and will be ignored",
				"field", path, "type", f.Shape.Name)
		}
	case ProductShape:
		if fc.Sum != nil {
			return fmt.Errorf("%w: %s is the product %s and cannot be configured as a sum", ErrNotInheritable, path, f.Shape.Name)
		}
	case SumShape:
		if fc.Product != nil {
			return fmt.Errorf("%w: %s is the family %s and cannot be configured as a product", ErrNotInstantiable, path, f.Shape.Name)
		}
	}
	return nil
}

func (d *deriver) sum(shape *Shape, sc *SumConfig, path string) (*SumRules, error) {
	if sc == nil || sc.CaseColumn == "" {
		return nil, fmt.Errorf("%w: %s is the family %s and needs a case discriminator", ErrMissingDiscriminator, path, shape.Name)
	}
	caseColumn, ok := d.registry.Lookup(sc.CaseColumn)
	if !ok {
		return nil, fmt.Errorf("%w: case column %q for %s does not exist in tables %v", ErrMissingColumn, sc.CaseColumn, path, d.registry.TableNames())
	}

	overrides := make(map[string]Config, len(sc.Variants))
	var leaves []*Shape
	if shape.Closed {
		var err error
		leaves, err = shape.Leaves()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		known := make(map[string]bool, len(leaves))
		for _, l := range leaves {
			known[l.Name] = true
		}
		for _, vc := range sc.Variants {
			name := vc.name()
			switch {
			case vc.Shape != nil && vc.Shape.Kind == SumShape, shape.family(name):
				return nil, fmt.Errorf("%w: variant %s of %s is itself a family", ErrNotInheritable, name, path)
			case !known[name]:
				return nil, fmt.Errorf("%w: %s is not a variant of %s", ErrConfig, name, shape.Name)
			}
			overrides[name] = vc.Fields
		}
	} else {
		if len(sc.Variants) == 0 {
			return nil, fmt.Errorf("%w: %s is the open family %s", ErrVariantsUnspecified, path, shape.Name)
		}
		for _, vc := range sc.Variants {
			if vc.Shape == nil {
				return nil, fmt.Errorf("%w: variant %q of open family %s needs a shape", ErrConfig, vc.Name, shape.Name)
			}
			if vc.Shape.Kind == SumShape {
				return nil, fmt.Errorf("%w: variant %s of %s is itself a family", ErrNotInheritable, vc.Shape.Name, path)
			}
			leaves = append(leaves, vc.Shape)
			overrides[vc.name()] = vc.Fields
		}
	}

	cases := sc.Cases
	if cases == nil {
		cases = VariantNames{}
	}
	rules := &SumRules{
		Shape:      shape,
		Variants:   make(map[string]*ProductRules, len(leaves)),
		CaseColumn: caseColumn,
		Cases:      cases,
	}
	for _, leaf := range leaves {
		if _, dup := rules.Variants[leaf.Name]; dup {
			return nil, fmt.Errorf("%w: variant %s of %s listed twice", ErrConfig, leaf.Name, shape.Name)
		}
		if _, err := cases.CaseValue(leaf.Name); err != nil {
			return nil, fmt.Errorf("%w: variant %s of %s has no case value", ErrConfig, leaf.Name, path)
		}
		variantRules, err := d.product(leaf, overrides[leaf.Name], nil, path+"<"+leaf.Name+">")
		if err != nil {
			return nil, err
		}
		rules.Variants[leaf.Name] = &ProductRules{Shape: leaf, Rules: variantRules}
		rules.order = append(rules.order, leaf.Name)
	}

	var cols columnSet
	cols.addAdt(rules)
	rules.columns = cols.cols
	return rules, nil
}

func (d *deriver) column(name string, f Field, path string) (*schema.Column, error) {
	col, ok := d.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: column %q for field %s of type %s does not exist in tables %v",
			ErrMissingColumn, name, path, f.Shape.Name, d.registry.TableNames())
	}
	return col, nil
}

func describe(s *Shape, optional bool) string {
	if optional {
		return "optional " + s.String()
	}
	return s.String()
}
