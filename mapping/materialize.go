package mapping

import "fmt"

// Materialize builds a value of the tree's shape from row.
func (t *Tree) Materialize(row Row) (any, error) {
	return materializeProduct(t.shape, t.rules, row)
}

func materializeProduct(shape *Shape, rules []Rule, row Row) (any, error) {
	args := make(Args, len(rules))
	for i, r := range rules {
		v, err := materializeRule(r, row)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	v, err := shape.Construct(args)
	if err != nil {
		return nil, &ConstructError{Shape: shape.Name, Args: args, Err: err}
	}
	return v, nil
}

func materializeRule(r Rule, row Row) (Option[any], error) {
	switch r := r.(type) {
	case *Primitive:
		return materializePrimitive(r, row)
	case *Composite:
		if n, ok := r.Nullability.(Nullable); ok {
			d, err := row.Get(n.Discriminator)
			if err != nil {
				return None[any](), err
			}
			if !d.IsSome() {
				return None[any](), nil
			}
		}
		v, err := materializeAdt(r.Adt, row)
		if err != nil {
			return None[any](), err
		}
		return Some(v), nil
	case *Custom:
		return r.Mapper.Read(row)
	case *Skip:
		return None[any](), nil
	default:
		panic(fmt.Sprintf("dbmap: unknown rule %T", r))
	}
}

func materializePrimitive(r *Primitive, row Row) (Option[any], error) {
	f := r.Target()
	raw, err := row.Get(r.Column)
	if err != nil {
		return None[any](), err
	}
	v, ok := raw.Get()
	if !ok {
		if f.Optional {
			return None[any](), nil
		}
		return None[any](), fmt.Errorf("%w: %s in column %s", ErrUnexpectedNull, f.Name, r.Column.QualifiedName())
	}
	if f.Shape.Convert != nil {
		if v, err = f.Shape.Convert(v); err != nil {
			return None[any](), fmt.Errorf("column %s: %w", r.Column.QualifiedName(), err)
		}
	}
	return Some(v), nil
}

func materializeAdt(a Adt, row Row) (any, error) {
	switch a := a.(type) {
	case *ProductRules:
		return materializeProduct(a.Shape, a.Rules, row)
	case *SumRules:
		raw, err := row.Get(a.CaseColumn)
		if err != nil {
			return nil, err
		}
		c, ok := raw.Get()
		if !ok {
			return nil, fmt.Errorf("%w: NULL in case column %s of %s", ErrUnknownVariant, a.CaseColumn.QualifiedName(), a.Shape.Name)
		}
		name, err := a.Cases.Variant(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Shape.Name, err)
		}
		variant, ok := a.Variants[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a variant of %s", ErrUnknownVariant, name, a.Shape.Name)
		}
		return materializeProduct(variant.Shape, variant.Rules, row)
	default:
		panic(fmt.Sprintf("dbmap: unknown adt %T", a))
	}
}
