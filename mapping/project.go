package mapping

import (
	"fmt"

	"github.com/lucasefe/dbmap/schema"
)

// Project stages the columns of v on w. v must be a value of the tree's shape.
func (t *Tree) Project(v any, w Writer) error {
	return projectProduct(t.rules, v, w)
}

func projectProduct(rules []Rule, v any, w Writer) error {
	for _, r := range rules {
		if _, ok := r.(*Skip); ok {
			continue
		}
		f := r.Target()
		fv, err := f.Get(v)
		if err != nil {
			return err
		}
		if err := projectRule(r, fv, w); err != nil {
			return err
		}
	}
	return nil
}

func projectRule(r Rule, value Option[any], w Writer) error {
	switch r := r.(type) {
	case *Primitive:
		v, ok := value.Get()
		if !ok {
			return w.SetNull(r.Column)
		}
		return w.Set(r.Column, v)
	case *Composite:
		v, ok := value.Get()
		if !ok {
			return setNulls(compositeColumns(r), w)
		}
		return projectAdt(r.Adt, v, w)
	case *Custom:
		return r.Mapper.Write(value, w)
	case *Skip:
		return nil
	default:
		panic(fmt.Sprintf("dbmap: unknown rule %T", r))
	}
}

// projectAdt writes a present composite. For sums only the columns of the
// active variant are staged; columns belonging to other variants keep
// whatever value they had.
func projectAdt(a Adt, v any, w Writer) error {
	switch a := a.(type) {
	case *ProductRules:
		return projectProduct(a.Rules, v, w)
	case *SumRules:
		name, variant, ok := a.variantOf(v)
		if !ok {
			return fmt.Errorf("%w: %T is not a variant of %s", ErrUnknownVariant, v, a.Shape.Name)
		}
		c, err := a.Cases.CaseValue(name)
		if err != nil {
			return err
		}
		if err := w.Set(a.CaseColumn, c); err != nil {
			return err
		}
		return projectProduct(variant.Rules, v, w)
	default:
		panic(fmt.Sprintf("dbmap: unknown adt %T", a))
	}
}

// compositeColumns returns the columns nulled when a composite is absent.
func compositeColumns(r *Composite) []*schema.Column {
	var s columnSet
	s.addRules([]Rule{r})
	return s.cols
}

func setNulls(cols []*schema.Column, w Writer) error {
	for _, c := range cols {
		if err := w.SetNull(c); err != nil {
			return err
		}
	}
	return nil
}
