package mapping

import "github.com/lucasefe/dbmap/schema"

// Tree is the derived mapping of a product shape: one rule per constructor
// parameter, in constructor order. A Tree is immutable and safe for
// concurrent use.
type Tree struct {
	shape   *Shape
	rules   []Rule
	columns []*schema.Column
}

func newTree(shape *Shape, rules []Rule) *Tree {
	return &Tree{shape: shape, rules: rules, columns: ColumnsOf(rules)}
}

// Shape returns the shape the tree was derived for.
func (t *Tree) Shape() *Shape {
	return t.shape
}

// Rules returns the top-level rules in constructor order.
func (t *Tree) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Columns returns every column the tree touches, in first-seen order.
func (t *Tree) Columns() []*schema.Column {
	return append([]*schema.Column(nil), t.columns...)
}

// Read implements Mapper. A tree always reads a present value.
func (t *Tree) Read(row Row) (Option[any], error) {
	v, err := t.Materialize(row)
	if err != nil {
		return None[any](), err
	}
	return Some(v), nil
}

// Write implements Mapper. An absent value stages NULL to every column.
func (t *Tree) Write(value Option[any], w Writer) error {
	v, ok := value.Get()
	if !ok {
		return setNulls(t.columns, w)
	}
	return t.Project(v, w)
}

// ColumnsOf returns the columns touched by rules: primitive columns, null
// discriminators, case columns, the columns of every sum variant and the
// columns of custom mappers. Duplicates are dropped.
func ColumnsOf(rules []Rule) []*schema.Column {
	var s columnSet
	s.addRules(rules)
	return s.cols
}

type columnSet struct {
	seen map[*schema.Column]bool
	cols []*schema.Column
}

func (s *columnSet) add(c *schema.Column) {
	if s.seen == nil {
		s.seen = make(map[*schema.Column]bool)
	}
	if !s.seen[c] {
		s.seen[c] = true
		s.cols = append(s.cols, c)
	}
}

func (s *columnSet) addRules(rules []Rule) {
	for _, r := range rules {
		switch r := r.(type) {
		case *Primitive:
			s.add(r.Column)
		case *Composite:
			if n, ok := r.Nullability.(Nullable); ok {
				s.add(n.Discriminator)
			}
			s.addAdt(r.Adt)
		case *Custom:
			for _, c := range r.Mapper.Columns() {
				s.add(c)
			}
		case *Skip:
		}
	}
}

func (s *columnSet) addAdt(a Adt) {
	switch a := a.(type) {
	case *ProductRules:
		s.addRules(a.Rules)
	case *SumRules:
		s.add(a.CaseColumn)
		for _, name := range a.order {
			s.addRules(a.Variants[name].Rules)
		}
	}
}
