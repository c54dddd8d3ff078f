// Package generator renders column registries and mapping trees as text,
// for tooling and debugging.
//
// Basic usage:
//
//	output, err := generator.GenerateTree(tree)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(output)
package generator

import (
	"fmt"
	"strings"

	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
)

// GenerateRegistry renders the tables of a registry in DBML-like syntax,
// followed by how every column name resolves. Tables and columns keep their
// registry order, which decides duplicate resolution.
func GenerateRegistry(r *mapping.Registry) ([]byte, error) {
	var builder strings.Builder

	for _, table := range r.Tables() {
		generateTable(&builder, table)
		builder.WriteString("\n")
	}

	builder.WriteString("Columns {\n")
	for _, name := range r.Names() {
		c, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("generator: registry name %q does not resolve", name)
		}
		builder.WriteString(fmt.Sprintf("  %s -> %s", name, c.QualifiedName()))
		if shadowed := shadowedBy(r.Tables(), c); len(shadowed) > 0 {
			builder.WriteString(fmt.Sprintf(" [shadows: %s]", strings.Join(shadowed, ", ")))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("}\n")

	return []byte(builder.String()), nil
}

// RegistryString is a convenience wrapper that returns the rendering as a string.
func RegistryString(r *mapping.Registry) (string, error) {
	result, err := GenerateRegistry(r)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func generateTable(builder *strings.Builder, table schema.Table) {
	builder.WriteString(fmt.Sprintf("Table %s {\n", table.QualifiedName()))
	for _, column := range table.Columns {
		generateColumn(builder, column)
	}
	builder.WriteString("}\n")
}

func generateColumn(builder *strings.Builder, column *schema.Column) {
	typ := column.Type
	if typ == "" {
		typ = column.Kind.String()
	}
	builder.WriteString(fmt.Sprintf("  %s %s", column.Name, typ))

	var attributes []string
	if column.IsPrimaryKey {
		attributes = append(attributes, "pk")
	}
	if !column.Nullable && !column.IsPrimaryKey {
		attributes = append(attributes, "not null")
	}
	if column.Type != "" {
		attributes = append(attributes, fmt.Sprintf("kind: %s", column.Kind))
	}

	if len(attributes) > 0 {
		builder.WriteString(fmt.Sprintf(" [%s]", strings.Join(attributes, ", ")))
	}
	builder.WriteString("\n")
}

// shadowedBy lists the columns of other tables that share c's name.
func shadowedBy(tables []schema.Table, c *schema.Column) []string {
	var out []string
	for _, t := range tables {
		if other := t.Column(c.Name); other != nil && other != c {
			out = append(out, other.QualifiedName())
		}
	}
	return out
}

// GenerateTree renders the rules of a mapping tree, one field per line,
// nested composites indented below their field. Optional fields are marked
// with a trailing "?".
func GenerateTree(t *mapping.Tree) ([]byte, error) {
	var builder strings.Builder
	builder.WriteString(t.Shape().Name + "\n")
	if err := generateRules(&builder, t.Rules(), 1); err != nil {
		return nil, err
	}
	return []byte(builder.String()), nil
}

// TreeString is a convenience wrapper that returns the rendering as a string.
func TreeString(t *mapping.Tree) (string, error) {
	result, err := GenerateTree(t)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func generateRules(builder *strings.Builder, rules []mapping.Rule, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, r := range rules {
		f := r.Target()
		name := f.Name
		if f.Optional {
			name += "?"
		}

		switch r := r.(type) {
		case *mapping.Primitive:
			builder.WriteString(fmt.Sprintf("%s%s: %s %s\n", indent, name, f.Shape, r.Column.QualifiedName()))
		case *mapping.Skip:
			builder.WriteString(fmt.Sprintf("%s%s: skip\n", indent, name))
		case *mapping.Custom:
			builder.WriteString(fmt.Sprintf("%s%s: custom [columns: %s]\n", indent, name, columnList(r.Mapper.Columns())))
		case *mapping.Composite:
			var attributes []string
			if n, ok := r.Nullability.(mapping.Nullable); ok {
				attributes = append(attributes, fmt.Sprintf("null discriminator: %s", n.Discriminator.QualifiedName()))
			}
			if err := generateAdt(builder, indent, name, r.Adt, attributes, depth); err != nil {
				return err
			}
		default:
			return fmt.Errorf("generator: unknown rule %T", r)
		}
	}
	return nil
}

func generateAdt(builder *strings.Builder, indent, name string, adt mapping.Adt, attributes []string, depth int) error {
	switch a := adt.(type) {
	case *mapping.ProductRules:
		builder.WriteString(fmt.Sprintf("%s%s: product %s%s\n", indent, name, a.Shape.Name, attrs(attributes)))
		return generateRules(builder, a.Rules, depth+1)
	case *mapping.SumRules:
		attributes = append(attributes, fmt.Sprintf("case: %s", a.CaseColumn.QualifiedName()))
		builder.WriteString(fmt.Sprintf("%s%s: sum %s%s\n", indent, name, a.Shape.Name, attrs(attributes)))
		for _, variant := range a.VariantNames() {
			caseValue, err := a.Cases.CaseValue(variant)
			if err != nil {
				return err
			}
			builder.WriteString(fmt.Sprintf("%s  %s [case: %#v]\n", indent, variant, caseValue))
			if err := generateRules(builder, a.Variants[variant].Rules, depth+2); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("generator: unknown composite %T", adt)
	}
}

func attrs(attributes []string) string {
	if len(attributes) == 0 {
		return ""
	}
	return fmt.Sprintf(" [%s]", strings.Join(attributes, ", "))
}

func columnList(cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.QualifiedName()
	}
	return strings.Join(names, ", ")
}
