package mapping

import (
	"fmt"
	"strings"

	"github.com/lucasefe/dbmap/schema"
)

// DuplicatePolicy decides what a Registry does when several tables have a
// column of the same name.
type DuplicatePolicy int

const (
	// ChooseFirst keeps the column of the first table listed. Joins
	// routinely share names such as id or name, so this is the join default.
	ChooseFirst DuplicatePolicy = iota
	// Throw fails registry construction with ErrDuplicateColumn.
	Throw
)

func (p DuplicatePolicy) String() string {
	switch p {
	case ChooseFirst:
		return "choose-first"
	case Throw:
		return "throw"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses the String form of a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "choose-first", "first":
		return ChooseFirst, nil
	case "throw":
		return Throw, nil
	default:
		return 0, fmt.Errorf("%w: unknown duplicate policy %q", ErrConfig, s)
	}
}

// Registry indexes the columns of one or more tables by name.
type Registry struct {
	tables    []schema.Table
	names     []string
	byName    map[string]*schema.Column
	qualified map[string]*schema.Column
}

// NewRegistry flattens the columns of tables into a name index. Table order
// is significant under ChooseFirst.
func NewRegistry(tables []schema.Table, policy DuplicatePolicy) (*Registry, error) {
	r := &Registry{
		tables:    tables,
		byName:    make(map[string]*schema.Column),
		qualified: make(map[string]*schema.Column),
	}

	for _, table := range tables {
		for _, c := range table.Columns {
			r.qualified[table.Name+"."+c.Name] = c
			if q := table.QualifiedName(); q != table.Name {
				r.qualified[q+"."+c.Name] = c
			}

			first, dup := r.byName[c.Name]
			if !dup {
				r.byName[c.Name] = c
				r.names = append(r.names, c.Name)
				continue
			}
			if policy == Throw {
				return nil, fmt.Errorf("%w: %q in tables %s and %s", ErrDuplicateColumn, c.Name, first.Table, table.Name)
			}
		}
	}

	return r, nil
}

// Lookup resolves a column by name. Qualified "table.column" names resolve
// to that exact table's column regardless of the duplicate policy.
func (r *Registry) Lookup(name string) (*schema.Column, bool) {
	if c, ok := r.byName[name]; ok {
		return c, true
	}
	c, ok := r.qualified[name]
	return c, ok
}

// Names returns the unqualified column names in first-seen order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Tables returns the tables the registry was built from.
func (r *Registry) Tables() []schema.Table {
	return r.tables
}

// TableNames returns the table names, for error messages.
func (r *Registry) TableNames() []string {
	names := make([]string, len(r.tables))
	for i, t := range r.tables {
		names[i] = t.QualifiedName()
	}
	return names
}
