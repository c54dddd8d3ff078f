package introspect

import "github.com/lucasefe/dbmap/schema"

// Option configures introspection behavior.
type Option func(*options)

type options struct {
	schemas           []string
	tables            []string
	excludeTables     []string
	includeAllSchemas bool
	typeMapper        TypeMapper
}

func defaultOptions() *options {
	return &options{
		schemas: []string{"public"},
	}
}

// WithSchemas specifies which database schemas to introspect.
// If not specified, defaults to ["public"].
func WithSchemas(schemas ...string) Option {
	return func(o *options) {
		o.schemas = schemas
	}
}

// WithTables restricts introspection to the named tables.
func WithTables(tables ...string) Option {
	return func(o *options) {
		o.tables = tables
	}
}

// WithExcludeTables specifies tables to exclude from introspection.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) {
		o.excludeTables = tables
	}
}

// WithAllSchemas includes all non-system schemas in the introspection.
// This overrides WithSchemas.
func WithAllSchemas() Option {
	return func(o *options) {
		o.includeAllSchemas = true
	}
}

// WithTypeMapper sets a custom type mapper for classifying column types.
// If not specified, uses the default PostgreSQL type mapper.
func WithTypeMapper(mapper TypeMapper) Option {
	return func(o *options) {
		o.typeMapper = mapper
	}
}

// WithTypeMappings provides custom type mappings as a simple map.
// Keys are PostgreSQL type names (case-insensitive).
func WithTypeMappings(mappings map[string]schema.Kind) Option {
	return func(o *options) {
		o.typeMapper = NewPostgreSQLTypeMapper(mappings)
	}
}
