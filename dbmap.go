package dbmap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lucasefe/dbmap/introspect"
	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/query"
	"github.com/lucasefe/dbmap/schema"
)

// ForTable derives a mapper for T over a single table. The registry uses
// the Throw policy, though a single table never has duplicate names.
func ForTable[T any](shape *mapping.Shape, table schema.Table, opts ...mapping.DeriveOption) (*mapping.DataMapper[T], error) {
	return forTables[T](shape, []schema.Table{table}, mapping.Throw, opts...)
}

// ForJoin derives a mapper for T over several tables. Shared column names
// resolve to the first table listed; use qualified "table.column" names in
// the config to reach the others.
func ForJoin[T any](shape *mapping.Shape, tables []schema.Table, opts ...mapping.DeriveOption) (*mapping.DataMapper[T], error) {
	return forTables[T](shape, tables, mapping.ChooseFirst, opts...)
}

// ForSource is ForJoin over the tables of a query source.
func ForSource[T any](shape *mapping.Shape, src query.Source, opts ...mapping.DeriveOption) (*mapping.DataMapper[T], error) {
	return ForJoin[T](shape, src.Tables(), opts...)
}

func forTables[T any](shape *mapping.Shape, tables []schema.Table, policy mapping.DuplicatePolicy, opts ...mapping.DeriveOption) (*mapping.DataMapper[T], error) {
	r, err := mapping.NewRegistry(tables, policy)
	if err != nil {
		return nil, err
	}
	return mapping.New[T](shape, r, opts...)
}

// Tables introspects the named tables of the public schema, in the order given.
func Tables(ctx context.Context, db *sql.DB, names ...string) ([]schema.Table, error) {
	tables, err := introspect.Tables(ctx, db, names)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect database: %w", err)
	}
	return tables, nil
}

// TablesFromConnectionString opens a PostgreSQL connection and introspects
// the named tables.
func TablesFromConnectionString(ctx context.Context, connStr string, names ...string) ([]schema.Table, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Tables(ctx, db, names...)
}
