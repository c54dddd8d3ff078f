// Package introspect reads table and column handles from a PostgreSQL
// database so mapping trees can be derived against the live schema.
//
// Basic usage:
//
//	s, err := introspect.Database(ctx, db,
//	    introspect.WithSchemas("public"),
//	    introspect.WithTables("films", "directors"),
//	)
//
// With custom type mapping:
//
//	mapper := introspect.NewPostgreSQLTypeMapper(map[string]schema.Kind{
//	    "citext": schema.KindString,
//	})
//	s, err := introspect.Database(ctx, db, introspect.WithTypeMapper(mapper))
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lucasefe/dbmap/schema"

	_ "github.com/lib/pq"
)

// Queryer is the subset of *sql.DB and *sql.Tx used for introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Database introspects a PostgreSQL database and returns its schema.
// Use options to customize which schemas and tables to include.
func Database(ctx context.Context, db Queryer, opts ...Option) (*schema.Schema, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var schemaNames []string
	if o.includeAllSchemas {
		schemas, err := getAllSchemas(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to get schemas: %w", err)
		}
		schemaNames = schemas
	} else {
		schemaNames = o.schemas
	}

	result, err := introspectSchemas(ctx, db, schemaNames, o)
	if err != nil {
		return nil, err
	}

	if len(o.excludeTables) > 0 {
		result = schema.FilterTables(result, o.excludeTables)
	}

	return result, nil
}

// Tables introspects the named tables and returns them in the order given.
// The order is significant for column registries built from the result.
func Tables(ctx context.Context, db Queryer, names []string, opts ...Option) ([]schema.Table, error) {
	s, err := Database(ctx, db, append(opts, WithTables(names...))...)
	if err != nil {
		return nil, err
	}
	return s.Select(names...)
}

// FromConnectionString connects to a PostgreSQL database and introspects it.
// This is a convenience function that handles connection management.
func FromConnectionString(ctx context.Context, connStr string, opts ...Option) (*schema.Schema, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Database(ctx, db, opts...)
}

func introspectSchemas(ctx context.Context, db Queryer, schemaNames []string, o *options) (*schema.Schema, error) {
	if len(schemaNames) == 0 {
		schemaNames = []string{"public"}
	}

	include := make(map[string]bool, len(o.tables))
	for _, name := range o.tables {
		include[name] = true
	}

	result := &schema.Schema{}

	for _, schemaName := range schemaNames {
		tables, err := getTables(ctx, db, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to get tables for schema %s: %w", schemaName, err)
		}

		for _, table := range tables {
			if len(include) > 0 && !include[table.Name] && !include[table.QualifiedName()] {
				continue
			}

			columns, err := getColumns(ctx, db, schemaName, table.Name, o.typeMapper)
			if err != nil {
				return nil, fmt.Errorf("failed to get columns for table %s.%s: %w", schemaName, table.Name, err)
			}
			table.Columns = columns

			primaryKeys, err := getPrimaryKeys(ctx, db, schemaName, table.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to get primary keys for table %s.%s: %w", schemaName, table.Name, err)
			}
			table.PrimaryKeys = primaryKeys

			for _, c := range table.Columns {
				for _, pk := range primaryKeys {
					if c.Name == pk {
						c.IsPrimaryKey = true
						break
					}
				}
			}

			result.Tables = append(result.Tables, table)
		}
	}

	return result, nil
}

func getAllSchemas(ctx context.Context, db Queryer) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast', 'pg_temp_1', 'pg_toast_temp_1')
		ORDER BY schema_name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var schemaName string
		if err := rows.Scan(&schemaName); err != nil {
			return nil, err
		}
		schemas = append(schemas, schemaName)
	}

	return schemas, rows.Err()
}

func getTables(ctx context.Context, db Queryer, schemaName string) ([]schema.Table, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`

	rows, err := db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, schema.Table{
			Name:   tableName,
			Schema: schemaName,
		})
	}

	return tables, rows.Err()
}

func getColumns(ctx context.Context, db Queryer, schemaName, tableName string, mapper TypeMapper) ([]*schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			COALESCE(c.udt_name, c.data_type) as udt_name
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*schema.Column
	for rows.Next() {
		col := &schema.Column{Table: tableName}
		var dataType, isNullable, udtName string

		if err := rows.Scan(&col.Name, &dataType, &isNullable, &udtName); err != nil {
			return nil, err
		}

		if mapper != nil {
			col.Kind = mapper.MapKind(dataType, udtName)
		} else {
			col.Kind = MapPostgreSQLTypeToKind(dataType, udtName)
		}
		col.Type = udtName
		col.Nullable = isNullable == "YES"

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func getPrimaryKeys(ctx context.Context, db Queryer, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND kcu.table_schema = $1
			AND kcu.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}

	return primaryKeys, rows.Err()
}
