// Package dbmap maps Go records and tagged unions to PostgreSQL table rows
// without hand-written per-type mapping code.
//
// Types are described by shapes (see the mapping package). A mapper is
// derived once per type against the columns of one or more tables and then
// reads rows into values and stages values for writes.
//
// # Basic Usage
//
// Map a record onto a single table:
//
//	var directorShape = mapping.Product("Director",
//	    func(a mapping.Args) (Director, error) {
//	        return Director{ID: mapping.Arg[int64](a, 0), Name: mapping.Arg[string](a, 1)}, nil
//	    },
//	    mapping.FieldOf("id", mapping.Int64, func(d Director) int64 { return d.ID }),
//	    mapping.FieldOf("name", mapping.String, func(d Director) string { return d.Name }),
//	)
//
//	tables, err := dbmap.TablesFromConnectionString(ctx, connStr, "directors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := dbmap.ForTable[Director](directorShape, tables[0])
//
// # Joins
//
// ForJoin builds the column registry with the ChooseFirst policy, so shared
// names such as id resolve to the first table. Qualified names reach the
// other tables:
//
//	src := query.From(films).LeftJoin(directors, "films.director_id = directors.id")
//	m, err := dbmap.ForSource[Film](filmShape, src, mapping.WithConfig(mapping.Config{
//	    "director": {NullDiscriminator: "directors.id", Product: &mapping.ProductConfig{
//	        Fields: mapping.Config{"id": {Column: "directors.id"}},
//	    }},
//	}))
//	films, err := query.Select(ctx, db, m, src, "")
//
// # Subpackages
//
//   - github.com/lucasefe/dbmap/schema - Table and column handles
//   - github.com/lucasefe/dbmap/introspect - Database introspection with functional options
//   - github.com/lucasefe/dbmap/mapping - Shapes, derivation, materialization and projection
//   - github.com/lucasefe/dbmap/sqlrow - Row accessors and staged assignments
//   - github.com/lucasefe/dbmap/query - SELECT, INSERT and UPDATE over database/sql
//   - github.com/lucasefe/dbmap/generator - Text rendering of registries and trees
package dbmap
