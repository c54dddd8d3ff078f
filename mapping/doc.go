// Package mapping derives and applies a bidirectional mapping between Go
// values and table columns.
//
// A type is described by a Shape: a scalar stored in one column, a product
// (record) with an ordered constructor parameter list, or a sum (tagged
// union) over product variants. Derive resolves every field of a product
// shape against a Registry of columns and returns an immutable Tree of
// rules. The same tree reads values from rows (Materialize) and stages
// values for writes (Project).
//
//	tree, err := mapping.Derive(filmShape, registry, mapping.WithConfig(mapping.Config{
//		"details": {NullDiscriminator: "director_id"},
//	}))
//
// Optional nested products are absent when their null discriminator column
// reads NULL. Sums store the active variant in a case column. Writing an
// absent composite stages NULL to every column it reaches; writing a present
// sum stages only the active variant's columns and leaves the columns of
// other variants untouched.
//
// DataMapper binds a tree to the Go type it constructs.
package mapping
