package mapping_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
)

func TestDeriveDirector(t *testing.T) {
	directors := directorsTable()
	tree, err := mapping.Derive(directorShape, registry(mapping.Throw, directors))
	require.NoError(t, err)

	rules := tree.Rules()
	require.Len(t, rules, 2)
	for i, name := range []string{"id", "name"} {
		p, ok := rules[i].(*mapping.Primitive)
		require.True(t, ok, "rule %d is %T", i, rules[i])
		assert.Equal(t, name, p.Target().Name)
		assert.Same(t, directors.Column(name), p.Column)
	}
	assert.Equal(t, directors.Columns, tree.Columns())
}

func TestDeriveFilm(t *testing.T) {
	films := filmsTable()
	tree, err := mapping.Derive(filmShape, registry(mapping.Throw, films), mapping.WithConfig(filmConfig()))
	require.NoError(t, err)

	rules := tree.Rules()
	require.Len(t, rules, 3)

	details, ok := rules[2].(*mapping.Composite)
	require.True(t, ok)
	assert.Equal(t, mapping.Nullable{Discriminator: films.Column("director_id")}, details.Nullability)

	product, ok := details.Adt.(*mapping.ProductRules)
	require.True(t, ok)
	require.Len(t, product.Rules, 3)

	director := product.Rules[0].(*mapping.Composite)
	assert.Equal(t, mapping.NonNullable{}, director.Nullability)

	format := product.Rules[2].(*mapping.Composite)
	sum, ok := format.Adt.(*mapping.SumRules)
	require.True(t, ok)
	assert.Same(t, films.Column("format_kind"), sum.CaseColumn)
	assert.Equal(t, []string{"Digital", "Reel", "Lost"}, sum.VariantNames(), "nested families are flattened")
	assert.Empty(t, sum.Variants["Lost"].Rules)

	reel := sum.Variants["Reel"].Rules[0].(*mapping.Primitive)
	assert.Same(t, films.Column("reel_length"), reel.Column)

	want := []string{"id", "title", "director_id", "director_name", "rating", "format_kind", "resolution", "reel_length"}
	assert.Equal(t, want, columnNames(tree.Columns()))
	assert.NotContains(t, columnNames(tree.Columns()), "details_present")
}

func TestDeriveErrors(t *testing.T) {
	films := filmsTable()

	bad := &mapping.Shape{
		Name:      "Bad",
		Kind:      mapping.ProductShape,
		Params:    []mapping.Param{{Name: "id", Shape: mapping.Int64}},
		Fields:    []mapping.Field{{Name: "id", Shape: mapping.String}},
		Construct: func(mapping.Args) (any, error) { return nil, nil },
	}
	unnamed := &mapping.Shape{
		Name:      "Unnamed",
		Kind:      mapping.ProductShape,
		Params:    []mapping.Param{{Name: "id", Shape: mapping.Int64}},
		Construct: func(mapping.Args) (any, error) { return nil, nil },
	}
	openFormat := mapping.Abstract("Format")
	withOpen := mapping.Product("WithOpen",
		func(a mapping.Args) (Format, error) { return mapping.Arg[Format](a, 0), nil },
		mapping.FieldOf("format", openFormat, func(f Format) Format { return f }),
	)
	withFormat := mapping.Product("WithFormat",
		func(a mapping.Args) (Format, error) { return mapping.Arg[Format](a, 0), nil },
		mapping.FieldOf("format", formatShape, func(f Format) Format { return f }),
	)
	formatConfig := func(variants ...mapping.VariantConfig) mapping.Config {
		return mapping.Config{"format": {Sum: &mapping.SumConfig{CaseColumn: "format_kind", Variants: variants}}}
	}

	tests := []struct {
		name    string
		shape   *mapping.Shape
		tables  []schema.Table
		opts    []mapping.DeriveOption
		wantErr error
		msg     string
	}{
		{
			name:    "missing column",
			shape:   directorShape,
			tables:  []schema.Table{schema.NewTable("directors", schema.Col("id", schema.KindInt))},
			wantErr: mapping.ErrMissingColumn,
			msg:     `column "name" for field Director.name of type string does not exist in tables [directors]`,
		},
		{
			name:    "optional composite without discriminator",
			shape:   filmShape,
			wantErr: mapping.ErrMissingDiscriminator,
			msg:     "Film.details",
		},
		{
			name:  "sum without case column",
			shape: filmShape,
			opts: []mapping.DeriveOption{mapping.WithConfig(mapping.Config{
				"details": {NullDiscriminator: "director_id", Product: &mapping.ProductConfig{Fields: mapping.Config{
					"director": {Product: &mapping.ProductConfig{Fields: mapping.Config{
						"id":   {Column: "director_id"},
						"name": {Column: "director_name"},
					}}},
				}}},
			})},
			wantErr: mapping.ErrMissingDiscriminator,
			msg:     "Film.details.format",
		},
		{
			name:    "skip required field",
			shape:   filmShape,
			opts:    []mapping.DeriveOption{mapping.WithConfig(mapping.Config{"title": {Skip: true}, "details": {Skip: true}})},
			wantErr: mapping.ErrSkipRequired,
			msg:     "Film.title",
		},
		{
			name:    "null discriminator on required field",
			shape:   filmShape,
			opts:    []mapping.DeriveOption{mapping.WithConfig(mapping.Config{"title": {NullDiscriminator: "title"}})},
			wantErr: mapping.ErrUnexpectedDiscriminator,
		},
		{
			name:    "unknown field",
			shape:   directorShape,
			tables:  []schema.Table{directorsTable()},
			opts:    []mapping.DeriveOption{mapping.WithConfig(mapping.Config{"age": {Column: "age"}})},
			wantErr: mapping.ErrConfig,
			msg:     `"age"`,
		},
		{
			name:    "parameter and field disagree",
			shape:   bad,
			wantErr: mapping.ErrTypeMismatch,
		},
		{
			name:    "parameter without field",
			shape:   unnamed,
			wantErr: mapping.ErrTypeMismatch,
		},
		{
			name:    "no constructor",
			shape:   mapping.Product[Director]("Director", nil),
			wantErr: mapping.ErrNoConstructor,
		},
		{
			name:    "sum at the top level",
			shape:   formatShape,
			wantErr: mapping.ErrNotInstantiable,
		},
		{
			name:    "open family without variants",
			shape:   withOpen,
			opts:    []mapping.DeriveOption{mapping.WithConfig(formatConfig())},
			wantErr: mapping.ErrVariantsUnspecified,
		},
		{
			name:    "open family variant without shape",
			shape:   withOpen,
			opts:    []mapping.DeriveOption{mapping.WithConfig(formatConfig(mapping.VariantConfig{Name: "Digital"}))},
			wantErr: mapping.ErrConfig,
		},
		{
			name:    "override of a nested family",
			shape:   withFormat,
			opts:    []mapping.DeriveOption{mapping.WithConfig(formatConfig(mapping.VariantConfig{Name: "Analog"}))},
			wantErr: mapping.ErrNotInheritable,
		},
		{
			name:    "override of an unknown variant",
			shape:   withFormat,
			opts:    []mapping.DeriveOption{mapping.WithConfig(formatConfig(mapping.VariantConfig{Name: "Tape"}))},
			wantErr: mapping.ErrConfig,
		},
		{
			name:  "product config on a sum",
			shape: withFormat,
			opts: []mapping.DeriveOption{mapping.WithConfig(mapping.Config{
				"format": {Product: &mapping.ProductConfig{}},
			})},
			wantErr: mapping.ErrNotInstantiable,
		},
		{
			name:  "sum config on a product",
			shape: filmShape,
			opts: []mapping.DeriveOption{mapping.WithConfig(mapping.Config{
				"details": {NullDiscriminator: "director_id", Sum: &mapping.SumConfig{CaseColumn: "format_kind"}},
			})},
			wantErr: mapping.ErrNotInheritable,
		},
		{
			name:  "missing case column",
			shape: withFormat,
			opts: []mapping.DeriveOption{mapping.WithConfig(mapping.Config{
				"format": {Sum: &mapping.SumConfig{CaseColumn: "kind"}},
			})},
			wantErr: mapping.ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := tt.tables
			if tables == nil {
				tables = []schema.Table{films}
			}
			tree, err := mapping.Derive(tt.shape, registry(mapping.Throw, tables...), tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tree)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestDeriveWriteOnlySkipsRequired(t *testing.T) {
	films := filmsTable()
	tree, err := mapping.Derive(filmShape, registry(mapping.Throw, films),
		mapping.WithConfig(mapping.Config{"title": {Skip: true}, "details": {Skip: true}}),
		mapping.WriteOnly(),
	)
	require.NoError(t, err)

	_, ok := tree.Rules()[1].(*mapping.Skip)
	assert.True(t, ok)
	assert.Equal(t, []string{"id"}, columnNames(tree.Columns()))
}

func TestDeriveWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := mapping.Derive(filmShape, registry(mapping.Throw, filmsTable()),
		mapping.WithConfig(mapping.Config{"details": {Skip: true, NullDiscriminator: "director_id"}}),
		mapping.WithLogger(logger),
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unnecessary when skip is set")
	assert.Contains(t, buf.String(), "field=Film.details")

	buf.Reset()
	_, err = mapping.Derive(directorShape, registry(mapping.Throw, directorsTable()),
		mapping.WithConfig(mapping.Config{"name": {Product: &mapping.ProductConfig{}}}),
		mapping.WithLogger(logger),
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "primitive field")
	assert.Contains(t, buf.String(), "type=string")
}

func TestDeriveWarnsUnwrittenDiscriminator(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := mapping.Derive(filmShape, registry(mapping.Throw, filmsTable()),
		mapping.WithConfig(filmConfig()), mapping.WithLogger(logger))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "not written by the nested structure")

	config := filmConfig()
	details := config["details"]
	details.NullDiscriminator = "details_present"
	config["details"] = details

	_, err = mapping.Derive(filmShape, registry(mapping.Throw, filmsTable()),
		mapping.WithConfig(config), mapping.WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "not written by the nested structure")
	assert.Contains(t, buf.String(), "field=Film.details")
	assert.Contains(t, buf.String(), "column=films.details_present")
}

func TestDeriveOpenFamily(t *testing.T) {
	films := filmsTable()
	openFormat := mapping.Abstract("Format")
	withOpen := mapping.Product("WithOpen",
		func(a mapping.Args) (Format, error) { return mapping.Arg[Format](a, 0), nil },
		mapping.FieldOf("format", openFormat, func(f Format) Format { return f }),
	)

	tree, err := mapping.Derive(withOpen, registry(mapping.Throw, films), mapping.WithConfig(mapping.Config{
		"format": {Sum: &mapping.SumConfig{
			CaseColumn: "format_kind",
			Variants: []mapping.VariantConfig{
				{Shape: digitalShape},
				{Shape: reelShape, Fields: mapping.Config{"length": {Column: "reel_length"}}},
			},
		}},
	}))
	require.NoError(t, err)

	sum := tree.Rules()[0].(*mapping.Composite).Adt.(*mapping.SumRules)
	assert.Equal(t, []string{"Digital", "Reel"}, sum.VariantNames())
	assert.Equal(t, []string{"format_kind", "resolution", "reel_length"}, columnNames(sum.Columns()))
}

func TestDeriveCustomRule(t *testing.T) {
	type Credit struct {
		Director Director
		Role     string
	}
	creditShape := mapping.Product("Credit",
		func(a mapping.Args) (Credit, error) {
			return Credit{Director: mapping.Arg[Director](a, 0), Role: mapping.Arg[string](a, 1)}, nil
		},
		mapping.FieldOf("director", directorShape, func(c Credit) Director { return c.Director }),
		mapping.FieldOf("role", mapping.String, func(c Credit) string { return c.Role }),
	)

	directors := directorsTable()
	credits := schema.NewTable("credits", schema.Col("role", schema.KindString))
	directorTree, err := mapping.Derive(directorShape, registry(mapping.Throw, directors))
	require.NoError(t, err)

	// credits has no director columns; the custom rule resolves them elsewhere.
	tree, err := mapping.Derive(creditShape, registry(mapping.Throw, credits),
		mapping.WithCustomRule("director", directorTree),
		mapping.WithConfig(mapping.Config{"director": {Column: "ignored"}}),
	)
	require.NoError(t, err)

	_, ok := tree.Rules()[0].(*mapping.Custom)
	assert.True(t, ok)
	assert.Equal(t, []string{"id", "name", "role"}, columnNames(tree.Columns()))
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
