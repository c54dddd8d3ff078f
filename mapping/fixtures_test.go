package mapping_test

import (
	"errors"

	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
)

type Director struct {
	ID   int64
	Name string
}

type Format interface{ format() }

type Digital struct{ Resolution string }

type Reel struct{ Length int64 }

type Lost struct{}

func (Digital) format() {}
func (Reel) format()    {}
func (Lost) format()    {}

type FilmDetails struct {
	Director Director
	Rating   mapping.Option[float64]
	Format   Format
}

type Film struct {
	ID      int64
	Title   string
	Details mapping.Option[FilmDetails]
}

var (
	directorShape = mapping.Product("Director",
		func(a mapping.Args) (Director, error) {
			return Director{ID: mapping.Arg[int64](a, 0), Name: mapping.Arg[string](a, 1)}, nil
		},
		mapping.FieldOf("id", mapping.Int64, func(d Director) int64 { return d.ID }),
		mapping.FieldOf("name", mapping.String, func(d Director) string { return d.Name }),
	)

	digitalShape = mapping.Product("Digital",
		func(a mapping.Args) (Digital, error) {
			return Digital{Resolution: mapping.Arg[string](a, 0)}, nil
		},
		mapping.FieldOf("resolution", mapping.String, func(d Digital) string { return d.Resolution }),
	)

	reelShape = mapping.Product("Reel",
		func(a mapping.Args) (Reel, error) {
			if mapping.Arg[int64](a, 0) <= 0 {
				return Reel{}, errors.New("reel length must be positive")
			}
			return Reel{Length: mapping.Arg[int64](a, 0)}, nil
		},
		mapping.FieldOf("length", mapping.Int64, func(r Reel) int64 { return r.Length }),
	)

	lostShape = mapping.Object("Lost", Lost{})

	analogShape = mapping.Sum("Analog", reelShape, lostShape)
	formatShape = mapping.Sum("Format", digitalShape, analogShape)

	detailsShape = mapping.Product("FilmDetails",
		func(a mapping.Args) (FilmDetails, error) {
			return FilmDetails{
				Director: mapping.Arg[Director](a, 0),
				Rating:   mapping.OptArg[float64](a, 1),
				Format:   mapping.Arg[Format](a, 2),
			}, nil
		},
		mapping.FieldOf("director", directorShape, func(d FilmDetails) Director { return d.Director }),
		mapping.OptionalFieldOf("rating", mapping.Float64, func(d FilmDetails) mapping.Option[float64] { return d.Rating }),
		mapping.FieldOf("format", formatShape, func(d FilmDetails) Format { return d.Format }),
	)

	filmShape = mapping.Product("Film",
		func(a mapping.Args) (Film, error) {
			return Film{
				ID:      mapping.Arg[int64](a, 0),
				Title:   mapping.Arg[string](a, 1),
				Details: mapping.OptArg[FilmDetails](a, 2),
			}, nil
		},
		mapping.FieldOf("id", mapping.Int64, func(f Film) int64 { return f.ID }),
		mapping.FieldOf("title", mapping.String, func(f Film) string { return f.Title }),
		mapping.OptionalFieldOf("details", detailsShape, func(f Film) mapping.Option[FilmDetails] { return f.Details }),
	)
)

func directorsTable() schema.Table {
	return schema.NewTable("directors",
		schema.Column{Name: "id", Kind: schema.KindInt, IsPrimaryKey: true},
		schema.Col("name", schema.KindString),
	)
}

func filmsTable() schema.Table {
	return schema.NewTable("films",
		schema.Column{Name: "id", Kind: schema.KindInt, IsPrimaryKey: true},
		schema.Col("title", schema.KindString),
		schema.NullableCol("details_present", schema.KindBool),
		schema.NullableCol("director_id", schema.KindInt),
		schema.NullableCol("director_name", schema.KindString),
		schema.NullableCol("rating", schema.KindFloat),
		schema.NullableCol("format_kind", schema.KindEnum),
		schema.NullableCol("resolution", schema.KindString),
		schema.NullableCol("reel_length", schema.KindInt),
	)
}

// filmConfig maps Film onto filmsTable, using director_id as the presence
// column of the details.
func filmConfig() mapping.Config {
	return mapping.Config{
		"details": {
			NullDiscriminator: "director_id",
			Product: &mapping.ProductConfig{Fields: mapping.Config{
				"director": {Product: &mapping.ProductConfig{Fields: mapping.Config{
					"id":   {Column: "director_id"},
					"name": {Column: "director_name"},
				}}},
				"format": {Sum: &mapping.SumConfig{
					CaseColumn: "format_kind",
					Variants: []mapping.VariantConfig{
						{Name: "Reel", Fields: mapping.Config{"length": {Column: "reel_length"}}},
					},
				}},
			}},
		},
	}
}

func registry(policy mapping.DuplicatePolicy, tables ...schema.Table) *mapping.Registry {
	r, err := mapping.NewRegistry(tables, policy)
	if err != nil {
		panic(err)
	}
	return r
}
