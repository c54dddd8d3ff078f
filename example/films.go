package main

import "github.com/lucasefe/dbmap/mapping"

type Director struct {
	ID   int64
	Name string
}

// Format is a sum: a film is either digital or on reels.
type Format interface{ format() }

type Digital struct{ Resolution string }

type Reel struct{ Count int64 }

func (Digital) format() {}
func (Reel) format()    {}

type Film struct {
	ID       int64
	Title    string
	Director mapping.Option[Director]
	Format   Format
}

var (
	directorShape = mapping.Product("Director",
		func(a mapping.Args) (Director, error) {
			return Director{ID: mapping.Arg[int64](a, 0), Name: mapping.Arg[string](a, 1)}, nil
		},
		mapping.FieldOf("id", mapping.Int64, func(d Director) int64 { return d.ID }),
		mapping.FieldOf("name", mapping.String, func(d Director) string { return d.Name }),
	)

	formatShape = mapping.Sum("Format",
		mapping.Product("Digital",
			func(a mapping.Args) (Digital, error) { return Digital{Resolution: mapping.Arg[string](a, 0)}, nil },
			mapping.FieldOf("resolution", mapping.String, func(d Digital) string { return d.Resolution }),
		),
		mapping.Product("Reel",
			func(a mapping.Args) (Reel, error) { return Reel{Count: mapping.Arg[int64](a, 0)}, nil },
			mapping.FieldOf("reels", mapping.Int64, func(r Reel) int64 { return r.Count }),
		),
	)

	filmShape = mapping.Product("Film",
		func(a mapping.Args) (Film, error) {
			return Film{
				ID:       mapping.Arg[int64](a, 0),
				Title:    mapping.Arg[string](a, 1),
				Director: mapping.OptArg[Director](a, 2),
				Format:   mapping.Arg[Format](a, 3),
			}, nil
		},
		mapping.FieldOf("id", mapping.Int64, func(f Film) int64 { return f.ID }),
		mapping.FieldOf("title", mapping.String, func(f Film) string { return f.Title }),
		mapping.OptionalFieldOf("director", directorShape, func(f Film) mapping.Option[Director] { return f.Director }),
		mapping.FieldOf("format", formatShape, func(f Film) Format { return f.Format }),
	)
)

// filmWrites maps a Film onto the films table alone. The director is
// reduced to its id; the name lives in directors.
func filmWrites() mapping.Config {
	return mapping.Config{
		"director": {NullDiscriminator: "director_id", Product: &mapping.ProductConfig{Fields: mapping.Config{
			"id":   {Column: "director_id"},
			"name": {Skip: true},
		}}},
		"format": {Sum: &mapping.SumConfig{
			CaseColumn: "format",
			Cases:      mapping.MustCaseValues(map[string]any{"Digital": "D", "Reel": "R"}),
		}},
	}
}

// filmReads maps a Film onto films LEFT JOIN directors.
func filmReads() mapping.Config {
	return mapping.Config{
		"id":    {Column: "films.id"},
		"title": {Column: "films.title"},
		"director": {NullDiscriminator: "directors.id", Product: &mapping.ProductConfig{Fields: mapping.Config{
			"id":   {Column: "directors.id"},
			"name": {Column: "directors.name"},
		}}},
		"format": {Sum: &mapping.SumConfig{
			CaseColumn: "format",
			Cases:      mapping.MustCaseValues(map[string]any{"Digital": "D", "Reel": "R"}),
		}},
	}
}
