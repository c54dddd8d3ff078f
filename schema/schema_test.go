package schema

import (
	"errors"
	"testing"
	"time"
)

func TestFilterTables(t *testing.T) {
	s := &Schema{
		Tables: []Table{
			{Name: "films", Schema: "public"},
			{Name: "directors", Schema: "public"},
			{Name: "migrations", Schema: "public"},
			{Name: "schema_versions", Schema: "audit"},
		},
	}

	filtered := FilterTables(s, []string{"migrations", "audit.schema_versions"})

	if len(filtered.Tables) != 2 {
		t.Errorf("Expected 2 tables after filtering, got %d", len(filtered.Tables))
	}

	expectedTables := map[string]bool{"films": true, "directors": true}
	for _, table := range filtered.Tables {
		if !expectedTables[table.Name] {
			t.Errorf("Unexpected table in filtered result: %s", table.Name)
		}
	}
}

func TestFilterTablesOriginalUnmodified(t *testing.T) {
	s := &Schema{
		Tables: []Table{
			{Name: "films", Schema: "public"},
			{Name: "migrations", Schema: "public"},
		},
	}

	FilterTables(s, []string{"migrations"})

	if len(s.Tables) != 2 {
		t.Errorf("Original schema was modified, expected 2 tables, got %d", len(s.Tables))
	}
}

func TestNewTableBindsColumns(t *testing.T) {
	films := NewTable("films",
		Column{Name: "id", Kind: KindInt, IsPrimaryKey: true},
		Col("name", KindString),
		NullableCol("director_id", KindInt),
	)

	if len(films.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(films.Columns))
	}
	for _, c := range films.Columns {
		if c.Table != "films" {
			t.Errorf("column %s bound to table %q, want films", c.Name, c.Table)
		}
	}
	if got := films.Column("director_id").QualifiedName(); got != "films.director_id" {
		t.Errorf("QualifiedName() = %v, want films.director_id", got)
	}
	if len(films.PrimaryKeys) != 1 || films.PrimaryKeys[0] != "id" {
		t.Errorf("PrimaryKeys = %v, want [id]", films.PrimaryKeys)
	}
	if films.Column("missing") != nil {
		t.Errorf("Column(missing) should be nil")
	}
}

func TestSchemaSelect(t *testing.T) {
	s := &Schema{Tables: []Table{{Name: "films"}, {Name: "directors"}}}

	tables, err := s.Select("directors", "films")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if tables[0].Name != "directors" || tables[1].Name != "films" {
		t.Errorf("Select did not keep the requested order: %v", tables)
	}

	if _, err := s.Select("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Select(nope) error = %v, want ErrTableNotFound", err)
	}
}

type genre string

func TestColumnCheck(t *testing.T) {
	tests := []struct {
		name    string
		column  Column
		value   any
		wantErr bool
	}{
		{"int into int", Col("id", KindInt), 1, false},
		{"int64 into int", Col("id", KindInt), int64(1), false},
		{"string into int", Col("id", KindInt), "1", true},
		{"float into float", Col("score", KindFloat), 1.5, false},
		{"bool into bool", Col("active", KindBool), true, false},
		{"bytes into bytes", Col("blob", KindBytes), []byte("x"), false},
		{"named string into string", Col("genre", KindString), genre("drama"), false},
		{"named string into enum", Col("genre", KindEnum), genre("drama"), false},
		{"time into time", Col("at", KindTime), time.Now(), false},
		{"time into string", Col("at", KindString), time.Now(), true},
		{"anything into unknown", Col("x", KindUnknown), struct{}{}, false},
		{"nil into not null", Col("id", KindInt), nil, true},
		{"nil into nullable", NullableCol("id", KindInt), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.column
			c.Table = "t"
			err := c.Check(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrKindMismatch) {
				t.Errorf("Check(%v) error = %v, want ErrKindMismatch", tt.value, err)
			}
		})
	}
}
