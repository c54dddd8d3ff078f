// Package sqlrow implements the row accessor and write target the mapping
// engine reads from and writes to, on top of database/sql.
package sqlrow

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
)

// ErrColumnNotFetched is returned by MapRow.Get for a column the row does not hold.
var ErrColumnNotFetched = errors.New("dbmap: column not fetched")

// MapRow is a fetched row keyed by column handle. A nil value is SQL NULL.
type MapRow map[*schema.Column]any

// Get implements mapping.Row.
func (r MapRow) Get(col *schema.Column) (mapping.Option[any], error) {
	v, ok := r[col]
	if !ok {
		return mapping.None[any](), fmt.Errorf("%w: %s", ErrColumnNotFetched, col.QualifiedName())
	}
	if v == nil {
		return mapping.None[any](), nil
	}
	return mapping.Some(v), nil
}

// Scan reads the current row of rows into a MapRow. cols must match the
// selected columns in order, which is the case for query.SelectSQL.
func Scan(rows *sql.Rows, cols []*schema.Column) (MapRow, error) {
	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(MapRow, len(cols))
	for i, c := range cols {
		row[c] = normalize(c, dest[i])
	}
	return row, nil
}

// normalize turns driver values into the Go form of the column kind. The
// driver may reuse []byte buffers between rows, so they are copied.
func normalize(c *schema.Column, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	switch c.Kind {
	case schema.KindString, schema.KindEnum, schema.KindUnknown:
		return string(b)
	default:
		return append([]byte(nil), b...)
	}
}
