package introspect

import (
	"strings"

	"github.com/lucasefe/dbmap/schema"
)

// TypeMapper classifies database column types into schema kinds.
// Implement this interface to customize type mapping behavior.
type TypeMapper interface {
	// MapKind converts a database column type to a schema.Kind.
	// dataType is the base data type (e.g., "integer", "USER-DEFINED")
	// udtName is the underlying type name (e.g., "int4", "film_genre")
	MapKind(dataType, udtName string) schema.Kind
}

// PostgreSQLTypeMapper provides PostgreSQL type classification.
// It supports custom type overrides via the CustomMappings field.
type PostgreSQLTypeMapper struct {
	// CustomMappings allows overriding default type mappings.
	// Keys are PostgreSQL type names (case-insensitive).
	CustomMappings map[string]schema.Kind
}

// NewPostgreSQLTypeMapper creates a new TypeMapper with optional custom mappings.
// If customMappings is nil, only default mappings are used.
//
// Example:
//
//	mapper := introspect.NewPostgreSQLTypeMapper(map[string]schema.Kind{
//	    "citext": schema.KindString,
//	    "film_genre": schema.KindEnum,
//	})
func NewPostgreSQLTypeMapper(customMappings map[string]schema.Kind) *PostgreSQLTypeMapper {
	return &PostgreSQLTypeMapper{CustomMappings: customMappings}
}

// MapKind implements TypeMapper for PostgreSQL databases.
// It checks CustomMappings first, then falls back to default mappings.
func (m *PostgreSQLTypeMapper) MapKind(dataType, udtName string) schema.Kind {
	if m.CustomMappings != nil {
		if mapped, ok := m.CustomMappings[strings.ToLower(dataType)]; ok {
			return mapped
		}
		// Also check the UDT name for custom types
		if mapped, ok := m.CustomMappings[strings.ToLower(udtName)]; ok {
			return mapped
		}
	}
	return MapPostgreSQLTypeToKind(dataType, udtName)
}

// DefaultTypeMappings contains the standard PostgreSQL type classification.
// This can be used as a reference when creating custom type mappers.
var DefaultTypeMappings = map[string]schema.Kind{
	"integer":                     schema.KindInt,
	"int4":                        schema.KindInt,
	"bigint":                      schema.KindInt,
	"int8":                        schema.KindInt,
	"smallint":                    schema.KindInt,
	"int2":                        schema.KindInt,
	"boolean":                     schema.KindBool,
	"bool":                        schema.KindBool,
	"text":                        schema.KindString,
	"character varying":           schema.KindString,
	"varchar":                     schema.KindString,
	"character":                   schema.KindString,
	"char":                        schema.KindString,
	"bpchar":                      schema.KindString,
	"uuid":                        schema.KindString,
	"real":                        schema.KindFloat,
	"float4":                      schema.KindFloat,
	"double precision":            schema.KindFloat,
	"float8":                      schema.KindFloat,
	"timestamp without time zone": schema.KindTime,
	"timestamp":                   schema.KindTime,
	"timestamp with time zone":    schema.KindTime,
	"timestamptz":                 schema.KindTime,
	"date":                        schema.KindTime,
	"bytea":                       schema.KindBytes,
}

// MapPostgreSQLTypeToKind classifies a PostgreSQL data type.
// User-defined types are assumed to be enumerations; numeric, json and array
// types have no scalar Go counterpart and map to KindUnknown.
func MapPostgreSQLTypeToKind(dataType, udtName string) schema.Kind {
	if kind, ok := DefaultTypeMappings[strings.ToLower(dataType)]; ok {
		return kind
	}
	switch strings.ToLower(dataType) {
	case "user-defined":
		return schema.KindEnum
	case "array":
		return schema.KindUnknown
	}
	if kind, ok := DefaultTypeMappings[strings.ToLower(udtName)]; ok {
		return kind
	}
	return schema.KindUnknown
}
