package models

import "strings"

// Row is one dataset row, a mapping from column name to a typed value.
// Values are one of: int64, float64, string, bool, time.Time, or nil.
type Row = map[string]any

// ColumnType is the closed set of column types the engine dispatches on.
type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeString   ColumnType = "string"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
	TypeNull     ColumnType = "null"
)

// IsNumeric reports whether values of this type participate in numeric
// statistics.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// NormalizeType folds source-specific type names into the engine's
// closed type set. Unrecognized names map to string.
func NormalizeType(raw string) ColumnType {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "integer", "int", "int8", "int16", "int32", "int64", "bigint", "smallint", "uint64":
		return TypeInteger
	case "float", "float32", "float64", "double", "decimal", "numeric", "real", "number":
		return TypeFloat
	case "bool", "boolean":
		return TypeBoolean
	case "datetime", "date", "timestamp", "timestamptz", "time":
		return TypeDatetime
	case "null", "none":
		return TypeNull
	default:
		return TypeString
	}
}
