package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Type is the declared type of a terminal field.
// It drives how filter values are coerced before comparison.
type Type int

const (
	TypeOther Type = iota
	TypeString
	TypeBool
	TypeDate
	TypeDateTime
	TypeUUID
	TypeInteger
	TypeFloat
	TypeDecimal
)

// uuidExtensionName is the canonical Arrow extension name for UUID columns.
const uuidExtensionName = "arrow.uuid"

var typeNames = map[Type]string{
	TypeOther:    "other",
	TypeString:   "string",
	TypeBool:     "bool",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeUUID:     "uuid",
	TypeInteger:  "integer",
	TypeFloat:    "float",
	TypeDecimal:  "decimal",
}

// String returns the lower-case type name used in schema files.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsNumeric reports whether values of this type are compared as numbers.
func (t Type) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat || t == TypeDecimal
}

// ParseType maps a schema file type name to a Type.
// Accepts the canonical names plus common SQL aliases.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "text", "varchar":
		return TypeString, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "date":
		return TypeDate, nil
	case "datetime", "timestamp", "timestamptz":
		return TypeDateTime, nil
	case "uuid":
		return TypeUUID, nil
	case "int", "integer", "bigint", "smallint":
		return TypeInteger, nil
	case "float", "double", "real":
		return TypeFloat, nil
	case "decimal", "numeric":
		return TypeDecimal, nil
	case "other", "":
		return TypeOther, nil
	}
	return TypeOther, fmt.Errorf("unknown field type %q", name)
}

// TypeOf derives the declared Type from an Arrow data type.
//
// Mapping:
//   - UTF8 / LargeUTF8 / StringView → TypeString
//   - BOOL → TypeBool
//   - DATE32 / DATE64 → TypeDate
//   - TIMESTAMP → TypeDateTime
//   - extension "arrow.uuid" → TypeUUID
//   - signed/unsigned integers → TypeInteger
//   - FLOAT16/32/64 → TypeFloat
//   - DECIMAL128/256 → TypeDecimal
//   - everything else → TypeOther
func TypeOf(dt arrow.DataType) Type {
	if dt == nil {
		return TypeOther
	}
	if ext, ok := dt.(arrow.ExtensionType); ok {
		if ext.ExtensionName() == uuidExtensionName {
			return TypeUUID
		}
		return TypeOf(ext.StorageType())
	}

	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return TypeString
	case arrow.BOOL:
		return TypeBool
	case arrow.DATE32, arrow.DATE64:
		return TypeDate
	case arrow.TIMESTAMP:
		return TypeDateTime
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return TypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return TypeFloat
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return TypeDecimal
	}
	return TypeOther
}

// DataTypeOf returns the Arrow data type used to transport values of t.
// UUIDs travel as strings and decimals as float64.
func DataTypeOf(t Type) arrow.DataType {
	switch t {
	case TypeString, TypeUUID:
		return arrow.BinaryTypes.String
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case TypeDate:
		return arrow.FixedWidthTypes.Date32
	case TypeDateTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat, TypeDecimal:
		return arrow.PrimitiveTypes.Float64
	}
	return arrow.BinaryTypes.String
}
