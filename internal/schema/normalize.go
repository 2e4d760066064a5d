package schema

import (
	"github.com/toyz/contractscan/internal/annotations"
)

// Canonical schema primitives
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
)

// Formats attached to date and time properties
const (
	FormatDate     = "date"
	FormatDateTime = "date-time"
)

var primitiveTypes = map[string]string{
	"String":       TypeString,
	"CharSequence": TypeString,
	"char":         TypeString,
	"Character":    TypeString,
	"UUID":         TypeString,

	"Integer":    TypeInteger,
	"int":        TypeInteger,
	"Long":       TypeInteger,
	"long":       TypeInteger,
	"Short":      TypeInteger,
	"short":      TypeInteger,
	"Byte":       TypeInteger,
	"byte":       TypeInteger,
	"BigInteger": TypeInteger,

	"Double":     TypeNumber,
	"double":     TypeNumber,
	"Float":      TypeNumber,
	"float":      TypeNumber,
	"BigDecimal": TypeNumber,

	"Boolean": TypeBoolean,
	"boolean": TypeBoolean,

	"Date":           TypeString,
	"LocalDate":      TypeString,
	"LocalDateTime":  TypeString,
	"LocalTime":      TypeString,
	"Instant":        TypeString,
	"OffsetDateTime": TypeString,
	"ZonedDateTime":  TypeString,
}

var dateFormats = map[string]string{
	"LocalDate":      FormatDate,
	"LocalDateTime":  FormatDateTime,
	"Date":           FormatDateTime,
	"Instant":        FormatDateTime,
	"OffsetDateTime": FormatDateTime,
	"ZonedDateTime":  FormatDateTime,
}

// NormalizeType maps a declared type to a schema primitive. Generics and the
// package qualifier are dropped first; the match is case-sensitive and any
// unknown type, arrays included, is an object.
func NormalizeType(raw string) string {
	if t, ok := primitiveTypes[baseName(raw)]; ok {
		return t
	}
	return TypeObject
}

// TypeFormat returns the format for date and time types, or ""
func TypeFormat(raw string) string {
	return dateFormats[baseName(raw)]
}

func baseName(raw string) string {
	return annotations.SimpleName(annotations.StripGenerics(raw))
}
