package memory

import (
	"fmt"
	"strings"
)

// DataType represents the native scalar type of array and buffer elements
type DataType int

const (
	Int8 DataType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var dataTypeNames = [...]string{
	Int8:    "char",
	Uint8:   "uchar",
	Int16:   "short",
	Uint16:  "ushort",
	Int32:   "int",
	Uint32:  "uint",
	Int64:   "long",
	Uint64:  "ulong",
	Float32: "float",
	Float64: "double",
}

// String returns the OpenCL C spelling of the type
func (dt DataType) String() string {
	if dt < 0 || int(dt) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
	return dataTypeNames[dt]
}

// Size returns the element size in bytes
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the type is a floating point type
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsSigned reports whether the type can hold negative values
func (dt DataType) IsSigned() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// Valid reports whether dt is one of the declared types
func (dt DataType) Valid() bool {
	return dt >= Int8 && dt <= Float64
}

// aliases accepted in addition to the canonical OpenCL names
var dataTypeAliases = map[string]DataType{
	"int8":    Int8,
	"uint8":   Uint8,
	"int16":   Int16,
	"uint16":  Uint16,
	"int32":   Int32,
	"uint32":  Uint32,
	"int64":   Int64,
	"uint64":  Uint64,
	"float32": Float32,
	"float64": Float64,
}

// ParseDataType resolves an OpenCL scalar name ("uint", "float") or a Go
// style alias ("uint32", "float32") to a DataType.
func ParseDataType(name string) (DataType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range dataTypeNames {
		if s == n {
			return DataType(i), nil
		}
	}
	if dt, ok := dataTypeAliases[n]; ok {
		return dt, nil
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}
