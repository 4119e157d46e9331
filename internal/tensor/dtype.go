// Package tensor provides the tensor storage types shared by the quantization
// and serialization packages.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
	Int8
	Int16
	Float16
	// FSE marks an entropy coded payload. Its elements are only available
	// after decoding, so it has no element size.
	FSE
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Int16, Float16:
		return 2
	case Uint8, Bool, Int8:
		return 1
	case FSE:
		return 0
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Float16:
		return "float16"
	case FSE:
		return "fse"
	default:
		return "unknown"
	}
}

// ParseDataType converts the String form back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	for dt := Float32; dt <= FSE; dt++ {
		if dt.String() == s {
			return dt, true
		}
	}
	return 0, false
}

// IsQuantized reports whether the type holds quantized integer weights
// that the entropy coder accepts.
func (dt DataType) IsQuantized() bool {
	return dt == Int8 || dt == Int16
}
