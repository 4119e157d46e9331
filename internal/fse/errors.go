package fse

import "github.com/pkg/errors"

// Error kinds reported by the coder. Wrapped errors keep these as their cause,
// so callers should compare with errors.Is.
var (
	ErrNullInput           = errors.New("fse: missing input")
	ErrAllocation          = errors.New("fse: allocation failed")
	ErrInvalidFrequencySum = errors.New("fse: invalid frequency sum")
	ErrInvalidIndex        = errors.New("fse: symbol index out of range")
	ErrBufferTooSmall      = errors.New("fse: serialized size exceeds buffer budget")
	ErrUnsupportedType     = errors.New("fse: unsupported element type")
	ErrCorruptStream       = errors.New("fse: corrupt stream")
)
