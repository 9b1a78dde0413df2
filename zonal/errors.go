package zonal

import "errors"

var (
	// ErrShapeMismatch means the value raster and label map disagree in
	// width or height.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidLabel means a label fell outside the non-negative integer
	// domain.
	ErrInvalidLabel = errors.New("invalid label")
)
