package matrix

import "errors"

var (
	// ErrSingular is returned when elimination meets a pivot below the
	// configured tolerance, or the sparse factorization fails.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrBadShape is returned for non-positive sizes or data that does not
	// fill an n*n matrix.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange is recorded when a stamp addresses a row or column
	// outside 1..Size. It surfaces from Solve.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNaNInf signals a NaN or ±Inf entry in the system or its solution.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("matrix: unknown backend")
)
