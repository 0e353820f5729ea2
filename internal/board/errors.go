package board

import "errors"

var (
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrEmptyPalette      = errors.New("palette must contain at least one color")
	ErrNilRand           = errors.New("randomness source is nil")
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrInvalidSwap       = errors.New("cells are not adjacent")
	ErrInvalidLayout     = errors.New("invalid board layout")
)
