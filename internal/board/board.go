package board

import (
	"fmt"
	"strings"
)

// Rand is the randomness source used for new colors. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Point is a grid coordinate. X is the column, Y the row.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Board is a fixed-size grid of cells indexed [row][col].
type Board struct {
	width   int
	height  int
	palette Palette
	rng     Rand
	grid    [][]Cell
}

// New allocates a width x height board with every cell drawn from palette.
func New(width, height int, palette Palette, rng Rand) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	b := &Board{
		width:   width,
		height:  height,
		palette: append(Palette(nil), palette...),
		rng:     rng,
	}
	b.grid = make([][]Cell, height)
	for y := range b.grid {
		b.grid[y] = make([]Cell, width)
		for x := range b.grid[y] {
			b.grid[y][x] = NewCell(b.randomColor())
		}
	}
	return b, nil
}

// FromColors builds a board from a fixed layout. rows[y][x] is the color at
// (x, y). Later refills draw from palette.
func FromColors(rows [][]Color, palette Palette, rng Rand) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidDimensions)
	}
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	width := len(rows[0])
	grid := make([][]Cell, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, y, len(row), width)
		}
		grid[y] = make([]Cell, width)
		for x, c := range row {
			if !palette.Contains(c) {
				return nil, fmt.Errorf("%w: %s at %v is not in palette %s", ErrInvalidLayout, c, Point{x, y}, palette)
			}
			grid[y][x] = NewCell(c)
		}
	}

	return &Board{
		width:   width,
		height:  len(rows),
		palette: append(Palette(nil), palette...),
		rng:     rng,
		grid:    grid,
	}, nil
}

func (b *Board) Width() int {
	return b.width
}

func (b *Board) Height() int {
	return b.height
}

func (b *Board) Palette() Palette {
	return append(Palette(nil), b.palette...)
}

func (b *Board) randomColor() Color {
	return b.palette[b.rng.IntN(len(b.palette))]
}

func (b *Board) IsValidCoordinate(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Cell returns a copy of the cell at (x, y).
func (b *Board) Cell(x, y int) (Cell, error) {
	if !b.IsValidCoordinate(x, y) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.grid[y][x], nil
}

// CanSwap reports whether both coordinates are on the board and share an edge.
// It says nothing about whether the swap would produce a match.
func (b *Board) CanSwap(x1, y1, x2, y2 int) bool {
	if !b.IsValidCoordinate(x1, y1) || !b.IsValidCoordinate(x2, y2) {
		return false
	}
	return abs(x1-x2)+abs(y1-y2) == 1
}

// SwapCells exchanges two adjacent cells. On ErrInvalidSwap the board is
// left unchanged.
func (b *Board) SwapCells(x1, y1, x2, y2 int) error {
	if !b.CanSwap(x1, y1, x2, y2) {
		return fmt.Errorf("%w: (%d,%d) and (%d,%d)", ErrInvalidSwap, x1, y1, x2, y2)
	}
	b.grid[y1][x1], b.grid[y2][x2] = b.grid[y2][x2], b.grid[y1][x1]
	return nil
}

// Rows returns a snapshot of the grid for rendering.
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.height)
	for y := range b.grid {
		rows[y] = append([]Cell(nil), b.grid[y]...)
	}
	return rows
}

// Each calls fn for every cell in row-major order.
func (b *Board) Each(fn func(p Point, c Cell)) {
	for y, row := range b.grid {
		for x, c := range row {
			fn(Point{X: x, Y: y}, c)
		}
	}
}

// Colors returns the current colors indexed [row][col].
func (b *Board) Colors() [][]Color {
	colors := make([][]Color, b.height)
	for y, row := range b.grid {
		colors[y] = make([]Color, b.width)
		for x, c := range row {
			colors[y][x] = c.color
		}
	}
	return colors
}

// String renders the board as rows of color letters.
func (b *Board) String() string {
	var sb strings.Builder
	for y, row := range b.grid {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			sb.WriteRune(c.color.Letter())
		}
	}
	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
