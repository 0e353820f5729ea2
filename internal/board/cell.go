package board

// Cell holds the color of one grid slot and whether it is waiting for a refill.
type Cell struct {
	color   Color
	cleared bool
}

// NewCell returns an uncleared cell of the given color.
func NewCell(c Color) Cell {
	return Cell{color: c}
}

func (c Cell) Color() Color {
	return c.color
}

func (c *Cell) SetColor(color Color) {
	c.color = color
}

// Clear flags the cell for refill. The color is left as is until then.
func (c *Cell) Clear() {
	c.cleared = true
}

func (c Cell) IsCleared() bool {
	return c.cleared
}
