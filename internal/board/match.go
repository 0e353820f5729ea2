package board

// Axis is the direction of a match run.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// MinRun is the shortest run that counts as a match.
const MinRun = 3

// Match is one maximal run of same-colored cells along a row or column.
type Match struct {
	Axis   Axis
	Color  Color
	Points []Point
}

func (m Match) Len() int {
	return len(m.Points)
}

// FindMatches scans every row left to right, then every column top to bottom,
// and returns each maximal run of MinRun or more same-colored cells. A cell
// can be in at most one horizontal and one vertical match.
func (b *Board) FindMatches() []Match {
	var matches []Match

	for y := 0; y < b.height; y++ {
		matches = b.scanLine(matches, Horizontal, b.width, func(i int) Point {
			return Point{X: i, Y: y}
		})
	}
	for x := 0; x < b.width; x++ {
		matches = b.scanLine(matches, Vertical, b.height, func(i int) Point {
			return Point{X: x, Y: i}
		})
	}

	return matches
}

func (b *Board) scanLine(matches []Match, axis Axis, length int, at func(int) Point) []Match {
	start := 0
	for i := 1; i <= length; i++ {
		startPt := at(start)
		runColor := b.grid[startPt.Y][startPt.X].color
		if i < length {
			p := at(i)
			if b.grid[p.Y][p.X].color == runColor {
				continue
			}
		}
		// Run [start, i) ended.
		if i-start >= MinRun {
			m := Match{Axis: axis, Color: runColor, Points: make([]Point, 0, i-start)}
			for j := start; j < i; j++ {
				m.Points = append(m.Points, at(j))
			}
			matches = append(matches, m)
		}
		start = i
	}
	return matches
}

// MatchedPoints returns the union of all points in matches in row-major
// order, each point once.
func MatchedPoints(matches []Match) []Point {
	seen := make(map[Point]bool)
	for _, m := range matches {
		for _, p := range m.Points {
			seen[p] = true
		}
	}

	points := make([]Point, 0, len(seen))
	if len(seen) == 0 {
		return points
	}

	maxX, maxY := 0, 0
	for p := range seen {
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	for y := 0; y <= maxY; y++ {
		for x := 0; x <= maxX; x++ {
			if seen[Point{X: x, Y: y}] {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// CrossPoints returns points that belong to both a horizontal and a vertical match.
func CrossPoints(matches []Match) []Point {
	horizontal := make(map[Point]bool)
	for _, m := range matches {
		if m.Axis == Horizontal {
			for _, p := range m.Points {
				horizontal[p] = true
			}
		}
	}

	var cross []Point
	for _, m := range matches {
		if m.Axis != Vertical {
			continue
		}
		for _, p := range m.Points {
			if horizontal[p] {
				cross = append(cross, p)
			}
		}
	}
	return cross
}

// ClearMatches flags every matched cell for refill and returns how many cells
// were newly cleared. Clearing an already cleared cell is a no-op.
func (b *Board) ClearMatches(matches []Match) int {
	cleared := 0
	for _, m := range matches {
		for _, p := range m.Points {
			if !b.IsValidCoordinate(p.X, p.Y) {
				continue
			}
			c := &b.grid[p.Y][p.X]
			if c.IsCleared() {
				continue
			}
			c.Clear()
			cleared++
		}
	}
	return cleared
}

// FillEmptyCells gives every cleared cell a new random color and resets its
// flag. Matches created by the refill are not resolved here.
func (b *Board) FillEmptyCells() int {
	filled := 0
	for y := range b.grid {
		for x := range b.grid[y] {
			c := &b.grid[y][x]
			if !c.IsCleared() {
				continue
			}
			c.SetColor(b.randomColor())
			c.cleared = false
			filled++
		}
	}
	return filled
}
