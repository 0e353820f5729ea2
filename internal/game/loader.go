package game

import (
	"bufio"
	"fmt"
	"go-match3/internal/board"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// LayoutData is a fixed starting board read from a layout file.
type LayoutData struct {
	Rows       [][]board.Color
	Palette    board.Palette // Colors used by Rows, topped up for refills
	Content    string        // Normalized rows, one line per row
	Title      string
	Source     string
	PartIndex  int // 1-based position within Source
	TotalParts int
}

var separatorRe = regexp.MustCompile(`(?m)^-{3,}[ \t]*$`)

// LoadLayouts loads layouts from a list of paths (files or directories).
func LoadLayouts(paths []string) ([]LayoutData, error) {
	var layouts []LayoutData

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range files {
				if !entry.IsDir() {
					l, err := loadFile(filepath.Join(path, entry.Name()))
					if err != nil {
						return nil, err
					}
					layouts = append(layouts, l...)
				}
			}
		} else {
			l, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			layouts = append(layouts, l...)
		}
	}

	return layouts, nil
}

func loadFile(path string) ([]LayoutData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var contentBuilder strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		contentBuilder.WriteString(scanner.Text() + "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}

	var layouts []LayoutData
	for _, part := range separatorRe.Split(contentBuilder.String(), -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := parseLayout(part)
		if err != nil {
			return nil, fmt.Errorf("%s layout %d: %w", path, len(layouts)+1, err)
		}
		l.Source = path
		l.PartIndex = len(layouts) + 1
		layouts = append(layouts, l)
	}

	for i := range layouts {
		layouts[i].TotalParts = len(layouts)
	}
	return layouts, nil
}

// parseLayout reads one layout: a "# title" line is optional, every other
// non-blank line is a row of color letters. Whitespace inside rows is ignored.
func parseLayout(text string) (LayoutData, error) {
	var l LayoutData
	var lines []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if l.Title == "" {
				l.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			}
			continue
		}

		row := make([]board.Color, 0, len(trimmed))
		var sb strings.Builder
		for _, r := range trimmed {
			if unicode.IsSpace(r) {
				continue
			}
			c, ok := board.ParseColor(r)
			if !ok {
				return LayoutData{}, fmt.Errorf("%w: unknown color %q in row %d", board.ErrInvalidLayout, r, len(l.Rows)+1)
			}
			row = append(row, c)
			sb.WriteRune(c.Letter())
		}
		if len(l.Rows) > 0 && len(row) != len(l.Rows[0]) {
			return LayoutData{}, fmt.Errorf("%w: row %d has %d cells, want %d", board.ErrInvalidLayout, len(l.Rows)+1, len(row), len(l.Rows[0]))
		}
		l.Rows = append(l.Rows, row)
		lines = append(lines, sb.String())
	}

	if len(l.Rows) == 0 {
		return LayoutData{}, fmt.Errorf("%w: no rows", board.ErrInvalidLayout)
	}

	l.Content = strings.Join(lines, "\n")
	l.Palette = layoutPalette(l.Rows)
	return l, nil
}

// layoutPalette returns the colors used by rows, adding unused colors in
// palette order until it is at least as large as the default palette.
func layoutPalette(rows [][]board.Color) board.Palette {
	used := make(map[board.Color]bool)
	for _, row := range rows {
		for _, c := range row {
			used[c] = true
		}
	}
	for _, c := range board.AllColors {
		if len(used) >= len(board.DefaultPalette) {
			break
		}
		used[c] = true
	}

	var p board.Palette
	for _, c := range board.AllColors {
		if used[c] {
			p = append(p, c)
		}
	}
	return p
}
