package place

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidKey is returned when a placement key is empty.
	// Every placed object must carry a unique non-empty key.
	ErrInvalidKey = errors.New("placement key must not be empty")

	// ErrDuplicateKey is returned when a key is already present in the map.
	ErrDuplicateKey = errors.New("duplicate placement key")

	// ErrInvalidItem is returned when an item reports a non-positive width
	// or height, or a marker below the occupant range.
	ErrInvalidItem = errors.New("item is not placeable")

	// ErrUnknownAlignKey is returned by [Map.PlaceAligned] when the
	// alignment target has not been placed.
	ErrUnknownAlignKey = errors.New("unknown alignment key")
)

// Cell markers below the occupant range.
const (
	cellFree   = 0
	cellMargin = 1
)

// Strategy selects the rectangle search order.
type Strategy int

const (
	// RowThenColumn scans top-to-bottom, then left-to-right.
	RowThenColumn Strategy = iota
	// ColumnThenRow scans left-to-right, then top-to-bottom.
	ColumnThenRow
)

// Item is the capability interface placeable objects implement.
// Widths and heights are in grid units; the marker distinguishes compatible
// occupants (two occupants may share a row only when their markers match).
// SetGridCorner is invoked with the top-left cell of the assigned rectangle
// so the object can derive its scene coordinates.
type Item interface {
	PlacementWidth() int
	PlacementHeight() int
	PlacementMarker() int
	SetGridCorner(row, col int)
}

// Point is a grid coordinate (top-left corner of a placed rectangle).
type Point struct {
	Row, Col int
}

// entry tracks one placed object.
type entry struct {
	item Item
	pos  Point
}

// Map is the placement grid. The zero value is not usable - use New.
// Map is not safe for concurrent use without external synchronization.
type Map struct {
	cells    [][]int
	width    int
	height   int
	initW    int
	initH    int
	hvRatio  float64 // height / width, preserved while growing
	strategy Strategy
	items    map[string]*entry
}

// New creates a placement map with the given initial frame size.
// The frame's height/width ratio is preserved whenever the grid grows.
func New(width, height int, strategy Strategy) *Map {
	m := &Map{
		initW:    width,
		initH:    height,
		hvRatio:  float64(height) / float64(width),
		strategy: strategy,
		items:    make(map[string]*entry),
	}
	m.Resize(width, height)
	return m
}

// Has reports whether an object with the given key has been placed.
func (m *Map) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Item returns the placed object for key and true, or nil and false.
func (m *Map) Item(key string) (Item, bool) {
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	return e.item, true
}

// Position returns the grid corner of the object placed under key.
func (m *Map) Position(key string) (Point, bool) {
	e, ok := m.items[key]
	if !ok {
		return Point{}, false
	}
	return e.pos, true
}

// Keys returns the keys of all placed objects in unspecified order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// GridWidth returns the current grid width including unoccupied cells.
func (m *Map) GridWidth() int { return m.width }

// GridHeight returns the current grid height including unoccupied cells.
func (m *Map) GridHeight() int { return m.height }

// Width returns the occupied width: the rightmost column holding an occupant
// or margin, plus one. Empty maps report 1.
func (m *Map) Width() int {
	maxCol := 0
	for col := 0; col < m.width; col++ {
		for row := 0; row < m.height; row++ {
			if m.cells[row][col] > cellFree {
				maxCol = col
				break
			}
		}
	}
	return maxCol + 1
}

// Height returns the occupied height: the bottom row holding an occupant or
// margin, plus one. Empty maps report 1.
func (m *Map) Height() int {
	maxRow := 0
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			if m.cells[row][col] > cellFree {
				maxRow = row
				break
			}
		}
	}
	return maxRow + 1
}

// OriginX and OriginY return the center of the occupied region, used to
// retarget the camera after the bounding box changes.
func (m *Map) OriginX() float64 { return float64(m.Width()) / 2 }

// OriginY returns the vertical center of the occupied region.
func (m *Map) OriginY() float64 { return float64(m.Height()) / 2 }

// Scale returns the factor by which a camera of the given size must scale to
// frame the occupied region with one unit of slack.
func (m *Map) Scale(cameraWidth, cameraHeight float64) float64 {
	sh := (float64(m.Height()) + 1) / cameraHeight
	sw := (float64(m.Width()) + 1) / cameraWidth
	if sh > sw {
		return sh
	}
	return sw
}

// Resize grows or shrinks the grid, preserving occupancy in the overlapping
// region. Grid dimensions never affect already-placed objects.
func (m *Map) Resize(newWidth, newHeight int) {
	cells := make([][]int, newHeight)
	for row := range cells {
		cells[row] = make([]int, newWidth)
		if row >= m.height {
			continue
		}
		copy(cells[row], m.cells[row])
	}
	m.cells = cells
	m.width = newWidth
	m.height = newHeight
}

// grow expands the grid by one unit along the dimension that restores the
// frame aspect ratio.
func (m *Map) grow() {
	if m.hvRatio > 1 {
		newWidth := m.width + 1
		m.Resize(newWidth, int(float64(newWidth)*m.hvRatio))
	} else {
		newHeight := m.height + 1
		m.Resize(int(float64(newHeight)/m.hvRatio), newHeight)
	}
}

// Place finds a free rectangle for item, records it under key and tells the
// item its grid corner. It fails only on contract violations; lack of space
// is resolved by growing the grid and retrying.
func (m *Map) Place(item Item, key string) (Point, error) {
	return m.place(item, key, "")
}

// PlaceAligned behaves like Place but restricts the search to the row of the
// already-placed object with alignKey, so the two abut horizontally.
func (m *Map) PlaceAligned(item Item, key, alignKey string) (Point, error) {
	if alignKey == "" {
		return Point{}, ErrUnknownAlignKey
	}
	return m.place(item, key, alignKey)
}

func (m *Map) place(item Item, key, alignKey string) (Point, error) {
	if err := m.validate(item, key); err != nil {
		return Point{}, err
	}

	alignRow := -1
	if alignKey != "" {
		target, ok := m.items[alignKey]
		if !ok {
			return Point{}, ErrUnknownAlignKey
		}
		alignRow = target.pos.Row
	}

	pos := m.searchAndMark(item, alignRow)
	item.SetGridCorner(pos.Row, pos.Col)
	m.items[key] = &entry{item: item, pos: pos}
	return pos, nil
}

func (m *Map) validate(item Item, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if _, exists := m.items[key]; exists {
		return ErrDuplicateKey
	}
	if item == nil || item.PlacementWidth() <= 0 || item.PlacementHeight() <= 0 {
		return ErrInvalidItem
	}
	if item.PlacementMarker() <= cellMargin {
		return ErrInvalidItem
	}
	return nil
}

// searchAndMark finds a rectangle for item, growing the grid until one
// exists, and paints it. Termination: each growth step strictly enlarges the
// grid, and any grid with enough free area admits a rectangle, so the loop
// always ends.
func (m *Map) searchAndMark(item Item, alignRow int) Point {
	w := item.PlacementWidth()
	h := item.PlacementHeight()
	marker := item.PlacementMarker()

	for {
		if pos, ok := m.search(w, h, marker, alignRow); ok {
			m.markRect(marker, pos, w, h)
			return pos
		}
		m.grow()
	}
}

func (m *Map) search(w, h, marker, alignRow int) (Point, bool) {
	if alignRow >= 0 {
		for col := 1; col <= m.width-w; col++ {
			if alignRow >= m.height || m.cells[alignRow][col] != cellFree {
				continue
			}
			if m.checkRect(alignRow, col, w, h, marker) {
				return Point{Row: alignRow, Col: col}, true
			}
		}
		return Point{}, false
	}

	switch m.strategy {
	case ColumnThenRow:
		for col := 1; col <= m.width-w; col++ {
			for row := 1; row <= m.height-h; row++ {
				if m.cells[row][col] != cellFree {
					continue
				}
				if m.checkRect(row, col, w, h, marker) {
					return Point{Row: row, Col: col}, true
				}
			}
		}
	default: // RowThenColumn
		for row := 1; row <= m.height-h; row++ {
			for col := 1; col <= m.width-w; col++ {
				if m.cells[row][col] != cellFree {
					continue
				}
				if m.checkRect(row, col, w, h, marker) {
					return Point{Row: row, Col: col}, true
				}
			}
		}
	}
	return Point{}, false
}

// checkRect reports whether the rectangle at (row,col) fits: the rectangle
// and its 1-cell ring hold no occupant, and every occupant already on the
// covered rows carries the same marker.
func (m *Map) checkRect(row, col, w, h, marker int) bool {
	if m.width-col+1 < w+2 || m.height-row+1 < h+2 {
		return false
	}

	for r := row - 1; r < row+h+1; r++ {
		for c := col - 1; c < col+w+1; c++ {
			if m.cells[r][c] > cellMargin {
				return false
			}
		}
	}

	// Occupants already sharing these rows must carry the same marker.
	for r := row - 1; r < row+h+1; r++ {
		for c := 0; c < col-1; c++ {
			if m.cells[r][c] > cellMargin && m.cells[r][c] != marker {
				return false
			}
		}
	}

	return true
}

// markRect paints the rectangle with marker and surrounds it with margin
// cells, skipping anything outside the grid.
func (m *Map) markRect(marker int, pos Point, w, h int) {
	for r := pos.Row - 1; r < pos.Row+h+1; r++ {
		for c := pos.Col - 1; c < pos.Col+w+1; c++ {
			if r < 0 || r >= m.height || c < 0 || c >= m.width {
				continue
			}
			if r == pos.Row-1 || r == pos.Row+h || c == pos.Col-1 || c == pos.Col+w {
				m.cells[r][c] = cellMargin
			} else {
				m.cells[r][c] = marker
			}
		}
	}
}

// placeForced pins item at its recorded corner, growing the grid until the
// rectangle fits. Used by group placement and position-preserving resets.
func (m *Map) placeForced(item Item, key string, pos Point) {
	w := item.PlacementWidth()
	h := item.PlacementHeight()
	marker := item.PlacementMarker()

	for !m.checkRect(pos.Row, pos.Col, w, h, marker) {
		m.grow()
	}
	m.markRect(marker, pos, w, h)
	item.SetGridCorner(pos.Row, pos.Col)
	if key != "" {
		m.items[key] = &entry{item: item, pos: pos}
	}
}

// Reset clears the grid back to its initial frame size. Objects whose keys
// appear in keep are re-inserted: at their old coordinates when
// keepPositions is true, otherwise through a fresh search.
func (m *Map) Reset(keep []string, keepPositions bool) {
	kept := make([]struct {
		key string
		e   *entry
	}, 0, len(keep))
	for _, key := range keep {
		if e, ok := m.items[key]; ok {
			kept = append(kept, struct {
				key string
				e   *entry
			}{key, e})
		}
	}

	m.items = make(map[string]*entry)
	m.cells = nil
	m.width = 0
	m.height = 0
	m.Resize(m.initW, m.initH)

	for _, k := range kept {
		if keepPositions {
			m.placeForced(k.e.item, k.key, k.e.pos)
		} else {
			pos := m.searchAndMark(k.e.item, -1)
			k.e.item.SetGridCorner(pos.Row, pos.Col)
			m.items[k.key] = &entry{item: k.e.item, pos: pos}
		}
	}
}

// Dump returns an ASCII rendering of the grid for debugging:
// spaces are free cells, '*' margins and 'O' occupants.
func (m *Map) Dump() string {
	var b strings.Builder
	for _, row := range m.cells {
		for _, cell := range row {
			switch cell {
			case cellFree:
				b.WriteByte(' ')
			case cellMargin:
				b.WriteByte('*')
			default:
				b.WriteByte('O')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
