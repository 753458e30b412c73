package place

import "errors"

// ErrGroupMismatch is returned by [Map.PlaceGroup] when the item and key
// slices differ in length or are empty.
var ErrGroupMismatch = errors.New("group items and keys must match and be non-empty")

// placeholder reserves a contiguous block without occupying it: its marker
// paints the interior free while the surrounding margin ring is kept, so
// group members can be pinned inside afterwards.
type placeholder struct {
	width, height int
	row, col      int
}

func (p *placeholder) PlacementWidth() int  { return p.width }
func (p *placeholder) PlacementHeight() int { return p.height }
func (p *placeholder) PlacementMarker() int { return cellFree }
func (p *placeholder) SetGridCorner(row, col int) {
	p.row = row
	p.col = col
}

// PlaceGroup arranges a homogeneous set of items as a row/column matrix.
//
// The split factor (items per matrix row) doubles until the block's aspect
// exceeds the frame's, approximating the canvas shape; forceSplit overrides
// the automatic choice when positive. One contiguous block is reserved for
// the whole group, then every member is pinned at its exact cell inside it.
// Items within a matrix row are laid out right-to-left, mirroring how
// register groups list their highest-numbered register first.
//
// The returned points correspond to items in input order.
func (m *Map) PlaceGroup(items []Item, keys []string, forceSplit int) ([]Point, error) {
	if len(items) == 0 || len(items) != len(keys) {
		return nil, ErrGroupMismatch
	}
	for i, item := range items {
		if err := m.validate(item, keys[i]); err != nil {
			return nil, err
		}
	}

	split := m.groupSplit(items, forceSplit)

	// Chunk item indices into matrix rows, each reversed.
	var matrix [][]int
	for left := 0; left < len(items); left += split {
		right := left + split
		if right > len(items) {
			right = len(items)
		}
		row := make([]int, 0, right-left)
		for i := right - 1; i >= left; i-- {
			row = append(row, i)
		}
		matrix = append(matrix, row)
	}

	// Block dimensions: widest row, total row heights, 1-cell gaps between.
	blockWidth := 0
	rowHeights := make([]int, len(matrix))
	blockHeight := len(matrix) - 1
	for r, row := range matrix {
		rowWidth := len(row) - 1
		for _, i := range row {
			rowWidth += items[i].PlacementWidth()
			if h := items[i].PlacementHeight(); h > rowHeights[r] {
				rowHeights[r] = h
			}
		}
		if rowWidth > blockWidth {
			blockWidth = rowWidth
		}
		blockHeight += rowHeights[r]
	}

	block := &placeholder{width: blockWidth, height: blockHeight}
	start := m.searchAndMark(block, -1)
	block.SetGridCorner(start.Row, start.Col)

	points := make([]Point, len(items))
	row := start.Row
	for r, chunk := range matrix {
		col := start.Col
		for _, i := range chunk {
			pos := Point{Row: row, Col: col}
			m.placeForced(items[i], keys[i], pos)
			points[i] = pos
			col += items[i].PlacementWidth() + 1
		}
		row += rowHeights[r] + 1
	}
	return points, nil
}

// groupSplit picks how many items share a matrix row: the factor doubles
// while the resulting block is taller than the frame shape allows.
func (m *Map) groupSplit(items []Item, forceSplit int) int {
	if forceSplit > 0 {
		return forceSplit
	}

	screenFactor := float64(m.initW) / float64(m.initH)
	split := 1
	for split < len(items) {
		width := split - 1
		for _, item := range items[:split] {
			width += item.PlacementWidth()
		}
		rows := len(items) / split
		height := items[0].PlacementHeight()*rows + rows - 1
		if float64(width)/float64(height) > screenFactor {
			break
		}
		split *= 2
	}
	return split
}
