package object

import (
	"github.com/isaflow/isaflow/pkg/colormap"
	"github.com/isaflow/isaflow/pkg/config"
)

// labelGutter is the grid width reserved left of a register rectangle for
// its name label.
const labelGutter = 2

// RegUnit is a register file row: one or more registers of the same width
// stacked vertically, with a name label per register. A single register is
// the nreg==1 case, a vector register group or 2-D matrix register the
// general one.
type RegUnit struct {
	base

	names     []string
	widthBits int
	elemBits  int
	regCount  int
	ratio     float64
	format    string

	// values[reg][elem], indexed modulo like the displayed hardware wraps.
	values [][]any
}

// NewRegUnit creates a register unit.
//
// widthBits is the width of one register; elements divides it into equally
// sized lanes (1 for a scalar view). nreg stacks that many registers.
// values may be nil; otherwise values[r][e] seeds the lane contents.
func NewRegUnit(cfg *config.Config, names []string, color colormap.Color,
	widthBits, elements, nreg int, values [][]any) *RegUnit {
	if elements < 1 {
		elements = 1
	}
	if nreg < 1 {
		nreg = 1
	}
	label := ""
	if len(names) > 0 {
		label = names[0]
	}
	return &RegUnit{
		base:      newBase(label, color),
		names:     names,
		widthBits: widthBits,
		elemBits:  widthBits / elements,
		regCount:  nreg,
		ratio:     cfg.SceneRatio,
		format:    cfg.ValueFormat,
		values:    values,
	}
}

func (r *RegUnit) Kind() Kind                 { return KindRegister }
func (r *RegUnit) RequireSerialization() bool { return false }

// Names returns the per-register labels.
func (r *RegUnit) Names() []string { return r.names }

// WidthBits returns the bit width of one register.
func (r *RegUnit) WidthBits() int { return r.widthBits }

// ElemBits returns the bit width of one lane.
func (r *RegUnit) ElemBits() int { return r.elemBits }

// RegCount returns the number of stacked registers.
func (r *RegUnit) RegCount() int { return r.regCount }

// RectWidth returns the register rectangle width in scene units.
func (r *RegUnit) RectWidth() float64 { return float64(r.widthBits) * r.ratio }

// Placement capability. The label gutter sits left of the rectangle.

func (r *RegUnit) PlacementWidth() int  { return ceilInt(r.RectWidth()) + labelGutter }
func (r *RegUnit) PlacementHeight() int { return r.regCount }
func (r *RegUnit) PlacementMarker() int { return 2 }

// SetGridCorner pins the unit under its grid rectangle: the register
// rectangle is right-aligned within the placement cell, the label gutter
// absorbs the slack on the left.
func (r *RegUnit) SetGridCorner(row, col int) {
	x := float64(col) + float64(r.PlacementWidth()) - r.RectWidth()/2
	y := float64(row) + float64(r.regCount)/2
	r.MoveTo(x, y)
}

// rectRight returns the x coordinate of the rectangle's right edge and the
// y coordinate of its top edge.
func (r *RegUnit) rectTopRight() (x, y float64) {
	cx, cy := r.Center()
	return cx + r.RectWidth()/2, cy - float64(r.regCount)/2
}

// normalize wraps a lane index that runs past the register into the
// following register, then wraps the register index around the file.
func (r *RegUnit) normalize(index, regIdx int) (int, int) {
	elemCount := r.widthBits / r.elemBits
	if index >= elemCount {
		regIdx = (regIdx + index/elemCount) % r.regCount
		index = index % elemCount
	} else {
		regIdx = regIdx % r.regCount
	}
	return index, regIdx
}

// ElemCenter returns the scene position of a lane, counted from the least
// significant (rightmost) side. offset shifts further bits toward the MSB,
// elemWidth is the bit width of the element being located.
func (r *RegUnit) ElemCenter(index, regIdx, offset int, elemWidth int) (x, y float64) {
	index, regIdx = r.normalize(index, regIdx)
	right, top := r.rectTopRight()
	x = right - float64(index*r.elemBits)*r.ratio -
		float64(offset)*r.ratio - 0.5*float64(elemWidth)*r.ratio
	y = top + float64(regIdx) + 0.5
	return x, y
}

// ElemValue returns the seeded value of a lane, nil when none was set.
func (r *RegUnit) ElemValue(index, regIdx int) any {
	if len(r.values) == 0 {
		return nil
	}
	row := r.values[regIdx%len(r.values)]
	if len(row) == 0 {
		return nil
	}
	return row[index%len(row)]
}

// SetElemValue stores a lane value, allocating the backing table on first
// use.
func (r *RegUnit) SetElemValue(value any, index, regIdx int) {
	if len(r.values) == 0 {
		elemCount := r.widthBits / r.elemBits
		r.values = make([][]any, r.regCount)
		for i := range r.values {
			r.values[i] = make([]any, elemCount)
		}
	}
	row := r.values[regIdx%len(r.values)]
	row[index%len(row)] = value
}

// FormatElemValue renders a lane value with the configured format.
func (r *RegUnit) FormatElemValue(index, regIdx int) string {
	return FormatValue(r.format, r.ElemValue(index, regIdx))
}
