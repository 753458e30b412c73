package object

import (
	"github.com/isaflow/isaflow/pkg/colormap"
	"github.com/isaflow/isaflow/pkg/config"
)

// Fn computes a function unit's results from its argument values.
// Implementations receive one value per declared argument and return one
// value per declared result. A nil Fn leaves results unknown.
type Fn func(args []any) []any

// FuncUnit is a combinational function block: dashed argument ports above,
// a rounded body, dashed result ports below. Animations through a function
// unit are serialized - two calls never overlap.
type FuncUnit struct {
	base

	name      string
	argWidths []int
	resWidths []int
	argNames  []string
	resNames  []string
	fn        Fn
	ratio     float64
	format    string
}

// NewFuncUnit creates a function unit. argNames and resNames may be shorter
// than the width lists; missing names render empty.
func NewFuncUnit(cfg *config.Config, name string, color colormap.Color,
	argWidths, resWidths []int, argNames, resNames []string, fn Fn) *FuncUnit {
	return &FuncUnit{
		base:      newBase(name, color),
		name:      name,
		argWidths: argWidths,
		resWidths: resWidths,
		argNames:  argNames,
		resNames:  resNames,
		fn:        fn,
		ratio:     cfg.SceneRatio,
		format:    cfg.ValueFormat,
	}
}

func (f *FuncUnit) Kind() Kind                 { return KindFunction }
func (f *FuncUnit) RequireSerialization() bool { return true }

// Name returns the function name shown in the body.
func (f *FuncUnit) Name() string { return f.name }

// ArgCount returns the number of argument ports.
func (f *FuncUnit) ArgCount() int { return len(f.argWidths) }

// ResCount returns the number of result ports.
func (f *FuncUnit) ResCount() int { return len(f.resWidths) }

// ArgWidth returns the bit width of argument port index.
func (f *FuncUnit) ArgWidth(index int) int { return f.argWidths[index] }

// ResWidth returns the bit width of result port index.
func (f *FuncUnit) ResWidth(index int) int { return f.resWidths[index] }

// ArgName returns the label of argument port index, "" when unnamed.
func (f *FuncUnit) ArgName(index int) string {
	if index < len(f.argNames) {
		return f.argNames[index]
	}
	return ""
}

// ResName returns the label of result port index, "" when unnamed.
func (f *FuncUnit) ResName(index int) string {
	if index < len(f.resNames) {
		return f.resNames[index]
	}
	return ""
}

// Call evaluates the unit's function. Without a function, every result is
// nil (rendered as an unknown value).
func (f *FuncUnit) Call(args []any) []any {
	if f.fn == nil {
		return make([]any, len(f.resWidths))
	}
	return f.fn(args)
}

// ArgRectWidth returns the scene width of argument port index.
func (f *FuncUnit) ArgRectWidth(index int) float64 {
	return float64(f.argWidths[index]) * f.ratio
}

// ResRectWidth returns the scene width of result port index.
func (f *FuncUnit) ResRectWidth(index int) float64 {
	return float64(f.resWidths[index]) * f.ratio
}

// portRowWidth returns the scene width of a port row: the port rectangles
// plus one unit of spacing between neighbors.
func (f *FuncUnit) portRowWidth(widths []int) float64 {
	total := float64(len(widths) - 1)
	for _, w := range widths {
		total += float64(w) * f.ratio
	}
	return total
}

// RectWidth returns the body width in scene units: wide enough for the
// wider of the two port rows.
func (f *FuncUnit) RectWidth() float64 {
	argsW := f.portRowWidth(f.argWidths)
	resW := f.portRowWidth(f.resWidths)
	if argsW > resW {
		return float64(ceilInt(argsW))
	}
	return float64(ceilInt(resW))
}

// Placement capability: the unit occupies five rows - argument ports, a
// spacer, the body, a spacer, result ports.

func (f *FuncUnit) PlacementWidth() int  { return ceilInt(f.RectWidth()) }
func (f *FuncUnit) PlacementHeight() int { return 5 }
func (f *FuncUnit) PlacementMarker() int { return 3 }

func (f *FuncUnit) SetGridCorner(row, col int) {
	f.MoveTo(float64(col)+f.RectWidth()/2, float64(row)+2.5)
}

// portPos returns the right-aligned element position within a port row.
func (f *FuncUnit) portPos(widths []int, index, offset, elemWidth int, dy float64) (x, y float64) {
	cx, cy := f.Center()
	rowW := f.portRowWidth(widths)
	left := cx - rowW/2
	head := float64(index)
	for _, w := range widths[:index] {
		head += float64(w) * f.ratio
	}
	right := left + head + float64(widths[index])*f.ratio
	return right - float64(offset)*f.ratio - 0.5*float64(elemWidth)*f.ratio, cy + dy
}

// ArgPos returns the scene position where an element docks onto argument
// port index. offset selects higher bits of the port, elemWidth the docked
// element's width.
func (f *FuncUnit) ArgPos(index, offset, elemWidth int) (x, y float64) {
	return f.portPos(f.argWidths, index, offset, elemWidth, -2.0)
}

// ResPos returns the scene position where a result element appears under
// result port index.
func (f *FuncUnit) ResPos(index, offset, elemWidth int) (x, y float64) {
	return f.portPos(f.resWidths, index, offset, elemWidth, +2.0)
}
