package object

import (
	"github.com/google/uuid"

	"github.com/isaflow/isaflow/pkg/colormap"
	"github.com/isaflow/isaflow/pkg/config"
)

// ElemUnit is a data element moving between placed units. Elements are
// never grid-placed themselves; they travel from lane to port to lane.
type ElemUnit struct {
	base

	widthBits   int
	value       any
	fillOpacity float64
	format      string

	// highBits > 0 with highZero set renders the top highBits of the
	// element as a forced-zero region (widening operations).
	highBits int
	highZero bool

	ratio float64
}

// NewElemUnit creates a data element of the given bit width.
func NewElemUnit(cfg *config.Config, color colormap.Color, widthBits int, value any) *ElemUnit {
	return &ElemUnit{
		base:        newBase(FormatValue(cfg.ValueFormat, value), color),
		widthBits:   widthBits,
		value:       value,
		fillOpacity: cfg.ElemFillOpacity,
		format:      cfg.ValueFormat,
		ratio:       cfg.SceneRatio,
	}
}

// WithHighZero marks the top highBits of the element as forced zero and
// returns the element for chaining.
func (e *ElemUnit) WithHighZero(highBits int) *ElemUnit {
	e.highBits = highBits
	e.highZero = true
	return e
}

func (e *ElemUnit) Kind() Kind                 { return KindElement }
func (e *ElemUnit) RequireSerialization() bool { return false }

// WidthBits returns the element's bit width.
func (e *ElemUnit) WidthBits() int { return e.widthBits }

// Value returns the element's data value, nil when unknown.
func (e *ElemUnit) Value() any { return e.value }

// SetValue replaces the data value and the display label.
func (e *ElemUnit) SetValue(value any) {
	e.value = value
	e.label = FormatValue(e.format, value)
}

// FillOpacity returns the rectangle fill opacity.
func (e *ElemUnit) FillOpacity() float64 { return e.fillOpacity }

// HighZero reports the forced-zero MSB region width, 0 when absent.
func (e *ElemUnit) HighZero() (bits int, ok bool) {
	if e.highZero {
		return e.highBits, true
	}
	return 0, false
}

// RectWidth returns the element rectangle width in scene units.
func (e *ElemUnit) RectWidth() float64 { return float64(e.widthBits) * e.ratio }

// Clone returns a visually identical element under a fresh handle.
// Used when a produced element is consumed more than once.
func (e *ElemUnit) Clone() *ElemUnit {
	dup := *e
	dup.handle = uuid.New()
	return &dup
}

// AlignedPos returns the center of a hypothetical element right-aligned
// with this one, shifted offset bits toward the MSB.
func (e *ElemUnit) AlignedPos(offset, elemWidth int) (x, y float64) {
	cx, cy := e.Center()
	right := cx + e.RectWidth()/2
	return right - float64(offset)*e.ratio - 0.5*float64(elemWidth)*e.ratio, cy
}
