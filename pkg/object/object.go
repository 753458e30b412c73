package object

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/isaflow/isaflow/pkg/colormap"
)

// Kind identifies the unit family, used by renderers to pick a shape.
type Kind int

const (
	KindRegister Kind = iota
	KindElement
	KindFunction
	KindMemory
	KindMemMark
	KindSubtitle
)

// String returns the lower-case kind name used in timeline output.
func (k Kind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindElement:
		return "element"
	case KindFunction:
		return "function"
	case KindMemory:
		return "memory"
	case KindMemMark:
		return "memmark"
	case KindSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Object is the capability shared by every diagram unit.
//
// RequireSerialization reports whether animations depending on this unit
// must play one after another (shared stateful units like function and
// memory units) rather than concurrently.
type Object interface {
	Handle() uuid.UUID
	Label() string
	Kind() Kind
	Color() colormap.Color
	Center() (x, y float64)
	RequireSerialization() bool
}

// Attacher is implemented by composite units that carry satellite objects
// which must survive a scene fade-out together with their owner.
type Attacher interface {
	Attachments() []Object
}

// base carries the identity and position shared by all units.
type base struct {
	handle uuid.UUID
	label  string
	color  colormap.Color
	x, y   float64
}

func newBase(label string, color colormap.Color) base {
	return base{handle: uuid.New(), label: label, color: color}
}

func (b *base) Handle() uuid.UUID     { return b.handle }
func (b *base) Label() string         { return b.label }
func (b *base) Color() colormap.Color { return b.color }

// Center returns the unit's center in scene coordinates.
func (b *base) Center() (x, y float64) { return b.x, b.y }

// MoveTo moves the unit's center to the given scene coordinates.
func (b *base) MoveTo(x, y float64) {
	b.x = x
	b.y = y
}

// FormatValue renders a data value with the configured format string.
// Nil values render as the empty string; non-numeric values fall back to
// their natural formatting.
func FormatValue(format string, value any) string {
	switch value.(type) {
	case nil:
		return ""
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf(format, value)
	default:
		return fmt.Sprint(value)
	}
}

func ceilInt(f float64) int {
	n := int(f)
	if f > float64(n) {
		return n + 1
	}
	return n
}
