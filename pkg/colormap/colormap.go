// Package colormap assigns palette colors to diagram objects.
//
// Colors are allocated round-robin from a fixed cyclic palette the first time
// a tag is seen and memoized thereafter, so every element produced by the
// same logical operation shares a color within a section. The map is reset at
// section boundaries, which keeps color reuse consistent inside a section
// while allowing it to differ across sections.
//
// Tags are explicit, caller-supplied strings. Callers that have no natural
// tag can use [Map.NextTag] to obtain a stable monotonic one.
package colormap

import "fmt"

// Color is an SVG-compatible hex color string (e.g. "#FC6255").
type Color string

// Default colors.
const (
	White Color = "#FFFFFF"

	red    Color = "#FC6255"
	blue   Color = "#58C4DD"
	green  Color = "#83C167"
	yellow Color = "#FFFF00"
	teal   Color = "#5CD0B3"
	purple Color = "#9A72AC"
	maroon Color = "#C55F73"
)

// DefaultPalette is the cyclic color scheme used when none is supplied.
func DefaultPalette() []Color {
	return []Color{red, blue, green, yellow, teal, purple, maroon}
}

// Map allocates colors from a cyclic palette, memoized per tag.
// The zero value is not usable - use New.
// Map is not safe for concurrent use without external synchronization.
type Map struct {
	palette      []Color
	defaultColor Color
	index        int
	assigned     map[string][]Color
	counter      int
}

// New creates a color map over the given palette.
// A nil or empty palette selects [DefaultPalette]. defaultColor is the color
// handed to objects outside the allocation scheme (registers, function units).
func New(defaultColor Color, palette []Color) *Map {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	return &Map{
		palette:      palette,
		defaultColor: defaultColor,
		index:        len(palette) - 1,
		assigned:     make(map[string][]Color),
	}
}

// DefaultColor returns the color for objects outside the allocation scheme.
func (m *Map) DefaultColor() Color { return m.defaultColor }

// Reset clears all memoized assignments and rewinds the cycle pointer.
// Called at section boundaries.
func (m *Map) Reset() {
	m.index = len(m.palette) - 1
	m.assigned = make(map[string][]Color)
}

// NextTag returns a fresh tag for callers without a natural one.
// Tags are unique for the lifetime of the Map, surviving Reset, so two
// distinct call sites never collide.
func (m *Map) NextTag() string {
	m.counter++
	return fmt.Sprintf("auto-%d", m.counter)
}

// Get returns the color assigned to tag, allocating the next palette color on
// first use. An empty tag always advances the cycle without memoization.
func (m *Map) Get(tag string) Color {
	return m.GetN(tag, 1)[0]
}

// GetN returns n colors assigned to tag. The first call with a new tag
// allocates the next n palette colors (wrapping); subsequent calls return the
// memoized assignment, replicated or truncated to match n.
func (m *Map) GetN(tag string, n int) []Color {
	if n < 1 {
		n = 1
	}

	if tag == "" {
		return m.allocate(n)
	}

	colors, ok := m.assigned[tag]
	if !ok {
		colors = m.allocate(n)
		m.assigned[tag] = colors
		return colors
	}

	// Adjust a memoized assignment to the requested count by cycling it.
	out := make([]Color, n)
	for i := range out {
		out[i] = colors[i%len(colors)]
	}
	return out
}

func (m *Map) allocate(n int) []Color {
	colors := make([]Color, n)
	for i := range colors {
		m.index = (m.index + 1) % len(m.palette)
		colors[i] = m.palette[m.index]
	}
	return colors
}
