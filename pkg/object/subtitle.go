package object

import "github.com/isaflow/isaflow/pkg/colormap"

// Subtitle is a caption pinned to the bottom of the camera frame. It is not
// grid-placed; the scene positions it against the current camera.
type Subtitle struct {
	base
}

// NewSubtitle creates a subtitle caption.
func NewSubtitle(text string, color colormap.Color) *Subtitle {
	return &Subtitle{base: newBase(text, color)}
}

func (s *Subtitle) Kind() Kind                 { return KindSubtitle }
func (s *Subtitle) RequireSerialization() bool { return false }
