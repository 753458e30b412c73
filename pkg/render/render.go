// Package render turns a scheduled animation flow into output artifacts: a
// JSON timeline, a placement snapshot SVG and Graphviz renderings of the
// dependency graph.
package render

import "github.com/isaflow/isaflow/pkg/object"

// Animation is one primitive visual change. Implementations are plain
// records; playing them is the concern of whatever consumes the timeline.
type Animation interface {
	// Name returns the animation verb used in timeline output.
	Name() string
	// Objects returns every object the animation touches.
	Objects() []object.Object
}

// FadeIn shows objects at their current positions.
type FadeIn struct {
	Items []object.Object
}

func (a FadeIn) Name() string             { return "fade_in" }
func (a FadeIn) Objects() []object.Object { return a.Items }

// FadeOut removes objects from view.
type FadeOut struct {
	Items []object.Object
}

func (a FadeOut) Name() string             { return "fade_out" }
func (a FadeOut) Objects() []object.Object { return a.Items }

// Move slides an object's center to a new scene position.
type Move struct {
	Item object.Object
	X, Y float64
}

func (a Move) Name() string             { return "move" }
func (a Move) Objects() []object.Object { return []object.Object{a.Item} }

// Transform morphs one object into another, used for data conversions and
// for results replacing their operands.
type Transform struct {
	From object.Object
	To   object.Object
}

func (a Transform) Name() string             { return "transform" }
func (a Transform) Objects() []object.Object { return []object.Object{a.From, a.To} }

// Group plays several animations as one unit, e.g. the operand moves and
// the result appearance of a function call.
type Group struct {
	Verb  string
	Anims []Animation
}

func (a Group) Name() string {
	if a.Verb != "" {
		return a.Verb
	}
	return "group"
}

func (a Group) Objects() []object.Object {
	var objs []object.Object
	for _, sub := range a.Anims {
		objs = append(objs, sub.Objects()...)
	}
	return objs
}

// CameraShot retargets the camera: Scale is the zoom-out factor relative to
// the base frame, (X, Y) the new center in scene coordinates.
type CameraShot struct {
	Scale float64 `json:"scale" bson:"scale"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
}
