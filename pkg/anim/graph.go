package anim

import (
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

// section is one scene section: its animations plus the section boundary
// behavior.
type section struct {
	items   []*Item
	wait    float64
	fadeOut bool
	camera  *render.CameraShot
	keep    []object.Object
}

// Graph collects animations and their ordering constraints, grouped into
// sections. The zero value is ready to use.
type Graph struct {
	sections []*section
	pending  []*Item
}

// Add registers an animation and derives its ordering edges against the
// animations already registered in the current section:
//
//   - produced-object / consumed-object overlap orders two items, and
//   - a serialized dependency (function unit, serial memory) shared with an
//     earlier item orders the new item after it.
func (g *Graph) Add(spec Spec) (*Item, error) {
	it, err := newItem(spec)
	if err != nil {
		return nil, err
	}

	for _, prev := range g.pending {
		if prev.isPredecessorOf(it) {
			prev.link(it)
		}
		if it.isPredecessorOf(prev) {
			it.link(prev)
		}
		for _, dep := range it.dep {
			if !dep.RequireSerialization() {
				continue
			}
			if prev.HasBackground(dep) {
				prev.link(it)
			}
		}
	}

	g.pending = append(g.pending, it)
	return it, nil
}

// Pending returns the number of animations registered since the last
// section boundary.
func (g *Graph) Pending() int { return len(g.pending) }

// EndSection closes the current section. wait holds the final step on
// screen, fadeOut clears the scene at the boundary except for the objects
// in keep, and camera retargets the camera before the section's first step.
//
// A boundary with no new animations merges into the previous section: waits
// accumulate, fade-out is sticky, and only objects kept by both boundaries
// stay kept.
func (g *Graph) EndSection(wait float64, fadeOut bool, camera *render.CameraShot, keep []object.Object) {
	if len(g.pending) > 0 {
		g.sections = append(g.sections, &section{
			items:   g.pending,
			wait:    wait,
			fadeOut: fadeOut,
			camera:  camera,
			keep:    dedup(keep),
		})
		g.pending = nil
		return
	}

	if len(g.sections) == 0 {
		return
	}

	// Back-to-back boundaries merge: waits accumulate, fade-out is sticky,
	// and an object survives only when both boundaries keep it.
	last := g.sections[len(g.sections)-1]
	last.wait += wait
	last.fadeOut = last.fadeOut || fadeOut
	if len(last.keep) > 0 && len(keep) > 0 {
		var merged []object.Object
		for _, obj := range last.keep {
			if contains(keep, obj) {
				merged = append(merged, obj)
			}
		}
		last.keep = merged
	} else {
		last.keep = nil
	}
}
