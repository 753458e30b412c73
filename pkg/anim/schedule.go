package anim

import (
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

// Schedule flattens the graph into playback steps. Within each section,
// animations whose predecessors have all played are batched into one
// concurrent step; the section's camera move rides on its first step and
// its wait on the last. A fading section appends one extra step that fades
// out everything still on scene except the kept objects.
//
// Unclosed animations (registered after the last EndSection) are not
// scheduled; close them with EndSection first.
//
// Returns ErrCodeDependencyCycle when ordering constraints form a cycle.
func (g *Graph) Schedule() ([]render.Step, error) {
	var steps []render.Step
	var onScene []object.Object

	for _, sec := range g.sections {
		scheduled := make(map[*Item]bool, len(sec.items))
		remaining := sec.items
		first := true

		for len(remaining) > 0 {
			var ready, blocked []*Item
			for _, it := range remaining {
				if allScheduled(it.preds, scheduled) {
					ready = append(ready, it)
				} else {
					blocked = append(blocked, it)
				}
			}
			if len(ready) == 0 {
				return nil, errors.New(errors.ErrCodeDependencyCycle,
					"animation dependencies form a cycle (%d animations blocked)",
					len(blocked))
			}

			step := render.Step{}
			if first {
				step.Camera = sec.camera
				first = false
			}
			for _, it := range ready {
				scheduled[it] = true
				step.Animations = append(step.Animations, it.anim)
				step.AddBefore = append(step.AddBefore, it.addBefore...)
				step.AddAfter = append(step.AddAfter, it.addAfter...)
				step.RemoveBefore = append(step.RemoveBefore, it.removeBefore...)
				step.RemoveAfter = append(step.RemoveAfter, it.removeAfter...)

				// Consumed sources leave the scene unless the animation
				// only reads them; destinations enter it.
				for _, src := range it.src {
					if !it.HasBackground(src) {
						onScene = remove(onScene, src)
					}
				}
				for _, dst := range it.dst {
					if !contains(onScene, dst) {
						onScene = append(onScene, dst)
					}
				}
			}
			steps = append(steps, step)
			remaining = blocked
		}

		if len(steps) > 0 {
			steps[len(steps)-1].Wait = sec.wait
		}

		if sec.fadeOut {
			var fading []object.Object
			fading, onScene = partitionKeep(onScene, sec.keep)
			if len(fading) > 0 {
				steps = append(steps, render.Step{
					Animations: []render.Animation{render.FadeOut{Items: fading}},
				})
			}
		}
	}

	return steps, nil
}

func allScheduled(items []*Item, scheduled map[*Item]bool) bool {
	for _, it := range items {
		if !scheduled[it] {
			return false
		}
	}
	return true
}

func remove(objs []object.Object, obj object.Object) []object.Object {
	for i, o := range objs {
		if o.Handle() == obj.Handle() {
			return append(objs[:i:i], objs[i+1:]...)
		}
	}
	return objs
}

// partitionKeep splits the on-scene objects into those fading out and those
// kept. Kept composite objects keep their attachments too (memory units
// hold painted map marks).
func partitionKeep(onScene, keep []object.Object) (fading, kept []object.Object) {
	expanded := make([]object.Object, 0, len(keep))
	for _, obj := range keep {
		expanded = append(expanded, obj)
		if att, ok := obj.(object.Attacher); ok {
			expanded = append(expanded, att.Attachments()...)
		}
	}

	for _, obj := range onScene {
		if contains(expanded, obj) {
			kept = append(kept, obj)
		} else {
			fading = append(fading, obj)
		}
	}
	return fading, kept
}
