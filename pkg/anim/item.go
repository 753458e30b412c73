package anim

import (
	"github.com/google/uuid"

	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

// Spec describes one animation being registered: the animation record plus
// the object sets that define its place in the dependency graph.
//
// Src objects are consumed, Dst objects produced, Dep objects read but left
// unchanged. The add/remove lists stage objects on and off the scene around
// the animation.
type Spec struct {
	Anim render.Animation

	Src []object.Object
	Dst []object.Object
	Dep []object.Object

	AddBefore    []object.Object
	AddAfter     []object.Object
	RemoveBefore []object.Object
	RemoveAfter  []object.Object
}

// Item is one registered animation inside the dependency graph.
type Item struct {
	anim render.Animation

	src []object.Object
	dst []object.Object
	dep []object.Object

	addBefore    []object.Object
	addAfter     []object.Object
	removeBefore []object.Object
	removeAfter  []object.Object

	preds []*Item
	succs []*Item
}

func newItem(spec Spec) (*Item, error) {
	it := &Item{
		anim:         spec.Anim,
		src:          dedup(spec.Src),
		dst:          dedup(spec.Dst),
		dep:          dedup(spec.Dep),
		addBefore:    dedup(spec.AddBefore),
		addAfter:     dedup(spec.AddAfter),
		removeBefore: dedup(spec.RemoveBefore),
		removeAfter:  dedup(spec.RemoveAfter),
	}
	if len(it.src) == 0 && len(it.dst) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"animation needs a source or a destination")
	}
	return it, nil
}

// dedup drops nils and handle duplicates, preserving order.
func dedup(objs []object.Object) []object.Object {
	if len(objs) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]bool, len(objs))
	out := make([]object.Object, 0, len(objs))
	for _, obj := range objs {
		if obj == nil || seen[obj.Handle()] {
			continue
		}
		seen[obj.Handle()] = true
		out = append(out, obj)
	}
	return out
}

func contains(objs []object.Object, obj object.Object) bool {
	for _, o := range objs {
		if o.Handle() == obj.Handle() {
			return true
		}
	}
	return false
}

// Animation returns the animation record.
func (it *Item) Animation() render.Animation { return it.anim }

// Sources returns the consumed objects.
func (it *Item) Sources() []object.Object { return it.src }

// Destinations returns the produced objects.
func (it *Item) Destinations() []object.Object { return it.dst }

// Dependencies returns the read-only background objects.
func (it *Item) Dependencies() []object.Object { return it.dep }

// IsBeginner reports whether the item starts a dependency chain.
func (it *Item) IsBeginner() bool { return len(it.src) == 0 }

// IsTerminator reports whether the item ends a dependency chain.
func (it *Item) IsTerminator() bool { return len(it.dst) == 0 }

// HasBackground reports whether obj is a read-only dependency of the item.
func (it *Item) HasBackground(obj object.Object) bool {
	return contains(it.dep, obj)
}

// AppendAddBefore stages obj onto the scene right before this animation
// plays. Element duplication hooks copies in this way.
func (it *Item) AppendAddBefore(obj object.Object) {
	it.addBefore = append(it.addBefore, obj)
}

// isPredecessorOf reports whether one of this item's destinations feeds
// post's sources.
func (it *Item) isPredecessorOf(post *Item) bool {
	for _, d := range it.dst {
		if contains(post.src, d) {
			return true
		}
	}
	return false
}

func (it *Item) link(succ *Item) {
	it.succs = append(it.succs, succ)
	succ.preds = append(succ.preds, it)
}
