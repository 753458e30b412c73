package anim

import (
	"github.com/google/uuid"

	"github.com/isaflow/isaflow/pkg/object"
)

// elemSource records which register lane an element was read from, so a
// second read of the same lane reuses the element already on scene.
type elemSource struct {
	register uuid.UUID
	index    int
	regIdx   int
	offset   int
}

// refEntry counts consumptions of one element and remembers the last
// consumer so duplicates can be staged right before it plays.
type refEntry struct {
	count        int
	lastConsumer *Item
	lastDep      object.Object
}

// RefCounts tracks element reuse: where each element came from, how often
// it has been consumed, and which placed unit it last depended on.
type RefCounts struct {
	sources map[uuid.UUID]elemSource
	elems   map[uuid.UUID]*object.ElemUnit
	refs    map[uuid.UUID]*refEntry
}

// NewRefCounts creates an empty tracker.
func NewRefCounts() *RefCounts {
	return &RefCounts{
		sources: make(map[uuid.UUID]elemSource),
		elems:   make(map[uuid.UUID]*object.ElemUnit),
		refs:    make(map[uuid.UUID]*refEntry),
	}
}

// SetSource records that elem was read from the given register lane.
func (r *RefCounts) SetSource(elem *object.ElemUnit, register object.Object, regIdx, index, offset int) {
	r.sources[elem.Handle()] = elemSource{
		register: register.Handle(),
		index:    index,
		regIdx:   regIdx,
		offset:   offset,
	}
	r.elems[elem.Handle()] = elem
}

// BySource returns the element previously read from the given register lane
// with the given width, or nil when no such element exists.
func (r *RefCounts) BySource(register object.Object, width, regIdx, index, offset int) *object.ElemUnit {
	want := elemSource{
		register: register.Handle(),
		index:    index,
		regIdx:   regIdx,
		offset:   offset,
	}
	for handle, src := range r.sources {
		if src == want && r.elems[handle].WidthBits() == width {
			return r.elems[handle]
		}
	}
	return nil
}

// ClearSources forgets every recorded register lane origin. Called at
// section boundaries so reads in a new section do not coalesce with reads
// from the previous one.
func (r *RefCounts) ClearSources() {
	r.sources = make(map[uuid.UUID]elemSource)
}

// SetProducer resets elem's consumption count; dep is the unit the element
// was produced at (register, function or memory unit).
func (r *RefCounts) SetProducer(elem *object.ElemUnit, dep object.Object) {
	entry := &refEntry{lastDep: dep}
	r.refs[elem.Handle()] = entry
	r.elems[elem.Handle()] = elem
}

// SetConsumer counts one consumption of elem by the given animation; dep is
// the unit the element moves to.
func (r *RefCounts) SetConsumer(elem *object.ElemUnit, consumer *Item, dep object.Object) {
	entry, ok := r.refs[elem.Handle()]
	if !ok {
		entry = &refEntry{}
		r.refs[elem.Handle()] = entry
	}
	entry.lastConsumer = consumer
	entry.lastDep = dep
	entry.count++
}

// Duplicate returns elem itself on its first consumption. Each later call
// returns a fresh clone, staged onto the scene right before the previous
// consumer's animation plays, so the original can move away while the copy
// stays for the next consumer.
func (r *RefCounts) Duplicate(elem *object.ElemUnit) *object.ElemUnit {
	entry, ok := r.refs[elem.Handle()]
	if !ok || entry.count == 0 {
		return elem
	}

	dup := elem.Clone()
	if entry.lastConsumer != nil {
		entry.lastConsumer.AppendAddBefore(dup)
	}
	return dup
}

// LastDeps returns the distinct units the given elements last depended on,
// in element order. Elements without a recorded dependency are skipped.
func (r *RefCounts) LastDeps(elems ...*object.ElemUnit) []object.Object {
	var deps []object.Object
	for _, elem := range elems {
		if elem == nil {
			continue
		}
		entry, ok := r.refs[elem.Handle()]
		if !ok || entry.lastDep == nil {
			continue
		}
		if !contains(deps, entry.lastDep) {
			deps = append(deps, entry.lastDep)
		}
	}
	return deps
}

// LastDep returns the single unit elem last depended on, nil when unknown.
func (r *RefCounts) LastDep(elem *object.ElemUnit) object.Object {
	deps := r.LastDeps(elem)
	if len(deps) == 1 {
		return deps[0]
	}
	return nil
}
