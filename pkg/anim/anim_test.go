package anim

import (
	"testing"

	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

func newElem(t *testing.T, value any) *object.ElemUnit {
	t.Helper()
	return object.NewElemUnit(config.Default(), "#FC6255", 32, value)
}

func fadeIn(objs ...object.Object) render.Animation {
	return render.FadeIn{Items: objs}
}

func TestAdd_RequiresEndpoint(t *testing.T) {
	var g Graph

	_, err := g.Add(Spec{Anim: fadeIn()})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Add() error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestSchedule_ChainsStaySequential(t *testing.T) {
	var g Graph
	a := newElem(t, 1)
	b := newElem(t, 2)

	// produce a, then consume a into b, then consume b.
	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Src: []object.Object{a}, Dst: []object.Object{b}})
	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{b}})
	g.EndSection(0, false, nil, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("Schedule() = %d steps, want 3 sequential steps", len(steps))
	}
	for i, step := range steps {
		if len(step.Animations) != 1 {
			t.Errorf("step %d has %d animations, want 1", i, len(step.Animations))
		}
	}
}

func TestSchedule_IndependentLanesPlayTogether(t *testing.T) {
	var g Graph
	a := newElem(t, 1)
	b := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Dst: []object.Object{b}})
	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{b}})
	g.EndSection(0, false, nil, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Schedule() = %d steps, want 2", len(steps))
	}
	if len(steps[0].Animations) != 2 || len(steps[1].Animations) != 2 {
		t.Errorf("steps carry %d/%d animations, want 2/2",
			len(steps[0].Animations), len(steps[1].Animations))
	}
}

func TestSchedule_SerializedDependency(t *testing.T) {
	var g Graph
	cfg := config.Default()
	fn := object.NewFuncUnit(cfg, "add", "#FFFFFF", []int{32}, []int{32}, nil, nil, nil)
	a := newElem(t, 1)
	b := newElem(t, 2)

	// Two calls through the same function unit, no data overlap: they
	// must still play one after the other.
	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}, Dep: []object.Object{fn}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Dst: []object.Object{b}, Dep: []object.Object{fn}})
	g.EndSection(0, false, nil, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 2 {
		t.Errorf("Schedule() = %d steps, want 2 serialized steps", len(steps))
	}
}

func TestSchedule_ParallelDependencyNotSerialized(t *testing.T) {
	var g Graph
	cfg := config.Default()
	reg := object.NewRegUnit(cfg, []string{"Zn"}, "#FFFFFF", 128, 4, 1, nil)
	a := newElem(t, 1)
	b := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}, Dep: []object.Object{reg}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Dst: []object.Object{b}, Dep: []object.Object{reg}})
	g.EndSection(0, false, nil, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 1 {
		t.Errorf("Schedule() = %d steps, want 1 concurrent step", len(steps))
	}
}

func TestSchedule_CycleDetected(t *testing.T) {
	var g Graph
	x := newElem(t, 1)
	y := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{x}, Dst: []object.Object{y}})
	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{y}, Dst: []object.Object{x}})
	g.EndSection(0, false, nil, nil)

	_, err := g.Schedule()
	if !errors.Is(err, errors.ErrCodeDependencyCycle) {
		t.Errorf("Schedule() error = %v, want %v", err, errors.ErrCodeDependencyCycle)
	}
}

func TestSchedule_CameraAndWaitPlacement(t *testing.T) {
	var g Graph
	a := newElem(t, 1)
	b := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Src: []object.Object{a}, Dst: []object.Object{b}})
	shot := &render.CameraShot{Scale: 2, X: 10, Y: 5}
	g.EndSection(3, false, shot, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Schedule() = %d steps, want 2", len(steps))
	}
	if steps[0].Camera != shot {
		t.Error("camera move must ride on the section's first step")
	}
	if steps[1].Camera != nil {
		t.Error("camera move leaked onto a later step")
	}
	if steps[0].Wait != 0 || steps[1].Wait != 3 {
		t.Errorf("waits = %v/%v, want 0/3 on the last step",
			steps[0].Wait, steps[1].Wait)
	}
}

func TestSchedule_FadeOutStep(t *testing.T) {
	var g Graph
	a := newElem(t, 1)
	b := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Dst: []object.Object{b}})
	g.EndSection(0, true, nil, []object.Object{b})

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Schedule() = %d steps, want play + fade-out", len(steps))
	}

	fade, ok := steps[1].Animations[0].(render.FadeOut)
	if !ok {
		t.Fatalf("last step is %T, want FadeOut", steps[1].Animations[0])
	}
	if len(fade.Items) != 1 || fade.Items[0].Handle() != a.Handle() {
		t.Errorf("faded %v, want only the unkept element", fade.Items)
	}
}

func TestSchedule_KeptMemoryKeepsItsMarks(t *testing.T) {
	var g Graph
	cfg := config.Default()
	mem := object.NewMemUnit(cfg, "#FFFFFF", 64, 128, 64,
		[]config.MemRange{{Base: 0, Limit: 0x1000}}, true, 0, 0)
	mem.SetGridCorner(1, 1)
	mark := mem.ReadMark(0, 64, "#FC6255")

	mustAdd(t, &g, Spec{Anim: fadeIn(mem), Dst: []object.Object{mem}})
	mustAdd(t, &g, Spec{Anim: fadeIn(mark), Dst: []object.Object{mark}})
	g.EndSection(0, true, nil, []object.Object{mem})

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	// Both the memory unit and its painted mark survive: no fade-out step.
	if len(steps) != 1 {
		t.Fatalf("Schedule() = %d steps, want 1 (nothing fades)", len(steps))
	}
}

func TestSchedule_CarryOverAcrossSections(t *testing.T) {
	var g Graph
	a := newElem(t, 1)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	g.EndSection(0, false, nil, nil)
	mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{a}})
	g.EndSection(0, true, nil, nil)

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	// a was consumed in section 2, so the fade-out has nothing to clear.
	if len(steps) != 2 {
		t.Errorf("Schedule() = %d steps, want 2", len(steps))
	}
}

func TestEndSection_EmptyBoundaryMerges(t *testing.T) {
	var g Graph
	a := newElem(t, 1)
	b := newElem(t, 2)

	mustAdd(t, &g, Spec{Anim: fadeIn(a), Dst: []object.Object{a}})
	mustAdd(t, &g, Spec{Anim: fadeIn(b), Dst: []object.Object{b}})
	g.EndSection(1, false, nil, []object.Object{a, b})
	g.EndSection(2, true, nil, []object.Object{b})

	steps, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	// One play step (waits accumulated) plus the fade-out of a.
	if len(steps) != 2 {
		t.Fatalf("Schedule() = %d steps, want 2", len(steps))
	}
	if steps[0].Wait != 3 {
		t.Errorf("merged wait = %v, want 3", steps[0].Wait)
	}
	fade := steps[1].Animations[0].(render.FadeOut)
	if len(fade.Items) != 1 || fade.Items[0].Handle() != a.Handle() {
		t.Errorf("faded %v, want only a (keep lists intersect to b)", fade.Items)
	}
}

func TestRefCounts_DuplicateOnReuse(t *testing.T) {
	var g Graph
	r := NewRefCounts()
	elem := newElem(t, 7)

	mustAdd(t, &g, Spec{Anim: fadeIn(elem), Dst: []object.Object{elem}})
	r.SetProducer(elem, nil)

	// First consumption: the element itself moves.
	if got := r.Duplicate(elem); got != elem {
		t.Errorf("first Duplicate() = %v, want the element itself", got)
	}
	consumer := mustAdd(t, &g, Spec{Anim: fadeIn(), Src: []object.Object{elem}})
	r.SetConsumer(elem, consumer, nil)

	// Second consumption: a clone, staged before the first consumer.
	dup := r.Duplicate(elem)
	if dup == elem {
		t.Fatal("second Duplicate() returned the original")
	}
	if dup.Handle() == elem.Handle() {
		t.Error("duplicate shares the original handle")
	}
	if len(consumer.addBefore) != 1 || consumer.addBefore[0].Handle() != dup.Handle() {
		t.Error("duplicate was not staged before the last consumer")
	}
}

func TestRefCounts_BySource(t *testing.T) {
	cfg := config.Default()
	r := NewRefCounts()
	reg := object.NewRegUnit(cfg, []string{"Zn"}, "#FFFFFF", 128, 4, 1, nil)
	elem := newElem(t, 7)

	r.SetSource(elem, reg, 0, 2, 0)

	if got := r.BySource(reg, 32, 0, 2, 0); got != elem {
		t.Errorf("BySource() = %v, want the recorded element", got)
	}
	if got := r.BySource(reg, 64, 0, 2, 0); got != nil {
		t.Errorf("BySource() with other width = %v, want nil", got)
	}
	if got := r.BySource(reg, 32, 1, 2, 0); got != nil {
		t.Errorf("BySource() with other register index = %v, want nil", got)
	}
}

func TestRefCounts_LastDeps(t *testing.T) {
	cfg := config.Default()
	r := NewRefCounts()
	reg := object.NewRegUnit(cfg, []string{"Zn"}, "#FFFFFF", 128, 4, 1, nil)
	a := newElem(t, 1)
	b := newElem(t, 2)

	r.SetProducer(a, reg)
	r.SetProducer(b, reg)

	deps := r.LastDeps(a, b)
	if len(deps) != 1 || deps[0].Handle() != reg.Handle() {
		t.Errorf("LastDeps() = %v, want the register once", deps)
	}
	if got := r.LastDep(a); got.Handle() != reg.Handle() {
		t.Errorf("LastDep() = %v, want the register", got)
	}

	unknown := newElem(t, 3)
	if got := r.LastDeps(unknown); len(got) != 0 {
		t.Errorf("LastDeps(unknown) = %v, want empty", got)
	}
}

func mustAdd(t *testing.T, g *Graph, spec Spec) *Item {
	t.Helper()
	it, err := g.Add(spec)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return it
}
