package scene

import (
	"testing"

	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

func newFlow(t *testing.T) *Flow {
	t.Helper()
	return New(config.Default(), nil)
}

// The canonical scenario: declare three 128-bit vectors, read one lane from
// two of them, push both lanes through an adder and assign the sum. The
// schedule must come out as four steps with the two reads concurrent.
func TestFlow_VectorAddScenario(t *testing.T) {
	f := newFlow(t)
	f.DrawTitle("ADD (vectors)")

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector(Za) error: %v", err)
	}
	zb, err := f.DeclVector("Zb", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector(Zb) error: %v", err)
	}
	zd, err := f.DeclVector("Zd", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector(Zd) error: %v", err)
	}

	za.SetElemValue(1, 0, 0)
	zb.SetElemValue(2, 0, 0)

	ea, err := f.ReadElem(za, 32, 0, 0, "op")
	if err != nil {
		t.Fatalf("ReadElem(Za) error: %v", err)
	}
	eb, err := f.ReadElem(zb, 32, 0, 0, "op")
	if err != nil {
		t.Fatalf("ReadElem(Zb) error: %v", err)
	}

	add := func(args []any) []any { return []any{args[0].(int) + args[1].(int)} }
	res, err := f.FuncCall("add", "add", []*object.ElemUnit{ea, eb}, 32, "res", add)
	if err != nil {
		t.Fatalf("FuncCall error: %v", err)
	}
	if res.Value() != 3 {
		t.Errorf("result value = %v, want 3", res.Value())
	}

	if _, err := f.AssignElem(res, zd, 32, 0, 0); err != nil {
		t.Fatalf("AssignElem error: %v", err)
	}
	if zd.ElemValue(0, 0) != 3 {
		t.Errorf("Zd[0] = %v, want 3", zd.ElemValue(0, 0))
	}

	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.Title != "ADD (vectors)" {
		t.Errorf("timeline title = %q", timeline.Title)
	}
	if timeline.StepCount() != 4 {
		t.Fatalf("StepCount() = %d, want 4 (decls / reads / call / assign)", timeline.StepCount())
	}

	// Step 1 carries the declarations and the camera reframe.
	if timeline.Steps[0].Camera == nil {
		t.Error("first step is missing the camera reframe")
	}
	// Step 2 plays both reads concurrently.
	if got := len(timeline.Steps[1].Animations); got != 2 {
		t.Errorf("reads step has %d animations, want 2", got)
	}
}

func TestFlow_ReadElemCoalescesWithinSection(t *testing.T) {
	f := newFlow(t)

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	zd, err := f.DeclVector("Zd", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}

	e1, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}

	// Unconsumed: the second read returns the same element.
	e2, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	if e2 != e1 {
		t.Fatal("second read of an unconsumed lane must return the same element")
	}

	// Consume it, then read again: now a clone is staged.
	if _, err := f.AssignElem(e1, zd, 32, 0, 0); err != nil {
		t.Fatalf("AssignElem error: %v", err)
	}
	e3, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	if e3 == e1 || e3.Handle() == e1.Handle() {
		t.Fatal("read after consumption must return a clone")
	}
	if e3.WidthBits() != e1.WidthBits() {
		t.Errorf("clone width = %d, want %d", e3.WidthBits(), e1.WidthBits())
	}

	// A different width never coalesces.
	e4, err := f.ReadElem(za, 64, 0, 0, "b")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	if e4.WidthBits() != 64 {
		t.Errorf("width = %d, want 64", e4.WidthBits())
	}
}

func TestFlow_ReadElemDoesNotCoalesceAcrossSections(t *testing.T) {
	f := newFlow(t)

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	e1, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}

	f.EndSection(0, false, nil, true)

	e2, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	if e2 == e1 {
		t.Error("element source index must be cleared at section boundaries")
	}
}

func TestFlow_FuncCallMemoizesUnit(t *testing.T) {
	f := newFlow(t)

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	e0, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	e1, err := f.ReadElem(za, 32, 0, 1, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}

	if _, err := f.FuncCall("neg", "neg", []*object.ElemUnit{e0}, 32, "r", nil); err != nil {
		t.Fatalf("FuncCall error: %v", err)
	}
	if _, err := f.FuncCall("neg", "neg", []*object.ElemUnit{e1}, 32, "r", nil); err != nil {
		t.Fatalf("FuncCall error: %v", err)
	}

	if !f.Placement().Has("fn:neg") {
		t.Fatal("function unit was not memoized in the placement map")
	}

	// A call with a different arity through the same unit is rejected.
	if _, err := f.FuncCall("neg", "neg", []*object.ElemUnit{e0, e1}, 32, "r", nil); err == nil {
		t.Error("arity mismatch on a memoized unit must fail")
	}

	// Both calls share the serialized unit, so they land in distinct steps:
	// decls / reads / call 1 / call 2.
	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 4 {
		t.Fatalf("StepCount() = %d, want 4", timeline.StepCount())
	}
	for i := 2; i < 4; i++ {
		if got := len(timeline.Steps[i].Animations); got != 1 {
			t.Errorf("step %d has %d animations, want 1 (serialized calls)", i, got)
		}
	}
}

func TestFlow_EndSectionFadeOutAndReset(t *testing.T) {
	f := newFlow(t)

	if _, err := f.DeclVector("Za", 128, 4); err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	if _, err := f.DeclVector("Zb", 128, 4); err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}

	f.EndSection(1, true, []string{"Za"}, true)

	if !f.Placement().Has("Za") {
		t.Error("kept object must survive the placement reset")
	}
	if f.Placement().Has("Zb") {
		t.Error("unkept object must leave the placement map")
	}

	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	// Step 1: declarations, wait=1. Step 2: the fade-out.
	if timeline.StepCount() != 2 {
		t.Fatalf("StepCount() = %d, want 2", timeline.StepCount())
	}
	if timeline.Steps[0].Wait != 1 {
		t.Errorf("wait = %v, want 1", timeline.Steps[0].Wait)
	}

	fade := timeline.Steps[1].Animations
	if len(fade) != 1 || fade[0].Name() != "fade_out" {
		t.Fatalf("last step = %v, want a single fade_out", fade)
	}
	faded := fade[0].Objects()
	if len(faded) != 1 || faded[0].Label() != "Zb" {
		t.Errorf("faded objects = %v, want only Zb", faded)
	}
}

func TestFlow_EmptyEndSectionsMerge(t *testing.T) {
	f := newFlow(t)

	if _, err := f.DeclScalar("Xa", 64); err != nil {
		t.Fatalf("DeclScalar error: %v", err)
	}
	f.EndSection(1, false, nil, true)
	f.EndSection(2, false, nil, true)

	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 1 {
		t.Fatalf("StepCount() = %d, want 1", timeline.StepCount())
	}
	if timeline.Steps[0].Wait != 3 {
		t.Errorf("merged wait = %v, want 3", timeline.Steps[0].Wait)
	}
}

func TestFlow_CameraOnlyMovesOnChange(t *testing.T) {
	f := newFlow(t)

	if _, err := f.DeclScalar("Xa", 64); err != nil {
		t.Fatalf("DeclScalar error: %v", err)
	}
	shot := f.updateCamera()
	if shot == nil {
		t.Fatal("first bounding-box change must reframe the camera")
	}
	if shot.X != float64(f.placement.Width())/2 {
		t.Errorf("camera x = %v, want %v", shot.X, float64(f.placement.Width())/2)
	}

	// Nothing placed since: the frame is unchanged.
	if again := f.updateCamera(); again != nil {
		t.Errorf("unchanged bounding box reframed the camera: %+v", again)
	}
}

func TestFlow_DataConvert(t *testing.T) {
	f := newFlow(t)

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	za.SetElemValue(5, 0, 0)

	e, err := f.ReadElem(za, 32, 0, 0, "a")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	converted, err := f.DataConvert(e, 16, 0, "cvt", 7)
	if err != nil {
		t.Fatalf("DataConvert error: %v", err)
	}
	if converted.WidthBits() != 16 {
		t.Errorf("converted width = %d, want 16", converted.WidthBits())
	}
	if converted.Value() != 7 {
		t.Errorf("converted value = %v, want 7", converted.Value())
	}

	// The conversion inherits the source element's producing register, so a
	// later consumer still orders against it.
	if dep := f.refs.LastDep(converted); dep == nil || dep.Handle() != za.Handle() {
		t.Errorf("converted element dependency = %v, want Za", dep)
	}

	// decls / read / convert.
	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 3 {
		t.Errorf("StepCount() = %d, want 3", timeline.StepCount())
	}
}

func TestFlow_DeclVectorGroup(t *testing.T) {
	f := newFlow(t)

	names := []string{"Z0", "Z1", "Z2", "Z3"}
	regs, err := f.DeclVectorGroup(names, 64, 2)
	if err != nil {
		t.Fatalf("DeclVectorGroup error: %v", err)
	}
	if len(regs) != 4 {
		t.Fatalf("got %d registers, want 4", len(regs))
	}
	for i, name := range names {
		if !f.Placement().Has(name) {
			t.Errorf("register %s was not placed", name)
		}
		if regs[i].Label() != name {
			t.Errorf("register %d label = %q, want %q", i, regs[i].Label(), name)
		}
	}

	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 1 {
		t.Fatalf("StepCount() = %d, want 1", timeline.StepCount())
	}
	if got := timeline.Steps[0].Animations[0].Objects(); len(got) != 4 {
		t.Errorf("group fade-in covers %d objects, want 4", len(got))
	}
}

func TestFlow_ConcatVector(t *testing.T) {
	f := newFlow(t)

	z0, err := f.DeclVector("Z0", 64, 2)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	z1, err := f.DeclVector("Z1", 64, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}

	merged, err := f.ConcatVector([]*object.RegUnit{z0, z1}, "Zm")
	if err != nil {
		t.Fatalf("ConcatVector error: %v", err)
	}
	if merged.WidthBits() != 128 {
		t.Errorf("merged width = %d, want 128", merged.WidthBits())
	}
	// Lane width follows the narrowest member: 64/4 = 16 bits.
	if merged.ElemBits() != 16 {
		t.Errorf("merged lane width = %d, want 16", merged.ElemBits())
	}
	if !f.Placement().Has("Zm") {
		t.Error("merged register was not placed")
	}
}

func TestFlow_CounterToPredicate(t *testing.T) {
	f := newFlow(t)

	cnt, err := f.DeclScalar("cnt", 64)
	if err != nil {
		t.Fatalf("DeclScalar error: %v", err)
	}

	mask, err := f.CounterToPredicate(cnt, "Pg", 32, 4)
	if err != nil {
		t.Fatalf("CounterToPredicate error: %v", err)
	}
	if mask.WidthBits() != 32 {
		t.Errorf("mask width = %d, want 32", mask.WidthBits())
	}
	if mask.ElemBits() != 8 {
		t.Errorf("mask lane width = %d, want 8", mask.ElemBits())
	}
	if mask.Label() != "Pg" {
		t.Errorf("mask label = %q, want Pg", mask.Label())
	}

	// The predicate replaces the counter in place, left edges lined up.
	cx, cy := cnt.Center()
	mx, my := mask.Center()
	wantX := cx - cnt.RectWidth()/2 + mask.RectWidth()/2
	if mx != wantX || my != cy {
		t.Errorf("mask center = (%v, %v), want (%v, %v)", mx, my, wantX, cy)
	}

	f.EndSection(0, true, nil, true)

	// decl / conversion / fade-out.
	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 3 {
		t.Fatalf("StepCount() = %d, want 3", timeline.StepCount())
	}
	anims := timeline.Steps[1].Animations
	if len(anims) != 1 || anims[0].Name() != "counter_to_predicate" {
		t.Fatalf("conversion step = %v, want one counter_to_predicate", anims)
	}

	// The counter left the scene with the conversion, so only the predicate
	// fades out at the section end.
	faded := timeline.Steps[2].Animations[0].Objects()
	if len(faded) != 1 || faded[0].Handle() != mask.Handle() {
		t.Errorf("faded objects = %v, want only the predicate", faded)
	}
}

func TestFlow_CounterToPredicateFeedsReads(t *testing.T) {
	f := newFlow(t)

	cnt, err := f.DeclScalar("cnt", 64)
	if err != nil {
		t.Fatalf("DeclScalar error: %v", err)
	}
	mask, err := f.CounterToPredicate(cnt, "Pg", 32, 4)
	if err != nil {
		t.Fatalf("CounterToPredicate error: %v", err)
	}

	e, err := f.ReadElem(mask, 0, 0, 0, "p")
	if err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	if e.WidthBits() != 8 {
		t.Errorf("read width = %d, want the mask lane width 8", e.WidthBits())
	}

	// decl / conversion / read: the read orders after the conversion that
	// produced its register.
	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.StepCount() != 3 {
		t.Fatalf("StepCount() = %d, want 3", timeline.StepCount())
	}
}

func TestFlow_StartSectionResetsColors(t *testing.T) {
	f := newFlow(t)

	first := f.colors.Get("x")
	f.colors.Get("y")

	if err := f.StartSection("round 2"); err != nil {
		t.Fatalf("StartSection error: %v", err)
	}
	if got := f.colors.Get("z"); got != first {
		t.Errorf("color after reset = %v, want cycle restart at %v", got, first)
	}

	timeline, err := f.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	anims := timeline.Steps[0].Animations
	if len(anims) != 1 || anims[0].Name() != "fade_in" {
		t.Fatalf("subtitle step = %v, want one fade_in", anims)
	}
	if objs := anims[0].Objects(); len(objs) != 1 || objs[0].Kind() != object.KindSubtitle {
		t.Errorf("subtitle fade-in objects = %v", anims[0].Objects())
	}
}

func TestFlow_InvalidInputs(t *testing.T) {
	f := newFlow(t)

	if _, err := f.DeclScalar("Xa", 0); err == nil {
		t.Error("zero-width register must fail")
	}
	if _, err := f.DeclVectorGroup(nil, 64, 1); err == nil {
		t.Error("empty register group must fail")
	}
	if _, err := f.DataConvert(nil, 16, 0, "", nil); err == nil {
		t.Error("nil element conversion must fail")
	}
	if _, err := f.CounterToPredicate(nil, "Pg", 32, 4); err == nil {
		t.Error("nil counter conversion must fail")
	}
	if _, err := f.FuncCall("f", "f", nil, 0, "", nil); err == nil {
		t.Error("non-positive result width must fail")
	}
	if _, err := f.MemRead(nil, nil, 0, ""); err == nil {
		t.Error("nil memory read must fail")
	}
	if err := f.MemWrite(nil, nil, nil); err == nil {
		t.Error("nil memory write must fail")
	}

	if _, err := f.DeclScalar("Xb", 64); err != nil {
		t.Fatalf("DeclScalar error: %v", err)
	}
	if _, err := f.DeclScalar("Xb", 64); err == nil {
		t.Error("duplicate register name must fail")
	}
}

// recordingRenderer captures the playback call sequence.
type recordingRenderer struct {
	calls []string
	waits []float64
	plays int
}

func (r *recordingRenderer) ReframeCamera(render.CameraShot) { r.calls = append(r.calls, "camera") }
func (r *recordingRenderer) Add(...object.Object)            { r.calls = append(r.calls, "add") }
func (r *recordingRenderer) Remove(...object.Object)         { r.calls = append(r.calls, "remove") }
func (r *recordingRenderer) Play(...render.Animation) {
	r.calls = append(r.calls, "play")
	r.plays++
}
func (r *recordingRenderer) Wait(seconds float64) {
	r.calls = append(r.calls, "wait")
	r.waits = append(r.waits, seconds)
}

func TestFlow_PlayReplaysSteps(t *testing.T) {
	f := newFlow(t)

	za, err := f.DeclVector("Za", 128, 4)
	if err != nil {
		t.Fatalf("DeclVector error: %v", err)
	}
	if _, err := f.ReadElem(za, 32, 0, 0, "a"); err != nil {
		t.Fatalf("ReadElem error: %v", err)
	}
	f.EndSection(2, false, nil, true)

	r := &recordingRenderer{}
	if err := f.Play(r); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	// Two steps: decl (with camera) and read (with the wait).
	if r.plays != 2 {
		t.Errorf("Play called %d times, want 2", r.plays)
	}
	if len(r.calls) == 0 || r.calls[0] != "camera" {
		t.Errorf("first call = %v, want camera", r.calls)
	}
	if len(r.waits) != 1 || r.waits[0] != 2 {
		t.Errorf("waits = %v, want [2]", r.waits)
	}
}
