package scene

import (
	"github.com/isaflow/isaflow/pkg/anim"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/place"
	"github.com/isaflow/isaflow/pkg/render"
)

// funcKeyPrefix namespaces memoized function units inside the placement
// map, keeping them apart from registers sharing a name.
const funcKeyPrefix = "fn:"

// declRegister places a register unit and records its fade-in.
func (f *Flow) declRegister(name string, widthBits, elements, nreg int) (*object.RegUnit, error) {
	if widthBits <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"register %q needs a positive width, got %d", name, widthBits)
	}

	reg := object.NewRegUnit(f.cfg, []string{name}, f.colors.DefaultColor(),
		widthBits, elements, nreg, nil)
	pos, err := f.placement.Place(reg, name)
	if err != nil {
		return nil, wrapPlace(err, "register", name)
	}

	if _, err := f.graph.Add(anim.Spec{
		Anim: render.FadeIn{Items: []object.Object{reg}},
		Dst:  []object.Object{reg},
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("register declared",
		"name", name, "width", widthBits, "elements", elements, "row", pos.Row, "col", pos.Col)
	return reg, nil
}

// DeclScalar declares a scalar register of the given bit width.
func (f *Flow) DeclScalar(name string, widthBits int) (*object.RegUnit, error) {
	return f.declRegister(name, widthBits, 1, 1)
}

// DeclVector declares a vector register divided into equally sized lanes.
func (f *Flow) DeclVector(name string, widthBits, elements int) (*object.RegUnit, error) {
	return f.declRegister(name, widthBits, elements, 1)
}

// Decl2DVector declares a matrix register: nreg stacked vector registers
// addressed as one unit.
func (f *Flow) Decl2DVector(name string, widthBits, elements, nreg int) (*object.RegUnit, error) {
	return f.declRegister(name, widthBits, elements, nreg)
}

// DeclVectorGroup declares one vector register per name and places them as
// one block, splitting the block into rows to approximate the frame shape.
// All registers fade in as a single concurrent animation.
func (f *Flow) DeclVectorGroup(names []string, widthBits, elements int) ([]*object.RegUnit, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "register group needs at least one name")
	}
	if widthBits <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"register group needs a positive width, got %d", widthBits)
	}

	regs := make([]*object.RegUnit, len(names))
	items := make([]place.Item, len(names))
	for i, name := range names {
		regs[i] = object.NewRegUnit(f.cfg, []string{name}, f.colors.DefaultColor(),
			widthBits, elements, 1, nil)
		items[i] = regs[i]
	}

	if _, err := f.placement.PlaceGroup(items, names, 0); err != nil {
		return nil, wrapPlace(err, "register group", names[0])
	}

	objs := asObjects(regs)
	if _, err := f.graph.Add(anim.Spec{
		Anim: render.FadeIn{Items: objs},
		Dst:  objs,
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("register group declared",
		"count", len(names), "width", widthBits, "elements", elements)
	return regs, nil
}

// ConcatVector merges several vector registers into one register as wide as
// all of them together, laned at the narrowest member lane width. The merged
// register is placed fresh; the sources fade into it.
func (f *Flow) ConcatVector(regs []*object.RegUnit, name string) (*object.RegUnit, error) {
	if len(regs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "concat needs at least one register")
	}

	widthBits := 0
	elemBits := regs[0].ElemBits()
	for _, reg := range regs {
		widthBits += reg.WidthBits()
		if reg.ElemBits() < elemBits {
			elemBits = reg.ElemBits()
		}
	}

	merged := object.NewRegUnit(f.cfg, []string{name}, f.colors.DefaultColor(),
		widthBits, widthBits/elemBits, 1, nil)
	if _, err := f.placement.Place(merged, name); err != nil {
		return nil, wrapPlace(err, "register", name)
	}

	srcs := asObjects(regs)
	if _, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: "concat_vector", Anims: []render.Animation{
			render.FadeOut{Items: srcs},
			render.FadeIn{Items: []object.Object{merged}},
		}},
		Src: srcs,
		Dst: []object.Object{merged},
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("vectors concatenated", "name", name, "width", widthBits, "sources", len(regs))
	return merged, nil
}

// CounterToPredicate morphs a counter register into a mask predicate
// register of widthBits split into elements lanes. The predicate takes the
// counter's position, left edges lined up, and the counter leaves the scene.
func (f *Flow) CounterToPredicate(reg *object.RegUnit, name string, widthBits, elements int) (*object.RegUnit, error) {
	if reg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "predicate conversion needs a register")
	}
	if widthBits <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"predicate %q needs a positive width, got %d", name, widthBits)
	}

	mask := object.NewRegUnit(f.cfg, []string{name}, f.colors.DefaultColor(),
		widthBits, elements, 1, nil)

	cx, cy := reg.Center()
	left := cx - reg.RectWidth()/2
	mask.MoveTo(left+mask.RectWidth()/2, cy)

	if _, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: "counter_to_predicate", Anims: []render.Animation{
			render.Transform{From: reg, To: mask},
		}},
		Src: []object.Object{reg},
		Dst: []object.Object{mask},
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("counter converted to predicate",
		"counter", reg.Label(), "name", name, "width", widthBits, "elements", elements)
	return mask, nil
}

// DeclFuncUnit declares (or retrieves) the function unit memoized under key
// without animating a call through it. Calls with the same key share the
// placed unit.
func (f *Flow) DeclFuncUnit(key, name string, argWidths []int, resWidthBits int, fn object.Fn) (*object.FuncUnit, error) {
	if key == "" {
		key = name
	}
	return f.funcUnit(key, name, argWidths, resWidthBits, fn)
}

// funcUnit returns the function unit memoized under key, placing and
// fading in a new unit on first use.
func (f *Flow) funcUnit(key, name string, argWidths []int, resWidthBits int, fn object.Fn) (*object.FuncUnit, error) {
	mapKey := funcKeyPrefix + key
	if item, ok := f.placement.Item(mapKey); ok {
		unit, ok := item.(*object.FuncUnit)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidObject,
				"placement key %q does not hold a function unit", key)
		}
		return unit, nil
	}

	unit := object.NewFuncUnit(f.cfg, name, f.colors.DefaultColor(),
		argWidths, []int{resWidthBits}, nil, nil, fn)
	if _, err := f.placement.Place(unit, mapKey); err != nil {
		return nil, wrapPlace(err, "function unit", key)
	}

	if _, err := f.graph.Add(anim.Spec{
		Anim: render.FadeIn{Items: []object.Object{unit}},
		Dst:  []object.Object{unit},
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("function unit declared", "key", key, "name", name, "args", len(argWidths))
	return unit, nil
}

// DeclMemory places a memory unit under the given key. Non-positive widths
// fall back to the configured bus widths; parallel memories allow
// overlapping accesses instead of serializing them.
func (f *Flow) DeclMemory(key string, addrWidth, dataWidth int, parallel bool) (*object.MemUnit, error) {
	if addrWidth <= 0 {
		addrWidth = f.cfg.MemAddrWidth
	}
	if dataWidth <= 0 {
		dataWidth = f.cfg.MemDataWidth
	}

	mem := object.NewMemUnit(f.cfg, f.colors.DefaultColor(),
		addrWidth, dataWidth, f.cfg.MemAlign, f.cfg.MemRanges, parallel, 0, 0)
	if _, err := f.placement.Place(mem, key); err != nil {
		return nil, wrapPlace(err, "memory unit", key)
	}

	if _, err := f.graph.Add(anim.Spec{
		Anim: render.FadeIn{Items: []object.Object{mem}},
		Dst:  []object.Object{mem},
	}); err != nil {
		return nil, err
	}

	f.logger.Debug("memory declared",
		"key", key, "addr_width", addrWidth, "data_width", dataWidth, "parallel", parallel)
	return mem, nil
}
