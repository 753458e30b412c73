package scene

import (
	"github.com/isaflow/isaflow/pkg/anim"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/render"
)

// ReadElem reads a lane out of a register as a movable element. The element
// appears over the lane it was read from and is colored by tag (an empty
// tag cycles the palette).
//
// Reading the same lane with the same width twice inside one section
// coalesces: the second read returns the element already on scene, or a
// clone staged right before its previous consumer when it has moved on.
func (f *Flow) ReadElem(reg *object.RegUnit, widthBits, regIdx, index int, tag string) (*object.ElemUnit, error) {
	if widthBits <= 0 {
		widthBits = reg.ElemBits()
	}

	if prev := f.refs.BySource(reg, widthBits, regIdx, index, 0); prev != nil {
		elem := f.refs.Duplicate(prev)
		f.logger.Debug("element read coalesced",
			"register", reg.Label(), "index", index, "cloned", elem != prev)
		return elem, nil
	}

	elem := object.NewElemUnit(f.cfg, f.colorFor(tag), widthBits, reg.ElemValue(index, regIdx))
	x, y := reg.ElemCenter(index, regIdx, 0, widthBits)
	elem.MoveTo(x, y)

	if _, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: "read_elem", Anims: []render.Animation{
			render.Move{Item: elem, X: x, Y: y},
		}},
		Src: []object.Object{reg},
		Dst: []object.Object{elem},
		Dep: []object.Object{reg},
	}); err != nil {
		return nil, err
	}

	f.refs.SetSource(elem, reg, regIdx, index, 0)
	f.refs.SetProducer(elem, reg)

	f.logger.Debug("element read",
		"register", reg.Label(), "index", index, "width", widthBits)
	return elem, nil
}

// moveInto animates elem onto a register lane. commit additionally stores
// the element's value into the register.
func (f *Flow) moveInto(verb string, elem *object.ElemUnit, reg *object.RegUnit,
	widthBits, regIdx, index int, commit bool) (*object.ElemUnit, error) {
	if elem == nil || reg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s needs an element and a register", verb)
	}
	if widthBits <= 0 {
		widthBits = elem.WidthBits()
	}

	oldDep := f.refs.LastDep(elem)
	moved := f.refs.Duplicate(elem)

	x, y := reg.ElemCenter(index, regIdx, 0, widthBits)
	moved.MoveTo(x, y)

	item, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: verb, Anims: []render.Animation{
			render.Move{Item: moved, X: x, Y: y},
		}},
		Src: []object.Object{moved},
		Dst: []object.Object{moved},
		Dep: []object.Object{oldDep, reg},
	})
	if err != nil {
		return nil, err
	}

	f.refs.SetConsumer(elem, item, reg)
	if commit {
		reg.SetElemValue(moved.Value(), index, regIdx)
	}

	f.logger.Debug("element moved",
		"verb", verb, "register", reg.Label(), "index", index, "committed", commit)
	return moved, nil
}

// MoveElem slides an element onto a register lane without committing its
// value, e.g. to stage an operand visually.
func (f *Flow) MoveElem(elem *object.ElemUnit, reg *object.RegUnit, widthBits, regIdx, index int) (*object.ElemUnit, error) {
	return f.moveInto("move_elem", elem, reg, widthBits, regIdx, index, false)
}

// AssignElem moves an element onto a register lane and stores its value
// there. The element stays on scene as the lane's visible content.
func (f *Flow) AssignElem(elem *object.ElemUnit, reg *object.RegUnit, widthBits, regIdx, index int) (*object.ElemUnit, error) {
	return f.moveInto("assign_elem", elem, reg, widthBits, regIdx, index, true)
}

// DataConvert morphs an element into one of a different width, right-aligned
// at lane index of the source element. value is the converted data value,
// tag colors the result.
func (f *Flow) DataConvert(elem *object.ElemUnit, widthBits, index int, tag string, value any) (*object.ElemUnit, error) {
	if elem == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "data convert needs an element")
	}
	if widthBits <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"data convert needs a positive width, got %d", widthBits)
	}

	oldDep := f.refs.LastDep(elem)
	src := f.refs.Duplicate(elem)

	converted := object.NewElemUnit(f.cfg, f.colorFor(tag), widthBits, value)
	x, y := src.AlignedPos(index*widthBits, widthBits)
	converted.MoveTo(x, y)

	item, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: "data_convert", Anims: []render.Animation{
			render.Transform{From: src, To: converted},
		}},
		Src: []object.Object{src},
		Dst: []object.Object{converted},
		Dep: []object.Object{oldDep},
	})
	if err != nil {
		return nil, err
	}

	f.refs.SetConsumer(elem, item, oldDep)
	f.refs.SetProducer(converted, oldDep)

	f.logger.Debug("element converted",
		"from_width", src.WidthBits(), "to_width", widthBits, "index", index)
	return converted, nil
}

// FuncCall animates a call through the function unit memoized under key
// (the function name when key is empty): arguments dock onto the argument
// ports, the result appears under the result port. The result value is
// computed by fn over the argument values; a nil fn yields an unknown
// result. Calls through the same unit serialize.
func (f *Flow) FuncCall(key, name string, args []*object.ElemUnit, resWidthBits int,
	tag string, fn object.Fn) (*object.ElemUnit, error) {
	if resWidthBits <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"function call needs a positive result width, got %d", resWidthBits)
	}
	if key == "" {
		key = name
	}

	argWidths := make([]int, len(args))
	for i, arg := range args {
		if arg == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "function argument %d is nil", i)
		}
		argWidths[i] = arg.WidthBits()
	}

	unit, err := f.funcUnit(key, name, argWidths, resWidthBits, fn)
	if err != nil {
		return nil, err
	}
	if unit.ArgCount() != len(args) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"function unit %q takes %d arguments, got %d", key, unit.ArgCount(), len(args))
	}

	oldDeps := f.refs.LastDeps(args...)

	srcs := make([]object.Object, len(args))
	argVals := make([]any, len(args))
	anims := make([]render.Animation, 0, len(args)+1)
	for i, arg := range args {
		moved := f.refs.Duplicate(arg)
		x, y := unit.ArgPos(i, 0, moved.WidthBits())
		moved.MoveTo(x, y)
		srcs[i] = moved
		argVals[i] = moved.Value()
		anims = append(anims, render.Move{Item: moved, X: x, Y: y})
	}

	var resVal any
	if resVals := unit.Call(argVals); len(resVals) > 0 {
		resVal = resVals[0]
	}

	res := object.NewElemUnit(f.cfg, f.colorFor(tag), resWidthBits, resVal)
	x, y := unit.ResPos(0, 0, resWidthBits)
	res.MoveTo(x, y)
	anims = append(anims, render.Move{Item: res, X: x, Y: y})

	item, err := f.graph.Add(anim.Spec{
		Anim: render.Group{Verb: "function_call", Anims: anims},
		Src:  srcs,
		Dst:  []object.Object{res},
		Dep:  append(oldDeps, unit),
	})
	if err != nil {
		return nil, err
	}

	for _, arg := range args {
		f.refs.SetConsumer(arg, item, unit)
	}
	f.refs.SetProducer(res, unit)

	f.logger.Debug("function called", "key", key, "name", name, "args", len(args))
	return res, nil
}

// MemRead animates a memory read: the address element docks onto the
// address port and a data element of widthBits appears at the data port.
// When the address value is known, the accessed range is painted onto the
// memory map as a read mark that survives fade-outs with the unit.
func (f *Flow) MemRead(mem *object.MemUnit, addr *object.ElemUnit, widthBits int, tag string) (*object.ElemUnit, error) {
	if mem == nil || addr == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "memory read needs a unit and an address")
	}
	if widthBits <= 0 {
		widthBits = mem.DataWidth()
	}

	oldDep := f.refs.LastDep(addr)
	moved := f.refs.Duplicate(addr)

	ax, ay := mem.AddrPos(moved.WidthBits())
	moved.MoveTo(ax, ay)

	data := object.NewElemUnit(f.cfg, f.colorFor(tag), widthBits, nil)
	dx, dy := mem.DataPos(widthBits)
	data.MoveTo(dx, dy)

	spec := anim.Spec{
		Anim: render.Group{Verb: "read_memory", Anims: []render.Animation{
			render.Move{Item: moved, X: ax, Y: ay},
			render.Move{Item: data, X: dx, Y: dy},
		}},
		Src: []object.Object{moved},
		Dst: []object.Object{data},
		Dep: []object.Object{oldDep, mem},
	}
	if low, ok := asAddr(moved.Value()); ok {
		if mark := mem.ReadMark(low, low+uint64(widthBits/8), data.Color()); mark != nil {
			spec.AddAfter = []object.Object{mark}
		}
	}

	item, err := f.graph.Add(spec)
	if err != nil {
		return nil, err
	}

	f.refs.SetConsumer(addr, item, mem)
	f.refs.SetProducer(data, mem)

	f.logger.Debug("memory read", "width", widthBits)
	return data, nil
}

// MemWrite animates a memory write: address and data elements dock onto
// their ports and the written range is painted onto the memory map as a
// write mark when the address value is known.
func (f *Flow) MemWrite(mem *object.MemUnit, addr, data *object.ElemUnit) error {
	if mem == nil || addr == nil || data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "memory write needs a unit, an address and data")
	}

	addrDep := f.refs.LastDep(addr)
	dataDep := f.refs.LastDep(data)
	movedAddr := f.refs.Duplicate(addr)
	movedData := f.refs.Duplicate(data)

	ax, ay := mem.AddrPos(movedAddr.WidthBits())
	movedAddr.MoveTo(ax, ay)
	dx, dy := mem.DataPos(movedData.WidthBits())
	movedData.MoveTo(dx, dy)

	spec := anim.Spec{
		Anim: render.Group{Verb: "write_memory", Anims: []render.Animation{
			render.Move{Item: movedAddr, X: ax, Y: ay},
			render.Move{Item: movedData, X: dx, Y: dy},
		}},
		Src: []object.Object{movedAddr, movedData},
		Dep: []object.Object{addrDep, dataDep, mem},
	}
	if low, ok := asAddr(movedAddr.Value()); ok {
		if mark := mem.WriteMark(low, low+uint64(movedData.WidthBits()/8), movedData.Color()); mark != nil {
			spec.AddAfter = []object.Object{mark}
		}
	}

	item, err := f.graph.Add(spec)
	if err != nil {
		return err
	}

	f.refs.SetConsumer(addr, item, mem)
	f.refs.SetConsumer(data, item, mem)

	f.logger.Debug("memory written", "width", movedData.WidthBits())
	return nil
}

// asAddr converts a numeric element value into a memory address.
func asAddr(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int32:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
