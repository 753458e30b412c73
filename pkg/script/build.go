package script

import (
	"github.com/charmbracelet/log"

	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/scene"
)

// builtinFns are the result functions available to scripted function calls.
// Unknown or empty fn names leave the result value unknown.
var builtinFns = map[string]object.Fn{
	"add": func(args []any) []any { return []any{reduceInts(args, func(a, b int64) int64 { return a + b })} },
	"sub": func(args []any) []any { return []any{reduceInts(args, func(a, b int64) int64 { return a - b })} },
	"mul": func(args []any) []any { return []any{reduceInts(args, func(a, b int64) int64 { return a * b })} },
	"neg": func(args []any) []any {
		if v, ok := asInt64(first(args)); ok {
			return []any{-v}
		}
		return []any{nil}
	},
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// reduceInts folds integer arguments left to right, yielding nil as soon as
// a value is unknown.
func reduceInts(args []any, fold func(a, b int64) int64) any {
	if len(args) == 0 {
		return nil
	}
	acc, ok := asInt64(args[0])
	if !ok {
		return nil
	}
	for _, arg := range args[1:] {
		v, ok := asInt64(arg)
		if !ok {
			return nil
		}
		acc = fold(acc, v)
	}
	return acc
}

// builder tracks the symbol tables while replaying a script onto a flow.
type builder struct {
	flow  *scene.Flow
	regs  map[string]*object.RegUnit
	elems map[string]*object.ElemUnit
	mems  map[string]*object.MemUnit
}

// Build replays the script onto a fresh flow.
func (s *Script) Build(cfg *config.Config, logger *log.Logger) (*scene.Flow, error) {
	b := &builder{
		flow:  scene.New(cfg, logger),
		regs:  make(map[string]*object.RegUnit),
		elems: make(map[string]*object.ElemUnit),
		mems:  make(map[string]*object.MemUnit),
	}
	b.flow.DrawTitle(s.Title)

	for si, sec := range s.Sections {
		if sec.Subtitle != "" {
			if err := b.flow.StartSection(sec.Subtitle); err != nil {
				return nil, err
			}
		}
		for oi, op := range sec.Ops {
			if err := b.apply(op); err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err,
					"section %d op %d (%s)", si, oi, op.Kind)
			}
		}
		b.flow.EndSection(sec.Wait, sec.FadesOut(), sec.Keep, sec.KeepsPositions())
	}
	return b.flow, nil
}

func (b *builder) reg(name string) (*object.RegUnit, error) {
	if reg, ok := b.regs[name]; ok {
		return reg, nil
	}
	return nil, errors.New(errors.ErrCodeObjectNotFound, "no register %q", name)
}

func (b *builder) elem(name string) (*object.ElemUnit, error) {
	if elem, ok := b.elems[name]; ok {
		return elem, nil
	}
	return nil, errors.New(errors.ErrCodeObjectNotFound, "no element %q", name)
}

func (b *builder) mem(name string) (*object.MemUnit, error) {
	if mem, ok := b.mems[name]; ok {
		return mem, nil
	}
	return nil, errors.New(errors.ErrCodeObjectNotFound, "no memory unit %q", name)
}

// seedValues stores declared lane values into register 0.
func seedValues(reg *object.RegUnit, values []int64) {
	for i, v := range values {
		reg.SetElemValue(v, i, 0)
	}
}

func (b *builder) apply(op Op) error {
	switch op.Kind {
	case OpDeclScalar:
		reg, err := b.flow.DeclScalar(op.Name, op.Width)
		if err != nil {
			return err
		}
		seedValues(reg, op.Values)
		b.regs[op.Name] = reg

	case OpDeclVector:
		reg, err := b.flow.DeclVector(op.Name, op.Width, op.Elements)
		if err != nil {
			return err
		}
		seedValues(reg, op.Values)
		b.regs[op.Name] = reg

	case OpDecl2DVector:
		reg, err := b.flow.Decl2DVector(op.Name, op.Width, op.Elements, op.RegCount)
		if err != nil {
			return err
		}
		seedValues(reg, op.Values)
		b.regs[op.Name] = reg

	case OpDeclVectorGroup:
		regs, err := b.flow.DeclVectorGroup(op.Names, op.Width, op.Elements)
		if err != nil {
			return err
		}
		for i, name := range op.Names {
			b.regs[name] = regs[i]
		}

	case OpDeclMemory:
		mem, err := b.flow.DeclMemory(op.Name, op.AddrWidth, op.DataWidth, op.Parallel)
		if err != nil {
			return err
		}
		b.mems[op.Name] = mem

	case OpReadElem:
		reg, err := b.reg(op.Reg)
		if err != nil {
			return err
		}
		elem, err := b.flow.ReadElem(reg, op.Width, op.RegIdx, op.Index, op.Color)
		if err != nil {
			return err
		}
		b.bindElem(op.Result, elem)

	case OpMoveElem, OpAssignElem:
		elem, err := b.elem(op.Elem)
		if err != nil {
			return err
		}
		reg, err := b.reg(op.Reg)
		if err != nil {
			return err
		}
		var moved *object.ElemUnit
		if op.Kind == OpAssignElem {
			moved, err = b.flow.AssignElem(elem, reg, op.Width, op.RegIdx, op.Index)
		} else {
			moved, err = b.flow.MoveElem(elem, reg, op.Width, op.RegIdx, op.Index)
		}
		if err != nil {
			return err
		}
		b.bindElem(op.Result, moved)

	case OpDataConvert:
		elem, err := b.elem(op.Elem)
		if err != nil {
			return err
		}
		var value any
		if op.Value != nil {
			value = *op.Value
		}
		converted, err := b.flow.DataConvert(elem, op.Width, op.Index, op.Color, value)
		if err != nil {
			return err
		}
		b.bindElem(op.Result, converted)

	case OpFuncCall:
		args := make([]*object.ElemUnit, len(op.Args))
		for i, name := range op.Args {
			arg, err := b.elem(name)
			if err != nil {
				return err
			}
			args[i] = arg
		}
		res, err := b.flow.FuncCall(op.Key, op.Name, args, op.Width, op.Color, builtinFns[op.Fn])
		if err != nil {
			return err
		}
		b.bindElem(op.Result, res)

	case OpConcatVector:
		regs := make([]*object.RegUnit, len(op.Regs))
		for i, name := range op.Regs {
			reg, err := b.reg(name)
			if err != nil {
				return err
			}
			regs[i] = reg
		}
		merged, err := b.flow.ConcatVector(regs, op.Name)
		if err != nil {
			return err
		}
		b.regs[op.Name] = merged

	case OpCounterToPred:
		reg, err := b.reg(op.Reg)
		if err != nil {
			return err
		}
		mask, err := b.flow.CounterToPredicate(reg, op.Name, op.Width, op.Elements)
		if err != nil {
			return err
		}
		b.regs[op.Name] = mask

	case OpMemRead:
		mem, err := b.mem(op.Mem)
		if err != nil {
			return err
		}
		addr, err := b.elem(op.Addr)
		if err != nil {
			return err
		}
		data, err := b.flow.MemRead(mem, addr, op.Width, op.Color)
		if err != nil {
			return err
		}
		b.bindElem(op.Result, data)

	case OpMemWrite:
		mem, err := b.mem(op.Mem)
		if err != nil {
			return err
		}
		addr, err := b.elem(op.Addr)
		if err != nil {
			return err
		}
		data, err := b.elem(op.Data)
		if err != nil {
			return err
		}
		return b.flow.MemWrite(mem, addr, data)

	default:
		return errors.New(errors.ErrCodeInvalidScript, "unknown op kind %q", op.Kind)
	}
	return nil
}

func (b *builder) bindElem(name string, elem *object.ElemUnit) {
	if name != "" {
		b.elems[name] = elem
	}
}
