// Package script loads declarative scene scripts.
//
// A script is a TOML file describing an instruction flow as sections of
// operations. Operations bind their produced registers and elements to
// symbolic names, which later operations reference, so a whole diagram can
// be driven without writing Go:
//
//	title = "ADD (vectors)"
//
//	[[section]]
//	subtitle = "compute"
//
//	[[section.op]]
//	kind = "decl_vector"
//	name = "Za"
//	width = 128
//	elements = 4
//	values = [1, 0, 0, 0]
//
//	[[section.op]]
//	kind = "read_elem"
//	reg = "Za"
//	width = 32
//	result = "ea"
package script

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/isaflow/isaflow/pkg/errors"
)

// Op kinds accepted in scene scripts.
const (
	OpDeclScalar      = "decl_scalar"
	OpDeclVector      = "decl_vector"
	OpDecl2DVector    = "decl_2d_vector"
	OpDeclVectorGroup = "decl_vector_group"
	OpDeclMemory      = "decl_memory"
	OpReadElem        = "read_elem"
	OpMoveElem        = "move_elem"
	OpAssignElem      = "assign_elem"
	OpDataConvert     = "data_convert"
	OpFuncCall        = "func_call"
	OpConcatVector    = "concat_vector"
	OpCounterToPred   = "counter_to_predicate"
	OpMemRead         = "mem_read"
	OpMemWrite        = "mem_write"
)

// Op is one scripted operation. Which fields apply depends on Kind; unused
// fields are ignored.
type Op struct {
	Kind string `toml:"kind"`

	// Symbols: Result binds the produced object, the reference fields name
	// previously bound ones.
	Result string   `toml:"result"`
	Reg    string   `toml:"reg"`
	Elem   string   `toml:"elem"`
	Args   []string `toml:"args"`
	Mem    string   `toml:"mem"`
	Addr   string   `toml:"addr"`
	Data   string   `toml:"data"`
	Regs   []string `toml:"regs"`

	// Declarations.
	Name     string   `toml:"name"`
	Names    []string `toml:"names"`
	Width    int      `toml:"width"`
	Elements int      `toml:"elements"`
	RegCount int      `toml:"reg_count"`
	Values   []int64  `toml:"values"`

	// Memory declarations.
	AddrWidth int  `toml:"addr_width"`
	DataWidth int  `toml:"data_width"`
	Parallel  bool `toml:"parallel"`

	// Element operations.
	RegIdx int    `toml:"reg_idx"`
	Index  int    `toml:"index"`
	Color  string `toml:"color"`
	Value  *int64 `toml:"value"`

	// Function calls.
	Key string `toml:"key"`
	Fn  string `toml:"fn"`
}

// Section is one scene section: its operations plus the boundary behavior
// applied at its end.
type Section struct {
	Subtitle      string   `toml:"subtitle"`
	Wait          float64  `toml:"wait"`
	FadeOut       *bool    `toml:"fade_out"`
	Keep          []string `toml:"keep"`
	KeepPositions *bool    `toml:"keep_positions"`
	Ops           []Op     `toml:"op"`
}

// FadesOut reports the section's fade-out setting; the default is true.
func (s *Section) FadesOut() bool {
	return s.FadeOut == nil || *s.FadeOut
}

// KeepsPositions reports whether kept objects stay pinned to their cells;
// the default is true.
func (s *Section) KeepsPositions() bool {
	return s.KeepPositions == nil || *s.KeepPositions
}

// Script is a parsed scene script.
type Script struct {
	Title    string    `toml:"title"`
	Sections []Section `toml:"section"`
}

// Parse decodes and validates a scene script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse scene script")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scene script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene script %s", path)
	}
	return Parse(data)
}

// OpCount returns the total number of operations across all sections.
func (s *Script) OpCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Ops)
	}
	return n
}

// Validate checks section structure, operation kinds and symbol references
// without building anything.
func (s *Script) Validate() error {
	if len(s.Sections) == 0 {
		return errors.New(errors.ErrCodeInvalidScript, "script has no sections")
	}

	symbols := make(map[string]bool)
	bind := func(name string) error {
		if name == "" {
			return nil
		}
		if symbols[name] {
			return errors.New(errors.ErrCodeInvalidScript, "symbol %q bound twice", name)
		}
		symbols[name] = true
		return nil
	}
	need := func(name, field string, sec, op int) error {
		if name == "" {
			return errors.New(errors.ErrCodeInvalidScript,
				"section %d op %d: missing %s", sec, op, field)
		}
		if !symbols[name] {
			return errors.New(errors.ErrCodeInvalidScript,
				"section %d op %d: unknown symbol %q", sec, op, name)
		}
		return nil
	}

	for si, sec := range s.Sections {
		for oi, op := range sec.Ops {
			var err error
			switch op.Kind {
			case OpDeclScalar, OpDeclVector, OpDecl2DVector:
				if op.Name == "" {
					err = errors.New(errors.ErrCodeInvalidScript,
						"section %d op %d: declaration needs a name", si, oi)
				} else {
					err = bind(op.Name)
				}
			case OpDeclVectorGroup:
				for _, name := range op.Names {
					if err = bind(name); err != nil {
						break
					}
				}
			case OpDeclMemory:
				err = bind(op.Name)
			case OpReadElem:
				if err = need(op.Reg, "reg", si, oi); err == nil {
					err = bind(op.Result)
				}
			case OpMoveElem, OpAssignElem:
				if err = need(op.Elem, "elem", si, oi); err == nil {
					if err = need(op.Reg, "reg", si, oi); err == nil {
						err = bind(op.Result)
					}
				}
			case OpDataConvert:
				if err = need(op.Elem, "elem", si, oi); err == nil {
					err = bind(op.Result)
				}
			case OpFuncCall:
				for _, arg := range op.Args {
					if err = need(arg, "arg", si, oi); err != nil {
						break
					}
				}
				if err == nil {
					err = bind(op.Result)
				}
			case OpConcatVector:
				for _, reg := range op.Regs {
					if err = need(reg, "reg", si, oi); err != nil {
						break
					}
				}
				if err == nil {
					err = bind(op.Name)
				}
			case OpCounterToPred:
				if err = need(op.Reg, "reg", si, oi); err == nil {
					err = bind(op.Name)
				}
			case OpMemRead:
				if err = need(op.Mem, "mem", si, oi); err == nil {
					if err = need(op.Addr, "addr", si, oi); err == nil {
						err = bind(op.Result)
					}
				}
			case OpMemWrite:
				if err = need(op.Mem, "mem", si, oi); err == nil {
					if err = need(op.Addr, "addr", si, oi); err == nil {
						err = need(op.Data, "data", si, oi)
					}
				}
			default:
				err = errors.New(errors.ErrCodeInvalidScript,
					"section %d op %d: unknown op kind %q", si, oi, op.Kind)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
