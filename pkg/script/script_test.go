package script

import (
	"strings"
	"testing"

	"github.com/isaflow/isaflow/pkg/errors"
)

const addScript = `
title = "ADD (vectors)"

[[section]]
subtitle = "compute"
wait = 1

[[section.op]]
kind = "decl_vector"
name = "Za"
width = 128
elements = 4
values = [1]

[[section.op]]
kind = "decl_vector"
name = "Zb"
width = 128
elements = 4
values = [2]

[[section.op]]
kind = "decl_vector"
name = "Zd"
width = 128
elements = 4

[[section.op]]
kind = "read_elem"
reg = "Za"
width = 32
color = "op"
result = "ea"

[[section.op]]
kind = "read_elem"
reg = "Zb"
width = 32
color = "op"
result = "eb"

[[section.op]]
kind = "func_call"
name = "add"
args = ["ea", "eb"]
width = 32
fn = "add"
color = "res"
result = "sum"

[[section.op]]
kind = "assign_elem"
elem = "sum"
reg = "Zd"
width = 32
`

func TestParse_AddScript(t *testing.T) {
	s, err := Parse([]byte(addScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Title != "ADD (vectors)" {
		t.Errorf("title = %q", s.Title)
	}
	if len(s.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(s.Sections))
	}
	if s.OpCount() != 7 {
		t.Errorf("OpCount() = %d, want 7", s.OpCount())
	}
	if !s.Sections[0].FadesOut() {
		t.Error("fade_out must default to true")
	}
}

func TestBuild_AddScript(t *testing.T) {
	s, err := Parse([]byte(addScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	flow, err := s.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	timeline, err := flow.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	if timeline.Title != "ADD (vectors)" {
		t.Errorf("timeline title = %q", timeline.Title)
	}
	// subtitle+decls / reads / call / assign / fade-out.
	if timeline.StepCount() != 5 {
		t.Fatalf("StepCount() = %d, want 5", timeline.StepCount())
	}
}

func TestBuild_BuiltinFns(t *testing.T) {
	tests := []struct {
		fn   string
		args []any
		want any
	}{
		{"add", []any{int64(1), int64(2)}, int64(3)},
		{"sub", []any{int64(5), int64(2)}, int64(3)},
		{"mul", []any{int64(3), int64(4)}, int64(12)},
		{"neg", []any{int64(7)}, int64(-7)},
		{"add", []any{int64(1), nil}, nil},
		{"neg", []any{"x"}, nil},
	}
	for _, tt := range tests {
		got := builtinFns[tt.fn](tt.args)[0]
		if got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.fn, tt.args, got, tt.want)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"no sections", `title = "x"`},
		{"unknown kind", `
[[section]]
[[section.op]]
kind = "frobnicate"
`},
		{"unknown symbol", `
[[section]]
[[section.op]]
kind = "read_elem"
reg = "Zx"
result = "e"
`},
		{"duplicate symbol", `
[[section]]
[[section.op]]
kind = "decl_scalar"
name = "Xa"
width = 64
[[section.op]]
kind = "decl_scalar"
name = "Xa"
width = 64
`},
		{"predicate of unknown counter", `
[[section]]
[[section.op]]
kind = "counter_to_predicate"
reg = "cnt"
name = "Pg"
width = 32
`},
		{"missing reference", `
[[section]]
[[section.op]]
kind = "mem_write"
mem = ""
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.script))
			if err == nil {
				t.Fatal("Parse() succeeded, want validation error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidScript) {
				t.Errorf("error code = %v, want INVALID_SCRIPT", errors.GetCode(err))
			}
		})
	}
}

func TestParse_BadTOML(t *testing.T) {
	_, err := Parse([]byte("title = "))
	if err == nil {
		t.Fatal("Parse() succeeded on malformed TOML")
	}
	if !strings.Contains(err.Error(), "parse scene script") {
		t.Errorf("error = %v, want parse context", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.toml")
	if err == nil {
		t.Fatal("Load() succeeded on a missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestBuild_CounterToPredicateScript(t *testing.T) {
	const predScript = `
[[section]]
subtitle = "whilelo"

[[section.op]]
kind = "decl_scalar"
name = "cnt"
width = 64
values = [3]

[[section.op]]
kind = "counter_to_predicate"
reg = "cnt"
name = "Pg"
width = 32
elements = 4

[[section.op]]
kind = "read_elem"
reg = "Pg"
result = "p0"
`
	s, err := Parse([]byte(predScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	flow, err := s.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	timeline, err := flow.Timeline()
	if err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
	// subtitle+decl / conversion / read / fade-out.
	if timeline.StepCount() != 4 {
		t.Fatalf("StepCount() = %d, want 4", timeline.StepCount())
	}

	found := false
	for _, step := range timeline.Steps {
		for _, a := range step.Animations {
			if a.Name() == "counter_to_predicate" {
				found = true
			}
		}
	}
	if !found {
		t.Error("timeline is missing the counter_to_predicate animation")
	}
}

func TestBuild_MemoryScript(t *testing.T) {
	const memScript = `
[[section]]
subtitle = "copy"

[[section.op]]
kind = "decl_scalar"
name = "Xa"
width = 64
values = [256]

[[section.op]]
kind = "decl_memory"
name = "mem"

[[section.op]]
kind = "read_elem"
reg = "Xa"
width = 64
result = "addr"

[[section.op]]
kind = "mem_read"
mem = "mem"
addr = "addr"
width = 128
result = "data"

[[section.op]]
kind = "read_elem"
reg = "Xa"
width = 64
result = "addr2"

[[section.op]]
kind = "mem_write"
mem = "mem"
addr = "addr2"
data = "data"
`
	s, err := Parse([]byte(memScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	flow, err := s.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, err := flow.Timeline(); err != nil {
		t.Fatalf("Timeline() error: %v", err)
	}
}
