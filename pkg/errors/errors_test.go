package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad width: %d", -1)
	want := "INVALID_INPUT: bad width: -1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInternal, cause, "render svg")
	want := "INTERNAL_ERROR: render svg: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeDependencyCycle, "cycle between items")
	if !Is(err, ErrCodeDependencyCycle) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeInvalidInput) {
		t.Error("Is() = true, want false for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodeDependencyCycle) {
		t.Error("Is() = true, want false for plain error")
	}
}

func TestIs_Wrapped(t *testing.T) {
	inner := New(ErrCodeObjectNotFound, "no register %q", "Zn")
	outer := fmt.Errorf("loading scene: %w", inner)
	if !Is(outer, ErrCodeObjectNotFound) {
		t.Error("Is() should unwrap through fmt.Errorf chains")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidAlign, "x")); got != ErrCodeInvalidAlign {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeInvalidAlign)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidScript, "unknown op kind %q", "frobnicate")
	want := `unknown op kind "frobnicate"`
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}
