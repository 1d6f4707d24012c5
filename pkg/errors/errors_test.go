package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRead, "bad character %q", 'N')
	if err.Code != ErrCodeInvalidRead {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidRead)
	}
	want := `INVALID_READ: bad character 'N'`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "open %s", "graph.gfa")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause lost from the chain")
	}
	if got := err.Error(); got != "FILE_NOT_FOUND: open graph.gfa: no such file" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("context: %w", New(ErrCodeStrandConflict, "edge disagrees"))
	if !Is(err, ErrCodeStrandConflict) {
		t.Error("Is() missed a wrapped coded error")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is() matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is() matched a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidConfig, "x")); got != ErrCodeInvalidConfig {
		t.Errorf("GetCode() = %s, want %s", got, ErrCodeInvalidConfig)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidGraph, "no segments")); got != "no segments" {
		t.Errorf("UserMessage() = %q, want %q", got, "no segments")
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}
