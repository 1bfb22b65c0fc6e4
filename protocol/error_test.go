package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeValues(t *testing.T) {
	if StateInitial != 0 || StateFinished != 6 {
		t.Fatal("Unexpected state values")
	}
	if ErrUnknownID != 17 || ErrRejected != 18 || ErrUnknown != 19 {
		t.Fatal("Unexpected error values")
	}
}

func TestCodeClassification(t *testing.T) {
	for c := StateInitial; c <= StateFinished; c++ {
		if c.IsError() || !c.Valid() {
			t.Error("Unexpected classification for", c.String())
		}
	}
	for _, c := range []Code{ErrUnknownID, ErrRejected, ErrUnknown} {
		if !c.IsError() || !c.Valid() {
			t.Error("Unexpected classification for", c.String())
		}
	}
	if Code(7).Valid() || Code(7).String() != "CODE(7)" {
		t.Error("Unexpected handling of an undefined code")
	}
}

func TestToCode(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{ErrRejected, ErrRejected},
		{fmt.Errorf("lookup: %w", ErrUnknownID), ErrUnknownID},
		{errors.New("disk on fire"), ErrUnknown},
		{ErrMalformedFrame, ErrUnknown},
		{StateFinished, ErrUnknown},
	}
	for _, tt := range tests {
		if got := ToCode(tt.err); got != tt.want {
			t.Errorf("Expect %v for %q, got %v", tt.want.String(), tt.err, got.String())
		}
	}
}
