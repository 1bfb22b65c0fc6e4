// Defines the unified space of protocol states and error codes
// carried in the first byte of every frame.

package protocol

import (
	"errors"
	"strconv"
)

// A Code is either a protocol state or an error code.
type Code uint8

// The states of an exchange, in the order a client traverses them.
const (
	StateInitial Code = iota
	StateKeyRequest
	StateKeyResponse
	StateComRequest
	StateComChallenge
	StateComResponse
	StateFinished
)

// The error codes. They implement error so the role logic can return them
// directly; any other error is reported on the wire as ErrUnknown.
const (
	ErrUnknownID Code = iota + 17
	ErrRejected
	ErrUnknown
)

var (
	// ErrMalformedFrame indicates a frame whose length does not match
	// the field count of its code, or whose code is not defined.
	ErrMalformedFrame = errors.New("[ns] Malformed frame")
)

var codeNames = map[Code]string{
	StateInitial:      "INITIAL",
	StateKeyRequest:   "KEY_REQUEST",
	StateKeyResponse:  "KEY_RESPONSE",
	StateComRequest:   "COM_REQUEST",
	StateComChallenge: "COM_CHALLENGE",
	StateComResponse:  "COM_RESPONSE",
	StateFinished:     "FINISHED",
	ErrUnknownID:      "ERR_UNKNOWN_ID",
	ErrRejected:       "ERR_REJECTED",
	ErrUnknown:        "ERR_UNKNOWN",
}

var errorMessages = map[Code]string{
	ErrUnknownID: "[ns] Unknown identity",
	ErrRejected:  "[ns] Rejected",
	ErrUnknown:   "[ns] Unknown error",
}

// Valid reports whether c is a defined state or error code.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// IsError reports whether c is one of the error codes.
func (c Code) IsError() bool {
	return c >= ErrUnknownID && c <= ErrUnknown
}

// String returns the name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "CODE(" + strconv.Itoa(int(c)) + ")"
}

// Error returns a human readable message for an error code.
// Calling it on a state returns the state's name.
func (c Code) Error() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return c.String()
}

// ToCode maps err to the error code that is sent to the peer.
// A (possibly wrapped) error Code keeps its value, everything else
// becomes ErrUnknown.
func ToCode(err error) Code {
	var c Code
	if errors.As(err, &c) && c.IsError() {
		return c
	}
	return ErrUnknown
}
