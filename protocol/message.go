// Defines the frame layout of the Needham-Schroeder protocol
// and constructors for the frames each role sends.

package protocol

// A Frame is a code followed by a fixed number of 16-byte fields.
// The codec never looks inside the fields; whether they are ciphertext
// is up to the role that reads them.
type Frame struct {
	Code   Code
	Fields []Block
}

// fieldCounts lists the number of fields that follow each code.
// Codes not listed here (INITIAL) are never put on the wire.
var fieldCounts = map[Code]int{
	StateKeyRequest:   3, // client identity, peer identity, client nonce
	StateKeyResponse:  GrantBlocks,
	StateComRequest:   TicketBlocks,
	StateComChallenge: 1,
	StateComResponse:  1,
	StateFinished:     0,
	ErrUnknownID:      0,
	ErrRejected:       0,
	ErrUnknown:        0,
}

// FieldCount returns the number of fields that follow code c on the
// wire, and false if c is not a wire code.
func FieldCount(c Code) (int, bool) {
	n, ok := fieldCounts[c]
	return n, ok
}

// A KeyRequest is the plaintext request a client sends to the key server.
type KeyRequest struct {
	From  Identity
	To    Identity
	Nonce Nonce
}

// NewKeyRequestFrame builds a KEY_REQUEST frame.
func NewKeyRequestFrame(req *KeyRequest) *Frame {
	return &Frame{
		Code:   StateKeyRequest,
		Fields: []Block{Block(req.From), Block(req.To), Block(req.Nonce)},
	}
}

// KeyRequest returns the request carried by a KEY_REQUEST frame.
func (f *Frame) KeyRequest() (*KeyRequest, error) {
	if err := f.expect(StateKeyRequest); err != nil {
		return nil, err
	}
	return &KeyRequest{
		From:  Identity(f.Fields[0]),
		To:    Identity(f.Fields[1]),
		Nonce: Nonce(f.Fields[2]),
	}, nil
}

// NewKeyResponseFrame builds a KEY_RESPONSE frame from a sealed grant.
func NewKeyResponseFrame(sealed SealedGrant) *Frame {
	return &Frame{Code: StateKeyResponse, Fields: sealed[:]}
}

// SealedGrant returns the encrypted grant of a KEY_RESPONSE frame.
func (f *Frame) SealedGrant() (SealedGrant, error) {
	var g SealedGrant
	if err := f.expect(StateKeyResponse); err != nil {
		return g, err
	}
	copy(g[:], f.Fields)
	return g, nil
}

// NewComRequestFrame builds a COM_REQUEST frame forwarding t.
func NewComRequestFrame(t Ticket) *Frame {
	return &Frame{Code: StateComRequest, Fields: t[:]}
}

// Ticket returns the ticket of a COM_REQUEST frame.
func (f *Frame) Ticket() (Ticket, error) {
	var t Ticket
	if err := f.expect(StateComRequest); err != nil {
		return t, err
	}
	copy(t[:], f.Fields)
	return t, nil
}

// NewComChallengeFrame builds a COM_CHALLENGE frame.
func NewComChallengeFrame(sealedNonce Block) *Frame {
	return &Frame{Code: StateComChallenge, Fields: []Block{sealedNonce}}
}

// NewComResponseFrame builds a COM_RESPONSE frame.
func NewComResponseFrame(sealedNonce Block) *Frame {
	return &Frame{Code: StateComResponse, Fields: []Block{sealedNonce}}
}

// SealedNonce returns the single encrypted nonce of a COM_CHALLENGE or
// COM_RESPONSE frame.
func (f *Frame) SealedNonce() (Block, error) {
	if f.Code != StateComChallenge && f.Code != StateComResponse {
		return Block{}, ErrMalformedFrame
	}
	if err := f.expect(f.Code); err != nil {
		return Block{}, err
	}
	return f.Fields[0], nil
}

// NewFinishedFrame builds the FINISHED frame a daemon sends once the
// challenge was answered correctly.
func NewFinishedFrame() *Frame {
	return &Frame{Code: StateFinished}
}

// NewErrorFrame builds an error frame carrying e.
// A code that is not an error is reported as ErrUnknown.
func NewErrorFrame(e Code) *Frame {
	if !e.IsError() {
		e = ErrUnknown
	}
	return &Frame{Code: e}
}

func (f *Frame) expect(c Code) error {
	n, _ := FieldCount(c)
	if f.Code != c || len(f.Fields) != n {
		return ErrMalformedFrame
	}
	return nil
}
