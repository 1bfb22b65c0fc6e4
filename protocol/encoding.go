// Defines the binary encoding of frames: one code byte followed by
// the frame's fields, 16 bytes each.

package protocol

// MaxFrameSize is the size of the largest frame (KEY_RESPONSE).
const MaxFrameSize = 1 + GrantBlocks*BlockSize

// Marshal returns the wire encoding of f.
// It returns ErrMalformedFrame if f's field count does not match its code.
func (f *Frame) Marshal() ([]byte, error) {
	n, ok := FieldCount(f.Code)
	if !ok || len(f.Fields) != n {
		return nil, ErrMalformedFrame
	}
	buf := make([]byte, 1, 1+n*BlockSize)
	buf[0] = byte(f.Code)
	for i := range f.Fields {
		buf = append(buf, f.Fields[i][:]...)
	}
	return buf, nil
}

// Unmarshal parses a frame. It returns ErrMalformedFrame if msg is empty,
// carries an unknown code, or its length does not match the field count
// of its code.
func Unmarshal(msg []byte) (*Frame, error) {
	if len(msg) == 0 {
		return nil, ErrMalformedFrame
	}
	code := Code(msg[0])
	n, ok := FieldCount(code)
	if !ok || len(msg) != 1+n*BlockSize {
		return nil, ErrMalformedFrame
	}
	f := &Frame{Code: code}
	if n > 0 {
		f.Fields = make([]Block, n)
		for i := range f.Fields {
			copy(f.Fields[i][:], msg[1+i*BlockSize:])
		}
	}
	return f, nil
}
