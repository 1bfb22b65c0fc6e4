package protocol

import (
	"bytes"
	"errors"
)

// All protocol fields share the block size of the underlying cipher.
const (
	BlockSize    = 16
	KeySize      = BlockSize
	IdentitySize = BlockSize
	NonceSize    = BlockSize
)

var (
	// ErrBadIdentity is returned by NewIdentity for names that are not
	// 1 to IdentitySize bytes of printable ASCII.
	ErrBadIdentity = errors.New("[ns] Identity must be 1 to 16 printable ASCII characters")
	// ErrBadKeyLength is returned by NewKey for input that is not
	// KeySize bytes long.
	ErrBadKeyLength = errors.New("[ns] Key must be 16 bytes")
)

// A Block is one 16-byte protocol field, encrypted or not.
type Block [BlockSize]byte

// An Identity is a NUL-padded principal name.
type Identity [IdentitySize]byte

// A Key is a long-term key or a session key.
type Key [KeySize]byte

// A Nonce is a single-use random challenge.
type Nonce [NonceSize]byte

// NewIdentity pads name to an Identity. It accepts exactly the names
// whose padded form is Valid and reads back as name.
func NewIdentity(name string) (Identity, error) {
	var id Identity
	if len(name) > IdentitySize {
		return Identity{}, ErrBadIdentity
	}
	copy(id[:], name)
	if !id.Valid() || id.String() != name {
		return Identity{}, ErrBadIdentity
	}
	return id, nil
}

// MustIdentity is like NewIdentity but panics on a bad name.
// It is meant for constants and tests.
func MustIdentity(name string) Identity {
	id, err := NewIdentity(name)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the name without its padding.
func (id Identity) String() string {
	if i := bytes.IndexByte(id[:], 0); i >= 0 {
		return string(id[:i])
	}
	return string(id[:])
}

// Valid reports whether id is a well-formed identity: a non-empty run
// of printable ASCII followed only by NUL padding.
// A ticket opened with the wrong key fails this check with overwhelming
// probability.
func (id Identity) Valid() bool {
	n := bytes.IndexByte(id[:], 0)
	if n < 0 {
		n = IdentitySize
	}
	if n == 0 {
		return false
	}
	for _, c := range id[:n] {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	for _, c := range id[n:] {
		if c != 0 {
			return false
		}
	}
	return true
}

// NewKey copies b into a Key.
func NewKey(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, ErrBadKeyLength
	}
	copy(k[:], b)
	return k, nil
}

// IsZero reports whether k is the all-zero key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// Transform is the freshness transform a client applies to a challenge
// nonce: the nonce read as a big-endian 128-bit unsigned integer,
// decremented by one modulo 2^128.
func (n Nonce) Transform() Nonce {
	for i := NonceSize - 1; i >= 0; i-- {
		n[i]--
		if n[i] != 0xff {
			break
		}
	}
	return n
}

// Untransform is the inverse of Transform.
func (n Nonce) Untransform() Nonce {
	for i := NonceSize - 1; i >= 0; i-- {
		n[i]++
		if n[i] != 0 {
			break
		}
	}
	return n
}
