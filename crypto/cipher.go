package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

const (
	// BlockSize is the size of every field the protocol encrypts.
	BlockSize = aes.BlockSize
	// KeySize is the size of the block cipher key (AES-128).
	KeySize = 16
)

var (
	// ErrBadKeySize is returned when a cipher key is not KeySize bytes.
	ErrBadKeySize = errors.New("[ns] Cipher key must be 16 bytes")
	// ErrBadBlockLength is returned when the input of SealBlocks or
	// OpenBlocks is not a whole number of blocks.
	ErrBadBlockLength = errors.New("[ns] Input is not a multiple of the block size")
	// ErrBadRandSize is returned by MakeRand for an unsupported length.
	ErrBadRandSize = errors.New("[ns] Bad random length")
)

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeySize
	}
	return aes.NewCipher(key)
}

// SealBlocks encrypts every BlockSize-byte field of plaintext
// independently under key and returns the concatenated ciphertext.
// Fields are never chained: each one can be opened on its own, which is
// what lets a ticket be forwarded as an opaque pair of blocks.
func SealBlocks(key, plaintext []byte) ([]byte, error) {
	return apply(key, plaintext, func(b cipher.Block, dst, src []byte) {
		b.Encrypt(dst, src)
	})
}

// OpenBlocks is the inverse of SealBlocks.
// A wrong key cannot be detected here; it yields unrelated plaintext that
// the caller has to validate.
func OpenBlocks(key, ciphertext []byte) ([]byte, error) {
	return apply(key, ciphertext, func(b cipher.Block, dst, src []byte) {
		b.Decrypt(dst, src)
	})
}

func apply(key, in []byte, f func(b cipher.Block, dst, src []byte)) ([]byte, error) {
	if len(in)%BlockSize != 0 {
		return nil, ErrBadBlockLength
	}
	b, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	for i := 0; i < len(in); i += BlockSize {
		f(b, out[i:i+BlockSize], in[i:i+BlockSize])
	}
	return out, nil
}
