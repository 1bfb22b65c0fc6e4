package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/sha3"
)

const (
	// HashSizeByte is the size of the hash output in bytes.
	HashSizeByte = 32
	// HashID identifies the used hash as a string.
	HashID = "SHAKE128"
	// FingerprintSize is the number of digest bytes shown by Fingerprint.
	FingerprintSize = 8
)

// argon2id parameters used by DeriveKey.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// Digest hashes all passed byte slices.
// The passed slices won't be mutated.
func Digest(ms ...[]byte) []byte {
	h := sha3.NewShake128()
	for _, m := range ms {
		h.Write(m)
	}
	ret := make([]byte, HashSizeByte)
	h.Read(ret)
	return ret
}

// MakeRand returns a random slice of n bytes, with n at most
// HashSizeByte.
// It returns an error if there was a problem while generating
// the random slice.
// It is different from the 'standard' random byte generation as it
// hashes its output before returning it; by hashing the system's
// PRNG output before it is send over the wire, we aim to make the
// random output less predictable (even if the system's PRNG isn't
// as unpredictable as desired).
// See https://trac.torproject.org/projects/tor/ticket/17694
func MakeRand(n int) ([]byte, error) {
	if n <= 0 || n > HashSizeByte {
		return nil, ErrBadRandSize
	}
	r := make([]byte, HashSizeByte)
	if _, err := rand.Read(r); err != nil {
		return nil, err
	}
	// Do not directly reveal bytes from rand.Read on the wire
	return Digest(r)[:n], nil
}

// DeriveKey stretches passphrase into a KeySize-byte key with argon2id.
// The salt binds the key to its owner; callers pass the identity name so
// that the key server and the principal derive the same key independently.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, KeySize)
}

// Fingerprint returns a short hex digest of key, safe to print in logs.
func Fingerprint(key []byte) string {
	return hex.EncodeToString(Digest(key)[:FingerprintSize])
}
