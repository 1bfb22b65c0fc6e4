// Package crypto contains the cryptographic routines used by the
// Needham-Schroeder roles, to:
// - hash arbitrary data (`Digest`) using sha3 (shake128)
// - generate random nonces and session keys (`MakeRand`)
// - encrypt and decrypt fixed-size protocol fields with a 128-bit
// block cipher (`SealBlocks`, `OpenBlocks`)
// - derive a long-term key from a passphrase (`DeriveKey`)
// - print a short fingerprint of a key for logs (`Fingerprint`).
package crypto
