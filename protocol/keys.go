package protocol

// A KeyProvider resolves an identity to its key.
// GetKey returns ErrUnknownID if the identity is absent; any other error
// is reported to peers as ErrUnknown.
// The key server only needs this read-only view of the directory.
type KeyProvider interface {
	GetKey(id Identity) (Key, error)
}

// A KeyStore is a KeyProvider that can also remember keys. Clients and
// daemons use StoreKey to keep the session key negotiated with a peer.
type KeyStore interface {
	KeyProvider
	StoreKey(id Identity, key Key) error
}
