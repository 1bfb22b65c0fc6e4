// Implements the encrypted payloads of the protocol.
// Every field is encrypted on its own with the 128-bit block cipher
// (see crypto.SealBlocks), so a payload is always a whole number of blocks.

package protocol

import (
	"github.com/SeppPenner/needham-schroeder/crypto"
)

const (
	// TicketBlocks is the size of a ticket: session key, client identity.
	TicketBlocks = 2
	// GrantBlocks is the size of a grant: client nonce, peer identity,
	// session key and the two ticket blocks.
	GrantBlocks = 3 + TicketBlocks
)

// A Ticket is the session key and the client's identity encrypted under
// the daemon's long-term key. The client forwards it without opening it.
type Ticket [TicketBlocks]Block

// A SealedGrant is a Grant encrypted under the client's long-term key.
type SealedGrant [GrantBlocks]Block

// A Grant is what the key server tells a client: the nonce the client
// sent, the peer the key is for, the session key, and the ticket for
// the peer.
type Grant struct {
	Nonce      Nonce
	Peer       Identity
	SessionKey Key
	Ticket     Ticket
}

// SealTicket builds the ticket for the daemon owning daemonKey.
func SealTicket(daemonKey, sessionKey Key, client Identity) (Ticket, error) {
	var t Ticket
	ct, err := crypto.SealBlocks(daemonKey[:], concat(Block(sessionKey), Block(client)))
	if err != nil {
		return t, err
	}
	split(t[:], ct)
	return t, nil
}

// OpenTicket recovers the session key and the client identity from t.
// A ticket that was not sealed under daemonKey, or whose content is not
// well formed, yields ErrRejected; the two cases are indistinguishable
// by design of the cipher.
func OpenTicket(daemonKey Key, t Ticket) (Key, Identity, error) {
	pt, err := crypto.OpenBlocks(daemonKey[:], concat(t[:]...))
	if err != nil {
		return Key{}, Identity{}, ErrRejected
	}
	var (
		sessionKey Key
		client     Identity
	)
	copy(sessionKey[:], pt[:KeySize])
	copy(client[:], pt[KeySize:])
	if !client.Valid() || sessionKey.IsZero() {
		return Key{}, Identity{}, ErrRejected
	}
	return sessionKey, client, nil
}

// SealGrant encrypts g under the client's long-term key.
func SealGrant(clientKey Key, g *Grant) (SealedGrant, error) {
	var sg SealedGrant
	ct, err := crypto.SealBlocks(clientKey[:], concat(
		Block(g.Nonce), Block(g.Peer), Block(g.SessionKey),
		g.Ticket[0], g.Ticket[1]))
	if err != nil {
		return sg, err
	}
	split(sg[:], ct)
	return sg, nil
}

// OpenGrant decrypts a grant with the client's long-term key.
// The ticket inside stays encrypted under the daemon's key.
func OpenGrant(clientKey Key, sg SealedGrant) (*Grant, error) {
	pt, err := crypto.OpenBlocks(clientKey[:], concat(sg[:]...))
	if err != nil {
		return nil, err
	}
	var blocks [GrantBlocks]Block
	split(blocks[:], pt)
	return &Grant{
		Nonce:      Nonce(blocks[0]),
		Peer:       Identity(blocks[1]),
		SessionKey: Key(blocks[2]),
		Ticket:     Ticket{blocks[3], blocks[4]},
	}, nil
}

// SealNonce encrypts a challenge or response nonce under the session key.
func SealNonce(sessionKey Key, n Nonce) (Block, error) {
	var b Block
	ct, err := crypto.SealBlocks(sessionKey[:], n[:])
	if err != nil {
		return b, err
	}
	copy(b[:], ct)
	return b, nil
}

// OpenNonce decrypts a nonce sealed with SealNonce.
func OpenNonce(sessionKey Key, b Block) (Nonce, error) {
	var n Nonce
	pt, err := crypto.OpenBlocks(sessionKey[:], b[:])
	if err != nil {
		return n, err
	}
	copy(n[:], pt)
	return n, nil
}

// NewNonce returns a fresh random nonce.
func NewNonce() (Nonce, error) {
	var n Nonce
	r, err := crypto.MakeRand(NonceSize)
	if err != nil {
		return n, err
	}
	copy(n[:], r)
	return n, nil
}

// NewSessionKey returns a fresh random session key.
func NewSessionKey() (Key, error) {
	var k Key
	r, err := crypto.MakeRand(KeySize)
	if err != nil {
		return k, err
	}
	copy(k[:], r)
	return k, nil
}

func concat(blocks ...Block) []byte {
	buf := make([]byte, 0, len(blocks)*BlockSize)
	for i := range blocks {
		buf = append(buf, blocks[i][:]...)
	}
	return buf
}

func split(dst []Block, buf []byte) {
	for i := range dst {
		copy(dst[i][:], buf[i*BlockSize:])
	}
}
