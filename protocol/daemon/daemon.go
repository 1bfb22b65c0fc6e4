// This module implements the Needham-Schroeder peer daemon.
// A daemon accepts tickets issued by the key server, challenges the
// sender with a fresh nonce encrypted under the ticket's session key,
// and accepts the session key once the sender proves it can decrypt and
// transform the nonce.
//
// The daemon tracks at most one outstanding challenge per remote
// address. A second COM_REQUEST from the same address replaces the
// first one's challenge.

package daemon

import (
	"crypto/subtle"
	"net"
	"sync"
	"time"

	"github.com/SeppPenner/needham-schroeder/protocol"
)

// A pendingPeer is a challenge sent to a remote address and not yet
// answered.
type pendingPeer struct {
	nonce      protocol.Nonce
	sessionKey protocol.Key
	client     protocol.Identity
	issued     time.Time
}

// A Daemon holds its long-term key, the store that receives accepted
// session keys, and the table of outstanding challenges.
// It is safe for concurrent use.
type Daemon struct {
	key   protocol.Key
	store protocol.KeyStore

	mu    sync.Mutex
	peers map[string]*pendingPeer

	now func() time.Time
}

// New constructs a new Daemon. key is the long-term key the daemon
// shares with the key server; accepted session keys are saved in store
// under the client's identity.
func New(key protocol.Key, store protocol.KeyStore) *Daemon {
	return &Daemon{
		key:   key,
		store: store,
		peers: make(map[string]*pendingPeer),
		now:   time.Now,
	}
}

func addrKey(addr net.Addr) string {
	return addr.Network() + "/" + addr.String()
}

// HandleComRequest opens the ticket forwarded by a client at from and
// returns a tuple of the form (response, error).
// The response is supposed to be sent back to from. The returned
// error is used for logging purposes.
//
// A ticket that cannot be opened with the daemon's key yields
// ErrRejected. Otherwise a fresh nonce is recorded for from, replacing
// any earlier challenge, and returned encrypted under the session key in
// a COM_CHALLENGE frame.
func (d *Daemon) HandleComRequest(from net.Addr, t protocol.Ticket) (*protocol.Frame, error) {
	sessionKey, client, err := protocol.OpenTicket(d.key, t)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrRejected), err
	}
	nonce, err := protocol.NewNonce()
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	sealed, err := protocol.SealNonce(sessionKey, nonce)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}

	d.mu.Lock()
	d.peers[addrKey(from)] = &pendingPeer{
		nonce:      nonce,
		sessionKey: sessionKey,
		client:     client,
		issued:     d.now(),
	}
	d.mu.Unlock()

	return protocol.NewComChallengeFrame(sealed), nil
}

// HandleComResponse checks the answer from sends to its outstanding
// challenge, and returns a tuple of the form (response, error).
//
// The challenge is consumed whatever the outcome, so a rejected answer
// cannot be retried. If there is no outstanding challenge for from, or
// the decrypted answer is not the transform of the challenge nonce,
// HandleComResponse() returns ErrRejected. On success the session key is
// stored under the client's identity and a FINISHED frame is returned;
// a failing store yields ErrUnknown.
func (d *Daemon) HandleComResponse(from net.Addr, sealed protocol.Block) (*protocol.Frame, error) {
	d.mu.Lock()
	p, ok := d.peers[addrKey(from)]
	if ok {
		delete(d.peers, addrKey(from))
	}
	d.mu.Unlock()
	if !ok {
		return protocol.NewErrorFrame(protocol.ErrRejected), protocol.ErrRejected
	}

	got, err := protocol.OpenNonce(p.sessionKey, sealed)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	want := p.nonce.Transform()
	if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
		return protocol.NewErrorFrame(protocol.ErrRejected), protocol.ErrRejected
	}

	if err := d.store.StoreKey(p.client, p.sessionKey); err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	return protocol.NewFinishedFrame(), nil
}

// HandleFrame passes a frame received from from to the appropriate
// operation handler according to its code. Frames other than
// COM_REQUEST and COM_RESPONSE are answered with ErrUnknown.
func (d *Daemon) HandleFrame(from net.Addr, f *protocol.Frame) (*protocol.Frame, error) {
	switch f.Code {
	case protocol.StateComRequest:
		if t, err := f.Ticket(); err == nil {
			return d.HandleComRequest(from, t)
		}
	case protocol.StateComResponse:
		if b, err := f.SealedNonce(); err == nil {
			return d.HandleComResponse(from, b)
		}
	}
	return protocol.NewErrorFrame(protocol.ErrUnknown), protocol.ErrMalformedFrame
}

// Expire drops the challenges issued more than maxAge ago and returns
// how many were dropped.
func (d *Daemon) Expire(maxAge time.Duration) int {
	deadline := d.now().Add(-maxAge)
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for addr, p := range d.peers {
		if p.issued.Before(deadline) {
			delete(d.peers, addr)
			n++
		}
	}
	return n
}

// Pending returns the number of outstanding challenges.
func (d *Daemon) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.peers)
}
