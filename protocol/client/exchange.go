// Implements the client side of one Needham-Schroeder exchange as a
// network-free state machine. Each Handle method consumes the frame the
// client received and returns the frame to send next.

package client

import (
	"crypto/subtle"

	"github.com/SeppPenner/needham-schroeder/protocol"
)

// An Exchange stores the state of one client run: the current protocol
// state, the client's long-term key, the nonce it sent to the key server,
// and, once the grant is opened, the session key and the ticket.
//
// An Exchange must not be reused; a failed exchange has to be restarted
// from StateInitial with NewExchange.
type Exchange struct {
	self, peer protocol.Identity
	clientKey  protocol.Key

	state      protocol.Code
	nonce      protocol.Nonce
	sessionKey protocol.Key
	ticket     protocol.Ticket
}

// NewExchange creates an Exchange in StateInitial for self talking to
// peer, using self's long-term key clientKey.
func NewExchange(self, peer protocol.Identity, clientKey protocol.Key) *Exchange {
	return &Exchange{
		self:      self,
		peer:      peer,
		clientKey: clientKey,
		state:     protocol.StateInitial,
	}
}

// State returns the current state, or the error code the exchange
// terminated with.
func (e *Exchange) State() protocol.Code {
	return e.state
}

// SessionKey returns the negotiated session key. It is only meaningful
// once the exchange reached StateFinished.
func (e *Exchange) SessionKey() protocol.Key {
	return e.sessionKey
}

// fail moves the exchange into the error state matching err.
func (e *Exchange) fail(err error) error {
	e.state = protocol.ToCode(err)
	return err
}

// KeyRequest draws the client nonce and returns the KEY_REQUEST frame
// for the key server.
func (e *Exchange) KeyRequest() (*protocol.Frame, error) {
	if e.state != protocol.StateInitial {
		return nil, e.fail(protocol.ErrUnknown)
	}
	nonce, err := protocol.NewNonce()
	if err != nil {
		return nil, e.fail(err)
	}
	e.nonce = nonce
	e.state = protocol.StateKeyRequest
	return protocol.NewKeyRequestFrame(&protocol.KeyRequest{
		From:  e.self,
		To:    e.peer,
		Nonce: nonce,
	}), nil
}

// HandleKeyResponse opens the key server's grant and returns the
// COM_REQUEST frame forwarding the ticket to the peer.
//
// An error frame from the server terminates the exchange with the
// server's code. A grant that does not echo the client nonce, or is
// issued for another peer, yields ErrRejected: it belongs to another
// exchange or was not produced under the client's key.
func (e *Exchange) HandleKeyResponse(f *protocol.Frame) (*protocol.Frame, error) {
	if e.state != protocol.StateKeyRequest {
		return nil, e.fail(protocol.ErrUnknown)
	}
	if f.Code.IsError() {
		return nil, e.fail(f.Code)
	}
	sealed, err := f.SealedGrant()
	if err != nil {
		return nil, e.fail(err)
	}
	e.state = protocol.StateKeyResponse

	grant, err := protocol.OpenGrant(e.clientKey, sealed)
	if err != nil {
		return nil, e.fail(err)
	}
	if subtle.ConstantTimeCompare(grant.Nonce[:], e.nonce[:]) != 1 ||
		grant.Peer != e.peer {
		return nil, e.fail(protocol.ErrRejected)
	}
	e.sessionKey = grant.SessionKey
	e.ticket = grant.Ticket

	e.state = protocol.StateComRequest
	return protocol.NewComRequestFrame(e.ticket), nil
}

// HandleChallenge decrypts the peer's challenge and returns the
// COM_RESPONSE frame carrying the transformed nonce, encrypted under the
// session key.
func (e *Exchange) HandleChallenge(f *protocol.Frame) (*protocol.Frame, error) {
	if e.state != protocol.StateComRequest {
		return nil, e.fail(protocol.ErrUnknown)
	}
	if f.Code.IsError() {
		return nil, e.fail(f.Code)
	}
	if f.Code != protocol.StateComChallenge {
		return nil, e.fail(protocol.ErrMalformedFrame)
	}
	sealed, err := f.SealedNonce()
	if err != nil {
		return nil, e.fail(err)
	}
	e.state = protocol.StateComChallenge

	nonce, err := protocol.OpenNonce(e.sessionKey, sealed)
	if err != nil {
		return nil, e.fail(err)
	}
	answer, err := protocol.SealNonce(e.sessionKey, nonce.Transform())
	if err != nil {
		return nil, e.fail(err)
	}
	e.state = protocol.StateComResponse
	return protocol.NewComResponseFrame(answer), nil
}

// HandleFinish reads the peer's verdict on the answer: FINISHED
// completes the exchange, an error frame terminates it with the peer's
// code.
func (e *Exchange) HandleFinish(f *protocol.Frame) error {
	if e.state != protocol.StateComResponse {
		return e.fail(protocol.ErrUnknown)
	}
	if f.Code.IsError() {
		return e.fail(f.Code)
	}
	if f.Code != protocol.StateFinished {
		return e.fail(protocol.ErrMalformedFrame)
	}
	e.state = protocol.StateFinished
	return nil
}

// Abort terminates the exchange with the code matching err, e.g. after a
// transport failure.
func (e *Exchange) Abort(err error) {
	if e.state.IsError() || e.state == protocol.StateFinished {
		return
	}
	e.fail(err)
}
