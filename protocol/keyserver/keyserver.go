// This module implements the Needham-Schroeder key server.
// A key server shares a long-term key with every principal in its
// directory and hands out fresh session keys on request.
// It keeps no state between requests, so a single KeyServer can answer
// any number of clients concurrently.

package keyserver

import (
	"github.com/SeppPenner/needham-schroeder/protocol"
)

// A KeyServer answers KEY_REQUESTs using the long-term keys of its
// directory.
type KeyServer struct {
	keys protocol.KeyProvider
}

// New constructs a new KeyServer reading long-term keys from keys.
func New(keys protocol.KeyProvider) *KeyServer {
	return &KeyServer{keys: keys}
}

// HandleKeyRequest issues a new session key for the pair (req.From,
// req.To) and returns a tuple of the form (response, error).
// The response (which may be an error frame) is supposed to be sent
// back to the client. The returned error is used by the key server for
// logging purposes.
//
// If either identity is absent from the directory, HandleKeyRequest()
// returns a protocol.NewErrorFrame(ErrUnknownID) tuple. Any other
// failure, e.g. a directory I/O error, is reported as ErrUnknown.
// Otherwise, the response is a KEY_RESPONSE frame carrying
// Enc(K_from, nonce || to || session key || ticket) with
// ticket = Enc(K_to, session key || from).
func (s *KeyServer) HandleKeyRequest(req *protocol.KeyRequest) (*protocol.Frame, error) {
	if !req.From.Valid() || !req.To.Valid() {
		return protocol.NewErrorFrame(protocol.ErrUnknownID), protocol.ErrUnknownID
	}
	clientKey, err := s.keys.GetKey(req.From)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ToCode(err)), err
	}
	peerKey, err := s.keys.GetKey(req.To)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ToCode(err)), err
	}

	sessionKey, err := protocol.NewSessionKey()
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	ticket, err := protocol.SealTicket(peerKey, sessionKey, req.From)
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	sealed, err := protocol.SealGrant(clientKey, &protocol.Grant{
		Nonce:      req.Nonce,
		Peer:       req.To,
		SessionKey: sessionKey,
		Ticket:     ticket,
	})
	if err != nil {
		return protocol.NewErrorFrame(protocol.ErrUnknown), err
	}
	return protocol.NewKeyResponseFrame(sealed), nil
}

// HandleFrame passes a received frame to the appropriate operation
// handler according to its code. The key server only understands
// KEY_REQUEST; anything else is answered with ErrUnknown.
func (s *KeyServer) HandleFrame(f *protocol.Frame) (*protocol.Frame, error) {
	if f.Code == protocol.StateKeyRequest {
		req, err := f.KeyRequest()
		if err == nil {
			return s.HandleKeyRequest(req)
		}
	}
	return protocol.NewErrorFrame(protocol.ErrUnknown), protocol.ErrMalformedFrame
}
