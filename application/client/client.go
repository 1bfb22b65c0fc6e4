package client

import (
	"context"
	"net"
	"strconv"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/protocol/client"
	"github.com/pion/transport/v3"
)

// DefaultTimeout is the per-reply timeout of a new config.
const DefaultTimeout = client.DefaultTimeout

// A Result is the outcome of one GetKey call.
type Result struct {
	Code protocol.Code
	// SessionKey is set if Code is protocol.StateFinished.
	SessionKey protocol.Key
}

// ownKeyStore answers lookups of the client's own identity with its
// long-term key and passes everything else through to the session key
// store. The long-term key is never written to that store.
type ownKeyStore struct {
	protocol.KeyStore
	self protocol.Identity
	key  protocol.Key
}

func (s *ownKeyStore) GetKey(id protocol.Identity) (protocol.Key, error) {
	if id == s.self {
		return s.key, nil
	}
	return s.KeyStore.GetKey(id)
}

// GetKey resolves the key server and the peer, binds the local port and
// runs one exchange on nw. The client's own long-term key is served from
// conf and only the session key ends up in store, under the peer's
// identity, on success.
//
// result, if not nil, receives the terminal code exactly once, also when
// the exchange could not even be started; in that case the code is
// ErrUnknown and the returned error tells why.
func GetKey(ctx context.Context, conf *Config, nw transport.Net,
	store protocol.KeyStore, logger *application.Logger,
	result client.ResultFunc) (*Result, error) {
	res, err := getKey(ctx, conf, nw, store, logger)
	if err != nil {
		res = &Result{Code: protocol.ErrUnknown}
	}
	if result != nil {
		result(res.Code)
	}
	return res, err
}

func getKey(ctx context.Context, conf *Config, nw transport.Net,
	store protocol.KeyStore, logger *application.Logger) (*Result, error) {
	if conf.Self == conf.Peer {
		return nil, ErrSelfPeer
	}
	serverAddr, err := nw.ResolveUDPAddr(conf.Network,
		net.JoinHostPort(conf.ServerAddress, strconv.Itoa(conf.ServerPort)))
	if err != nil {
		return nil, err
	}
	peerAddr, err := nw.ResolveUDPAddr(conf.Network,
		net.JoinHostPort(conf.PeerAddress, strconv.Itoa(conf.PeerPort)))
	if err != nil {
		return nil, err
	}

	conn, err := nw.ListenPacket(conf.Network,
		net.JoinHostPort(conf.LocalAddress, strconv.Itoa(conf.LocalPort)))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	logger.Debug("Requesting session key",
		"identity", conf.Self.String(),
		"peer", conf.Peer.String(),
		"server", serverAddr.String(),
		"peer_address", peerAddr.String(),
		"local", conn.LocalAddr().String())

	c := client.New(conn, &ownKeyStore{KeyStore: store, self: conf.Self, key: conf.Key}, &client.Config{
		Self:       conf.Self,
		Peer:       conf.Peer,
		ServerAddr: serverAddr,
		PeerAddr:   peerAddr,
		Timeout:    conf.TimeoutDuration(),
	}, nil)
	res := &Result{Code: c.GetKey(ctx)}
	if res.Code != protocol.StateFinished {
		logger.Warn(res.Code.Error(), "peer", conf.Peer.String())
		return res, nil
	}
	if res.SessionKey, err = store.GetKey(conf.Peer); err != nil {
		return nil, err
	}
	logger.Info("Session key established",
		"peer", conf.Peer.String(),
		"fingerprint", crypto.Fingerprint(res.SessionKey[:]))
	return res, nil
}
