// Drives an Exchange over a datagram connection: key server first, then
// the peer daemon. The run is synchronous and only blocks on the four
// send/receive pairs.

package client

import (
	"context"
	"net"
	"time"

	"github.com/SeppPenner/needham-schroeder/protocol"
)

// DefaultTimeout bounds every round trip when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// A ResultFunc is told the terminal code of every run: StateFinished on
// success, one of the error codes otherwise.
type ResultFunc func(code protocol.Code)

// Config contains what a client needs for one exchange: its own and its
// peer's identity, where to reach the key server and the peer, and how
// long to wait for each reply.
type Config struct {
	Self       protocol.Identity
	Peer       protocol.Identity
	ServerAddr net.Addr
	PeerAddr   net.Addr
	Timeout    time.Duration
}

// A Client runs exchanges over conn. The client's long-term key is read
// from store under Config.Self, and the negotiated session key is stored
// under Config.Peer.
type Client struct {
	conn   net.PacketConn
	store  protocol.KeyStore
	conf   *Config
	result ResultFunc
}

// New creates a Client. result may be nil.
func New(conn net.PacketConn, store protocol.KeyStore, conf *Config,
	result ResultFunc) *Client {
	return &Client{
		conn:   conn,
		store:  store,
		conf:   conf,
		result: result,
	}
}

// GetKey runs one exchange and returns its terminal code, which is also
// passed to the client's ResultFunc exactly once.
//
// GetKey does not retry: any transport failure, malformed frame or
// failed check ends the run in the matching error state, and the caller
// has to call GetKey again to start over. Cancelling ctx aborts the
// pending receive and the run ends with ErrUnknown.
func (c *Client) GetKey(ctx context.Context) protocol.Code {
	code := c.run(ctx)
	if c.result != nil {
		c.result(code)
	}
	return code
}

func (c *Client) run(ctx context.Context) protocol.Code {
	clientKey, err := c.store.GetKey(c.conf.Self)
	if err != nil {
		return protocol.ToCode(err)
	}

	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	e := NewExchange(c.conf.Self, c.conf.Peer, clientKey)
	req, err := e.KeyRequest()
	if err != nil {
		return e.State()
	}
	res, err := c.roundTrip(ctx, c.conf.ServerAddr, req)
	if err != nil {
		e.Abort(err)
		return e.State()
	}
	comReq, err := e.HandleKeyResponse(res)
	if err != nil {
		return e.State()
	}
	res, err = c.roundTrip(ctx, c.conf.PeerAddr, comReq)
	if err != nil {
		e.Abort(err)
		return e.State()
	}
	comRes, err := e.HandleChallenge(res)
	if err != nil {
		return e.State()
	}
	res, err = c.roundTrip(ctx, c.conf.PeerAddr, comRes)
	if err != nil {
		e.Abort(err)
		return e.State()
	}
	if err := e.HandleFinish(res); err != nil {
		return e.State()
	}

	if err := c.store.StoreKey(c.conf.Peer, e.SessionKey()); err != nil {
		return protocol.ErrUnknown
	}
	return protocol.StateFinished
}

func (c *Client) timeout() time.Duration {
	if c.conf.Timeout > 0 {
		return c.conf.Timeout
	}
	return DefaultTimeout
}

// roundTrip sends f to to and waits for the reply from to. Datagrams
// from any other address are dropped.
func (c *Client) roundTrip(ctx context.Context, to net.Addr,
	f *protocol.Frame) (*protocol.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := f.Marshal()
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := c.conn.WriteTo(msg, to); err != nil {
		return nil, err
	}

	// one spare byte so that an oversized datagram fails to decode
	buf := make([]byte, protocol.MaxFrameSize+1)
	for {
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		if !sameAddr(from, to) {
			continue
		}
		return protocol.Unmarshal(buf[:n])
	}
}

func sameAddr(a, b net.Addr) bool {
	ua, ok1 := a.(*net.UDPAddr)
	ub, ok2 := b.(*net.UDPAddr)
	if ok1 && ok2 {
		return ua.Port == ub.Port && ua.IP.Equal(ub.IP)
	}
	return a.Network() == b.Network() && a.String() == b.String()
}
