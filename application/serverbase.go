package application

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/pion/transport/v3"
)

// SweepTimer consists of a `time.Timer` and the sweep interval.
type SweepTimer struct {
	*time.Timer
	duration time.Duration
}

// NewSweepTimer initializes a timer for running regular
// maintenance procedures every interval.
func NewSweepTimer(interval time.Duration) *SweepTimer {
	return &SweepTimer{
		Timer:    time.NewTimer(interval),
		duration: interval,
	}
}

// A ServerAddress describes a server's datagram endpoint.
// The address is formatted as a url: scheme://host:port, where scheme is
// one of "udp", "udp4" or "udp6".
type ServerAddress struct {
	Address string `toml:"address"`
}

// ErrUnknownNetwork is returned for an address whose scheme is not a
// datagram network.
var ErrUnknownNetwork = errors.New("[application] Unknown network type")

// parse splits the address into a network and a host:port.
func (addr *ServerAddress) parse() (network, host string, err error) {
	u, err := url.Parse(addr.Address)
	if err != nil {
		return "", "", err
	}
	switch u.Scheme {
	case "udp", "udp4", "udp6":
		return u.Scheme, u.Host, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownNetwork, u.Scheme)
	}
}

func (addr *ServerAddress) resolveAndListen(nw transport.Net) (net.PacketConn, error) {
	network, host, err := addr.parse()
	if err != nil {
		return nil, err
	}
	return nw.ListenPacket(network, host)
}

// A Handler answers one decoded frame received from from. The returned
// error is only logged; the returned frame, if any, is sent back.
type Handler func(from net.Addr, f *protocol.Frame) (*protocol.Frame, error)

// A ServerBase represents the base features needed to implement
// the key server or the daemon. It wraps a Handler with a datagram
// socket which receives frames, decodes them and sends the replies.
// Every datagram is handled on its own goroutine.
type ServerBase struct {
	Verb string

	nw     transport.Net
	conn   net.PacketConn
	logger *Logger

	stop        chan struct{}
	waitStop    sync.WaitGroup
	waitWorkers sync.WaitGroup
	stopOnce    sync.Once

	configFilePath string
	configEncoding string
	reloadChan     chan os.Signal
}

// NewServerBase creates a new generic server base listening on the
// given network. nw is usually stdnet.NewNet().
func NewServerBase(conf *CommonConfig, listenVerb string,
	nw transport.Net) *ServerBase {
	sb := new(ServerBase)
	sb.Verb = listenVerb
	sb.nw = nw
	sb.logger = NewLogger(conf.Logger)
	sb.stop = make(chan struct{})
	sb.configFilePath = conf.Path
	sb.configEncoding = conf.Encoding
	return sb
}

// ListenAndHandle binds the given server address and starts serving
// datagrams with handler in the background.
func (sb *ServerBase) ListenAndHandle(addr *ServerAddress, handler Handler) error {
	conn, err := addr.resolveAndListen(sb.nw)
	if err != nil {
		return err
	}
	sb.conn = conn
	sb.logger.Info(sb.Verb, "address", conn.LocalAddr().String())
	sb.RunInBackground(func() {
		sb.acceptRequests(conn, handler)
	})
	return nil
}

func (sb *ServerBase) acceptRequests(conn net.PacketConn, handler Handler) {
	buf := make([]byte, protocol.MaxFrameSize+1)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-sb.stop:
				sb.waitWorkers.Wait()
				return
			default:
			}
			if opErr, ok := err.(*net.OpError); ok && opErr.Timeout() {
				continue
			}
			sb.logger.Error(err.Error())
			continue
		}
		msg := make([]byte, n)
		copy(msg, buf[:n])
		sb.waitWorkers.Add(1)
		go func() {
			sb.acceptClient(conn, from, msg, handler)
			sb.waitWorkers.Done()
		}()
	}
}

func (sb *ServerBase) acceptClient(conn net.PacketConn, from net.Addr,
	msg []byte, handler Handler) {
	var response *protocol.Frame
	req, err := protocol.Unmarshal(msg)
	if err != nil {
		response = protocol.NewErrorFrame(protocol.ErrUnknown)
	} else {
		sb.logger.Debug("Received frame",
			"code", req.Code.String(),
			"address", from.String())
		response, err = handler(from, req)
	}
	if err != nil {
		sb.logger.Warn(err.Error(),
			"address", from.String())
	}
	if response == nil {
		return
	}

	res, err := response.Marshal()
	if err != nil {
		sb.logger.Error(err.Error(),
			"address", from.String())
		return
	}
	if _, err := conn.WriteTo(res, from); err != nil {
		sb.logger.Error(err.Error(),
			"address", from.String())
	}
}

// RunInBackground creates a new goroutine that calls function `f`.
// It automatically increments the counter `sync.WaitGroup` of the
// `ServerBase` and calls `Done` when the function execution is finished.
func (sb *ServerBase) RunInBackground(f func()) {
	sb.waitStop.Add(1)
	go func() {
		f()
		sb.waitStop.Done()
	}()
}

// Sweep runs function `f` every time the given timer fires, until the
// server is shut down.
func (sb *ServerBase) Sweep(timer *SweepTimer, f func()) {
	defer timer.Stop()
	for {
		select {
		case <-sb.stop:
			return
		case <-timer.C:
			f()
			timer.Reset(timer.duration)
		}
	}
}

// HotReload subscribes to SIGUSR2 and calls `f` in the background every
// time the process receives it, until the server is shut down. A server
// that never calls HotReload leaves SIGUSR2 with its default action.
// It must be called at most once.
func (sb *ServerBase) HotReload(f func()) {
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGUSR2)
	sb.reloadChan = reload
	sb.RunInBackground(func() {
		for {
			select {
			case <-sb.stop:
				return
			case <-reload:
				f()
			}
		}
	})
}

// Logger returns the server base's logger instance.
func (sb *ServerBase) Logger() *Logger {
	return sb.logger
}

// LocalAddr returns the bound address, or nil before ListenAndHandle.
func (sb *ServerBase) LocalAddr() net.Addr {
	if sb.conn == nil {
		return nil
	}
	return sb.conn.LocalAddr()
}

// ConfigInfo returns the server base's config file path and encoding.
func (sb *ServerBase) ConfigInfo() (string, string) {
	return sb.configFilePath, sb.configEncoding
}

// Shutdown closes the server's socket, waits for the datagrams being
// handled and shuts down the server. It is safe to call more than once.
func (sb *ServerBase) Shutdown() error {
	var err error
	sb.stopOnce.Do(func() {
		if sb.reloadChan != nil {
			signal.Stop(sb.reloadChan)
		}
		close(sb.stop)
		if sb.conn != nil {
			err = sb.conn.Close()
		}
		sb.waitStop.Wait()
		sb.logger.Sync()
	})
	return err
}
