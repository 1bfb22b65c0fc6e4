package client

import (
	"net"
	"sync"
	"testing"

	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/protocol/daemon"
	"github.com/SeppPenner/needham-schroeder/protocol/keyserver"
)

var (
	alice    = protocol.MustIdentity("alice")
	bob      = protocol.MustIdentity("bob")
	aliceKey = protocol.Key{0xa1, 0x1c, 0xe}
	bobKey   = protocol.Key{0xb0, 0xb}
)

// testStore is a KeyStore counting StoreKey calls per identity.
type testStore struct {
	sync.Mutex
	keys   map[protocol.Identity]protocol.Key
	stored map[protocol.Identity]int
}

func newTestStore(keys map[protocol.Identity]protocol.Key) *testStore {
	s := &testStore{
		keys:   make(map[protocol.Identity]protocol.Key),
		stored: make(map[protocol.Identity]int),
	}
	for id, k := range keys {
		s.keys[id] = k
	}
	return s
}

func (s *testStore) GetKey(id protocol.Identity) (protocol.Key, error) {
	s.Lock()
	defer s.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return protocol.Key{}, protocol.ErrUnknownID
	}
	return k, nil
}

func (s *testStore) StoreKey(id protocol.Identity, k protocol.Key) error {
	s.Lock()
	defer s.Unlock()
	s.keys[id] = k
	s.stored[id]++
	return nil
}

func (s *testStore) storedCount(id protocol.Identity) int {
	s.Lock()
	defer s.Unlock()
	return s.stored[id]
}

// serve answers every datagram on a loopback socket with handler until
// the returned teardown is called.
func serve(t *testing.T, handler func(from net.Addr, f *protocol.Frame) *protocol.Frame) (net.Addr, func()) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, protocol.MaxFrameSize)
		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			var res *protocol.Frame
			req, err := protocol.Unmarshal(buf[:n])
			if err != nil {
				res = protocol.NewErrorFrame(protocol.ErrUnknown)
			} else {
				res = handler(from, req)
			}
			if res == nil {
				continue
			}
			msg, err := res.Marshal()
			if err != nil {
				continue
			}
			conn.WriteTo(msg, from)
		}
	}()
	return conn.LocalAddr(), func() {
		conn.Close()
		wg.Wait()
	}
}

func serveKeyServer(t *testing.T, keys protocol.KeyProvider) (net.Addr, func()) {
	s := keyserver.New(keys)
	return serve(t, func(_ net.Addr, f *protocol.Frame) *protocol.Frame {
		res, _ := s.HandleFrame(f)
		return res
	})
}

func serveDaemon(t *testing.T, key protocol.Key, store protocol.KeyStore) (net.Addr, func()) {
	d := daemon.New(key, store)
	return serve(t, func(from net.Addr, f *protocol.Frame) *protocol.Frame {
		res, _ := d.HandleFrame(from, f)
		return res
	})
}

func newClientConn(t *testing.T) net.PacketConn {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return conn
}
