package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/SeppPenner/needham-schroeder/protocol"
)

func TestGetKey(t *testing.T) {
	serverAddr, stopServer := serveKeyServer(t, directory())
	defer stopServer()
	daemonStore := newTestStore(nil)
	peerAddr, stopDaemon := serveDaemon(t, bobKey, daemonStore)
	defer stopDaemon()

	conn := newClientConn(t)
	defer conn.Close()
	clientStore := newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey})

	var results []protocol.Code
	c := New(conn, clientStore, &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: serverAddr,
		PeerAddr:   peerAddr,
		Timeout:    2 * time.Second,
	}, func(code protocol.Code) {
		results = append(results, code)
	})

	if code := c.GetKey(context.Background()); code != protocol.StateFinished {
		t.Fatal("Expect FINISHED", "got", code.String())
	}
	if len(results) != 1 || results[0] != protocol.StateFinished {
		t.Fatal("Expect exactly one FINISHED result", "got", results)
	}
	if clientStore.storedCount(bob) != 1 || daemonStore.storedCount(alice) != 1 {
		t.Fatal("Expect both sides to store the session key exactly once")
	}
	x, _ := clientStore.GetKey(bob)
	y, _ := daemonStore.GetKey(alice)
	if x != y {
		t.Fatal("Expect client and daemon to agree on the session key")
	}

	// a second run negotiates a new key
	if code := c.GetKey(context.Background()); code != protocol.StateFinished {
		t.Fatal("Expect FINISHED", "got", code.String())
	}
	x2, _ := clientStore.GetKey(bob)
	if x2 == x {
		t.Fatal("Expect a fresh session key")
	}
}

func TestGetKeyUnknownPeer(t *testing.T) {
	serverAddr, stopServer := serveKeyServer(t, directory())
	defer stopServer()
	peerAddr, stopDaemon := serveDaemon(t, bobKey, newTestStore(nil))
	defer stopDaemon()

	conn := newClientConn(t)
	defer conn.Close()
	clientStore := newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey})

	var result protocol.Code
	c := New(conn, clientStore, &Config{
		Self:       alice,
		Peer:       protocol.MustIdentity("dave"),
		ServerAddr: serverAddr,
		PeerAddr:   peerAddr,
	}, func(code protocol.Code) { result = code })

	if code := c.GetKey(context.Background()); code != protocol.ErrUnknownID {
		t.Fatal("Expect ERR_UNKNOWN_ID", "got", code.String())
	}
	if result != protocol.ErrUnknownID {
		t.Fatal("Expect the result callback to see ERR_UNKNOWN_ID")
	}
	if len(clientStore.stored) != 0 {
		t.Fatal("Expect no stored key")
	}
}

func TestGetKeyWithoutOwnKey(t *testing.T) {
	conn := newClientConn(t)
	defer conn.Close()
	unreachable := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	c := New(conn, newTestStore(nil), &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: unreachable,
		PeerAddr:   unreachable,
	}, nil)
	if code := c.GetKey(context.Background()); code != protocol.ErrUnknownID {
		t.Fatal("Expect ERR_UNKNOWN_ID", "got", code.String())
	}
}

func TestGetKeyWrongDaemonKey(t *testing.T) {
	serverAddr, stopServer := serveKeyServer(t, directory())
	defer stopServer()
	daemonStore := newTestStore(nil)
	peerAddr, stopDaemon := serveDaemon(t, protocol.Key{0xba, 0xd}, daemonStore)
	defer stopDaemon()

	conn := newClientConn(t)
	defer conn.Close()
	clientStore := newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey})
	c := New(conn, clientStore, &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: serverAddr,
		PeerAddr:   peerAddr,
	}, nil)
	if code := c.GetKey(context.Background()); code != protocol.ErrRejected {
		t.Fatal("Expect ERR_REJECTED", "got", code.String())
	}
	if clientStore.storedCount(bob) != 0 || daemonStore.storedCount(alice) != 0 {
		t.Fatal("Expect no stored key")
	}
}

func TestGetKeyRogueServer(t *testing.T) {
	// the rogue server replays a grant made for another request
	replayed := keyserverResponse(t, protocol.Nonce{0x42})
	serverAddr, stopServer := serve(t, func(net.Addr, *protocol.Frame) *protocol.Frame {
		return replayed
	})
	defer stopServer()

	conn := newClientConn(t)
	defer conn.Close()
	c := New(conn, newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey}), &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: serverAddr,
		PeerAddr:   serverAddr,
	}, nil)
	if code := c.GetKey(context.Background()); code != protocol.ErrRejected {
		t.Fatal("Expect ERR_REJECTED", "got", code.String())
	}
}

func TestGetKeyTimeout(t *testing.T) {
	silent, stop := serve(t, func(net.Addr, *protocol.Frame) *protocol.Frame {
		return nil
	})
	defer stop()

	conn := newClientConn(t)
	defer conn.Close()
	c := New(conn, newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey}), &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: silent,
		PeerAddr:   silent,
		Timeout:    100 * time.Millisecond,
	}, nil)
	if code := c.GetKey(context.Background()); code != protocol.ErrUnknown {
		t.Fatal("Expect ERR_UNKNOWN", "got", code.String())
	}
}

func TestGetKeyCancel(t *testing.T) {
	silent, stop := serve(t, func(net.Addr, *protocol.Frame) *protocol.Frame {
		return nil
	})
	defer stop()

	conn := newClientConn(t)
	defer conn.Close()
	c := New(conn, newTestStore(map[protocol.Identity]protocol.Key{alice: aliceKey}), &Config{
		Self:       alice,
		Peer:       bob,
		ServerAddr: silent,
		PeerAddr:   silent,
		Timeout:    time.Minute,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	start := time.Now()
	if code := c.GetKey(ctx); code != protocol.ErrUnknown {
		t.Fatal("Expect ERR_UNKNOWN", "got", code.String())
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("Expect cancellation to interrupt the receive")
	}
}

func keyserverResponse(t *testing.T, nonce protocol.Nonce) *protocol.Frame {
	sessionKey, _ := protocol.NewSessionKey()
	ticket, err := protocol.SealTicket(bobKey, sessionKey, alice)
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := protocol.SealGrant(aliceKey, &protocol.Grant{
		Nonce:      nonce,
		Peer:       bob,
		SessionKey: sessionKey,
		Ticket:     ticket,
	})
	if err != nil {
		t.Fatal(err)
	}
	return protocol.NewKeyResponseFrame(sealed)
}
