package server

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/pion/transport/v3/stdnet"
)

var (
	alice    = protocol.MustIdentity("alice")
	bob      = protocol.MustIdentity("bob")
	aliceKey = protocol.Key{0xa}
	bobKey   = protocol.Key{0xb}
)

func newTestConfig(t *testing.T) *Config {
	dir := t.TempDir()
	return NewConfig(filepath.Join(dir, "config.toml"), "toml",
		"udp://127.0.0.1:0", filepath.Join(dir, "directory"),
		&application.LoggerConfig{Environment: "development"})
}

func startServer(t *testing.T, conf *Config) (*KeyServer, func()) {
	nw, err := stdnet.NewNet()
	if err != nil {
		t.Fatal(err)
	}
	server, err := New(conf, nw)
	if err != nil {
		t.Fatal(err)
	}
	if err := server.Run(); err != nil {
		t.Fatal(err)
	}
	return server, func() {
		if err := server.Shutdown(); err != nil {
			t.Error(err)
		}
	}
}

func request(t *testing.T, to net.Addr, f *protocol.Frame) *protocol.Frame {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	msg, _ := f.Marshal()
	if _, err := conn.WriteTo(msg, to); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, protocol.MaxFrameSize)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatal(err)
	}
	res, err := protocol.Unmarshal(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestServerStartStop(t *testing.T) {
	_, teardown := startServer(t, newTestConfig(t))
	defer teardown()
}

func TestServerIssuesGrant(t *testing.T) {
	conf := newTestConfig(t)
	dir, err := OpenDirectory(conf)
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.StoreKeys(map[protocol.Identity]protocol.Key{
		alice: aliceKey,
		bob:   bobKey,
	}); err != nil {
		t.Fatal(err)
	}
	dir.Close()

	server, teardown := startServer(t, conf)
	defer teardown()

	nonce := protocol.Nonce{1, 2, 3}
	res := request(t, server.LocalAddr(), protocol.NewKeyRequestFrame(&protocol.KeyRequest{
		From: alice, To: bob, Nonce: nonce,
	}))
	sealed, err := res.SealedGrant()
	if err != nil {
		t.Fatal("Expect KEY_RESPONSE", "got", res.Code.String())
	}
	grant, err := protocol.OpenGrant(aliceKey, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if grant.Nonce != nonce || grant.Peer != bob {
		t.Fatal("Expect the grant to echo the nonce and the peer")
	}

	res = request(t, server.LocalAddr(), protocol.NewKeyRequestFrame(&protocol.KeyRequest{
		From: alice, To: protocol.MustIdentity("mallory"), Nonce: nonce,
	}))
	if res.Code != protocol.ErrUnknownID {
		t.Fatal("Expect ERR_UNKNOWN_ID", "got", res.Code.String())
	}

	res = request(t, server.LocalAddr(), protocol.NewFinishedFrame())
	if res.Code != protocol.ErrUnknown {
		t.Fatal("Expect ERR_UNKNOWN", "got", res.Code.String())
	}
}

func TestServerConfigSaveLoad(t *testing.T) {
	conf := newTestConfig(t)
	conf.DirectoryPath = "directory"
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	loaded := new(Config)
	if err := loaded.Load(conf.Path, "toml"); err != nil {
		t.Fatal(err)
	}
	if loaded.Address != conf.Address {
		t.Fatal("Expect the saved address")
	}
	if loaded.DirectoryPath != filepath.Join(filepath.Dir(conf.Path), "directory") {
		t.Fatal("Expect the directory path to be resolved", "got", loaded.DirectoryPath)
	}
}
