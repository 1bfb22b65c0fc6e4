package daemon

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/pion/transport/v3/stdnet"
)

var daemonKey = protocol.Key{0xd, 0xa, 0xe}

func newTestConfig(t *testing.T) *Config {
	dir := t.TempDir()
	if err := application.SaveLongTermKey(filepath.Join(dir, "daemon.key"), daemonKey); err != nil {
		t.Fatal(err)
	}
	conf := NewConfig(filepath.Join(dir, "config.toml"), "toml",
		"udp://127.0.0.1:0", "daemon.key",
		&application.LoggerConfig{Environment: "development"})
	conf.Key = daemonKey
	return conf
}

func startDaemon(t *testing.T, conf *Config, interval time.Duration) (*Daemon, func()) {
	nw, err := stdnet.NewNet()
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(conf, nw)
	if err != nil {
		t.Fatal(err)
	}
	d.sweepInterval = interval
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	return d, func() {
		if err := d.Shutdown(); err != nil {
			t.Error(err)
		}
	}
}

func sendComRequest(t *testing.T, to net.Addr) *protocol.Frame {
	ticket, err := protocol.SealTicket(daemonKey, protocol.Key{0x5e}, protocol.MustIdentity("alice"))
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	msg, _ := protocol.NewComRequestFrame(ticket).Marshal()
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

func TestDaemonExpiresChallenges(t *testing.T) {
	conf := newTestConfig(t)
	conf.PendingTimeout = 1
	d, teardown := startDaemon(t, conf, 50*time.Millisecond)
	defer teardown()

	if res := sendComRequest(t, d.LocalAddr()); res.Code != protocol.StateComChallenge {
		t.Fatal("Expect COM_CHALLENGE", "got", res.Code.String())
	}
	if d.Pending() != 1 {
		t.Fatal("Expect one pending challenge")
	}
	deadline := time.Now().Add(5 * time.Second)
	for d.Pending() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expect the challenge to expire")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestDaemonKeepsChallengesWithoutTimeout(t *testing.T) {
	conf := newTestConfig(t)
	conf.PendingTimeout = 0
	d, teardown := startDaemon(t, conf, 10*time.Millisecond)
	defer teardown()

	sendComRequest(t, d.LocalAddr())
	time.Sleep(100 * time.Millisecond)
	if d.Pending() != 1 {
		t.Fatal("Expect the challenge to be kept")
	}
}

func TestDaemonReload(t *testing.T) {
	conf := newTestConfig(t)
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	d, teardown := startDaemon(t, conf, time.Hour)
	defer teardown()

	// rewrite the config with a new timeout and reload it
	if err := os.Remove(conf.Path); err != nil {
		t.Fatal(err)
	}
	conf.PendingTimeout = 7
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	d.reload()
	if time.Duration(d.pendingTimeout.Load()) != 7*time.Second {
		t.Fatal("Expect the reloaded timeout")
	}
}

func TestDaemonConfigLoad(t *testing.T) {
	conf := newTestConfig(t)
	conf.KeystorePath = "sessions"
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	loaded := new(Config)
	if err := loaded.Load(conf.Path, "toml"); err != nil {
		t.Fatal(err)
	}
	if loaded.Key != daemonKey {
		t.Fatal("Expect the long-term key to be read")
	}
	if loaded.PendingTimeout != DefaultPendingTimeout {
		t.Fatal("Expect the default pending timeout")
	}
	if loaded.KeystorePath != filepath.Join(filepath.Dir(conf.Path), "sessions") {
		t.Fatal("Expect the keystore path to be resolved")
	}
}
