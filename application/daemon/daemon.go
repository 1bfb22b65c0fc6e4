package daemon

import (
	"sync/atomic"
	"time"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol/daemon"
	"github.com/pion/transport/v3"
)

// sweepInterval is how often expired challenges are looked for.
const sweepInterval = time.Second

// A Daemon represents the Needham-Schroeder peer daemon. It wraps a
// daemon.Daemon with a network layer, drops challenges that stay
// unanswered for longer than the configured pending timeout, and
// re-reads the pending timeout on SIGUSR2.
type Daemon struct {
	*application.ServerBase
	core  *daemon.Daemon
	store *application.KeyStore
	addr  *application.ServerAddress

	pendingTimeout atomic.Int64
	sweepInterval  time.Duration
}

// New creates a daemon for conf on nw.
func New(conf *Config, nw transport.Net) (*Daemon, error) {
	store, err := application.OpenKeyStore(conf.KeystorePath, conf.Path)
	if err != nil {
		return nil, err
	}
	sb := application.NewServerBase(conf.CommonConfig, "Listen", nw)
	d := &Daemon{
		ServerBase:    sb,
		core:          daemon.New(conf.Key, application.LogStoredKeys(store, sb.Logger())),
		store:         store,
		addr:          &application.ServerAddress{Address: conf.Address},
		sweepInterval: sweepInterval,
	}
	d.pendingTimeout.Store(int64(conf.PendingTimeoutDuration()))
	return d, nil
}

// Run starts serving COM_REQUEST and COM_RESPONSE frames.
func (d *Daemon) Run() error {
	if err := d.ListenAndHandle(d.addr, d.core.HandleFrame); err != nil {
		return err
	}
	d.RunInBackground(func() {
		d.Sweep(application.NewSweepTimer(d.sweepInterval), d.expire)
	})
	d.HotReload(d.reload)
	return nil
}

func (d *Daemon) expire() {
	maxAge := time.Duration(d.pendingTimeout.Load())
	if maxAge <= 0 {
		return
	}
	if n := d.core.Expire(maxAge); n > 0 {
		d.Logger().Info("Dropped unanswered challenges", "count", n)
	}
}

func (d *Daemon) reload() {
	path, encoding := d.ConfigInfo()
	conf := new(Config)
	if err := conf.Load(path, encoding); err != nil {
		d.Logger().Error(err.Error())
		return
	}
	d.pendingTimeout.Store(int64(conf.PendingTimeoutDuration()))
	d.Logger().Info("Pending timeout reloaded", "timeout", conf.PendingTimeoutDuration().String())
}

// Pending returns the number of outstanding challenges.
func (d *Daemon) Pending() int {
	return d.core.Pending()
}

// Shutdown stops the daemon and closes its key store.
func (d *Daemon) Shutdown() error {
	err := d.ServerBase.Shutdown()
	if cerr := d.store.Close(); err == nil {
		err = cerr
	}
	return err
}
