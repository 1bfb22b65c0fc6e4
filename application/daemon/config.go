package daemon

import (
	"time"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/utils"
)

// DefaultPendingTimeout is the pending_timeout written by NewConfig.
const DefaultPendingTimeout = 30

// A Config contains the daemon's configuration: where to listen, its
// long-term key, where to keep the session keys it accepts, and how long
// an unanswered challenge is kept.
type Config struct {
	*application.CommonConfig
	// Address is the datagram address the daemon listens on,
	// e.g. "udp://0.0.0.0:7001".
	Address string `toml:"address"`
	// KeyPath is the file holding the daemon's raw 16-byte
	// long-term key, shared with the key server.
	KeyPath string `toml:"key_path"`
	// KeystorePath is the leveldb database for the session keys.
	// Session keys are kept in memory if it is empty.
	KeystorePath string `toml:"keystore_path,omitempty"`
	// PendingTimeout is the number of seconds after which an
	// unanswered challenge is dropped. Zero keeps challenges forever.
	PendingTimeout int `toml:"pending_timeout"`

	// Key is the long-term key read from KeyPath.
	Key protocol.Key `toml:"-"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new daemon configuration at the given file
// path, with the given config encoding, listen address, key file and
// logger configuration.
func NewConfig(file, encoding, addr, keyPath string,
	logConfig *application.LoggerConfig) *Config {
	var conf = Config{
		CommonConfig:   application.NewCommonConfig(file, encoding, logConfig),
		Address:        addr,
		KeyPath:        keyPath,
		PendingTimeout: DefaultPendingTimeout,
	}
	return &conf
}

// Load initializes a daemon's configuration from the given file
// using the given encoding. It reads the long-term key file.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	key, err := application.LoadLongTermKey(conf.KeyPath, file)
	if err != nil {
		return err
	}
	conf.Key = key
	if conf.KeystorePath != "" {
		conf.KeystorePath = utils.ResolvePath(conf.KeystorePath, file)
	}
	conf.ResolveLoggerPath()
	return nil
}

// Save writes a daemon's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the daemon's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// PendingTimeoutDuration returns PendingTimeout as a time.Duration.
func (conf *Config) PendingTimeoutDuration() time.Duration {
	return time.Duration(conf.PendingTimeout) * time.Second
}
