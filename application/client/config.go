package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/utils"
)

// Config contains the client's configuration needed to run one
// exchange: where the key server and the peer daemon are, the local
// port to send from, the client's and the peer's identities, the
// client's long-term key and where to store the negotiated session key.
//
// Network is one of "udp", "udp4" or "udp6"; it restricts the address
// family the server and peer addresses are resolved to.
type Config struct {
	*application.CommonConfig

	ServerAddress string `toml:"server_address"`
	ServerPort    int    `toml:"server_port"`
	PeerAddress   string `toml:"peer_address"`
	PeerPort      int    `toml:"peer_port"`
	LocalAddress  string `toml:"local_address,omitempty"`
	LocalPort     int    `toml:"local_port"`
	Network       string `toml:"network"`

	Identity     string `toml:"identity"`
	PeerIdentity string `toml:"peer_identity"`

	KeyPath      string `toml:"key_path"`
	KeystorePath string `toml:"keystore_path,omitempty"`
	// Timeout is the number of seconds to wait for each reply.
	Timeout int `toml:"timeout"`

	Self protocol.Identity `toml:"-"`
	Peer protocol.Identity `toml:"-"`
	Key  protocol.Key      `toml:"-"`
}

var _ application.AppConfig = (*Config)(nil)

// ErrSelfPeer is returned for a config whose peer is the client itself.
var ErrSelfPeer = errors.New("[client] peer_identity must differ from identity")

// NewConfig initializes a new client configuration at the given file
// path with the given config encoding and default values for
// everything but the identities and the key file.
func NewConfig(file, encoding, identity, peerIdentity, keyPath string) *Config {
	var conf = Config{
		CommonConfig:  application.NewCommonConfig(file, encoding, application.NewLoggerConfig()),
		ServerAddress: "127.0.0.1",
		ServerPort:    7000,
		PeerAddress:   "127.0.0.1",
		PeerPort:      7001,
		Network:       "udp",
		Identity:      identity,
		PeerIdentity:  peerIdentity,
		KeyPath:       keyPath,
		Timeout:       int(DefaultTimeout / time.Second),
	}
	return &conf
}

// Load initializes a client's configuration from the given file
// using the given encoding. It validates the identities and reads the
// client's long-term key.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	return conf.init(file)
}

func (conf *Config) init(file string) error {
	switch conf.Network {
	case "":
		conf.Network = "udp"
	case "udp", "udp4", "udp6":
	default:
		return fmt.Errorf("%w: %q", application.ErrUnknownNetwork, conf.Network)
	}
	var err error
	if conf.Self, err = protocol.NewIdentity(conf.Identity); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if conf.Peer, err = protocol.NewIdentity(conf.PeerIdentity); err != nil {
		return fmt.Errorf("peer_identity: %w", err)
	}
	if conf.Self == conf.Peer {
		return ErrSelfPeer
	}
	if conf.Key, err = application.LoadLongTermKey(conf.KeyPath, file); err != nil {
		return err
	}
	if conf.KeystorePath != "" {
		conf.KeystorePath = utils.ResolvePath(conf.KeystorePath, file)
	}
	conf.ResolveLoggerPath()
	return nil
}

// Save writes a client's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the client's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// TimeoutDuration returns the per-reply timeout, DefaultTimeout if
// Timeout is not positive.
func (conf *Config) TimeoutDuration() time.Duration {
	if conf.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(conf.Timeout) * time.Second
}
