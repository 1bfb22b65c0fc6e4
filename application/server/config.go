package server

import (
	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/utils"
)

// A Config contains configuration values
// which are read at initialization time from
// a TOML format configuration file.
type Config struct {
	*application.CommonConfig
	// Address is the datagram address the key server listens on,
	// e.g. "udp://0.0.0.0:7000".
	Address string `toml:"address"`
	// DirectoryPath is the leveldb database holding the
	// identity directory.
	DirectoryPath string `toml:"directory_path"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new key server configuration
// at the given file path, with the given config encoding,
// listen address, directory path and logger configuration.
func NewConfig(file, encoding, addr, dirPath string,
	logConfig *application.LoggerConfig) *Config {
	var conf = Config{
		CommonConfig:  application.NewCommonConfig(file, encoding, logConfig),
		Address:       addr,
		DirectoryPath: dirPath,
	}
	return &conf
}

// Load initializes a key server's configuration from the given file
// using the given encoding. The directory path and the log file path
// are made absolute.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	conf.DirectoryPath = utils.ResolvePath(conf.DirectoryPath, file)
	conf.ResolveLoggerPath()
	return nil
}

// Save writes a key server's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the key server's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}
