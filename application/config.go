package application

import (
	"fmt"
	"os"

	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/utils"
)

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// CommonConfig is the generic type used to specify the configuration of
// any of the three executables (key server, daemon, client).
// It contains some common configuration values including the file path,
// logger configuration, and config loader.
type CommonConfig struct {
	Path     string        `toml:"-"`
	Logger   *LoggerConfig `toml:"logger"`
	Encoding string        `toml:"-"`
	loader   ConfigLoader
}

// NewCommonConfig initializes an application's config file path,
// its loader for the given encoding, and the logger configuration.
// Note: This constructor must be called in each Load() method
// implementation of an AppConfig.
func NewCommonConfig(file, encoding string, logger *LoggerConfig) *CommonConfig {
	return &CommonConfig{
		Path:     file,
		Logger:   logger,
		Encoding: encoding,
		loader:   newConfigLoader(encoding),
	}
}

// GetLoader returns the config's loader.
func (conf *CommonConfig) GetLoader() ConfigLoader {
	return conf.loader
}

// ResolveLoggerPath makes a relative log file path relative to the
// config file.
func (conf *CommonConfig) ResolveLoggerPath() {
	if conf.Logger != nil && conf.Logger.Path != "" {
		conf.Logger.Path = utils.ResolvePath(conf.Logger.Path, conf.Path)
	}
}

// LoadLongTermKey loads a raw 16-byte long-term key at the given path
// specified in the given config file.
// If the file cannot be read or has the wrong length,
// LoadLongTermKey() returns an error with a zero key.
func LoadLongTermKey(path, file string) (protocol.Key, error) {
	keyPath := utils.ResolvePath(path, file)
	buf, err := os.ReadFile(keyPath)
	if err != nil {
		return protocol.Key{}, fmt.Errorf("Cannot read long-term key: %w", err)
	}
	key, err := protocol.NewKey(buf)
	if err != nil {
		return protocol.Key{}, fmt.Errorf("Long-term key must be %d bytes (got %d)",
			protocol.KeySize, len(buf))
	}
	return key, nil
}

// SaveLongTermKey writes key to path, refusing to overwrite an existing
// file. The file is only readable by its owner.
func SaveLongTermKey(path string, key protocol.Key) error {
	return utils.WriteFile(path, key[:], 0600)
}
