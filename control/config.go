// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Layered configuration: defaults, optional config file, HIOLOAD_RPC_*
// environment variables and command-line flags, in increasing precedence.

package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-rpc/api"
)

// EnvPrefix prefixes environment overrides, e.g. HIOLOAD_RPC_TRANSPORT_MODE.
const EnvPrefix = "HIOLOAD_RPC"

// Config is the file/env/flag view of a driver setup.
type Config struct {
	Transport         TransportConfig `mapstructure:"transport"`
	Log               LogConfig       `mapstructure:"log"`
	ReadBufferSize    int             `mapstructure:"read_buffer_size"`
	WriteFlushTimeout time.Duration   `mapstructure:"write_flush_timeout"`
	Signals           []int           `mapstructure:"signals"`
}

// TransportConfig selects and parameterizes one connection mode.
type TransportConfig struct {
	Mode           string        `mapstructure:"mode"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Path           string        `mapstructure:"path"`
	Argv           []string      `mapstructure:"argv"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("transport.mode", "stream")
	v.SetDefault("transport.host", "127.0.0.1")
	v.SetDefault("transport.port", 6666)
	v.SetDefault("transport.path", "")
	v.SetDefault("transport.argv", []string{})
	v.SetDefault("transport.connect_timeout", "10s")
	v.SetDefault("transport.connect_retries", 0)
	v.SetDefault("read_buffer_size", 64*1024)
	v.SetDefault("write_flush_timeout", "1s")
	v.SetDefault("signals", []int{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are left to the caller.
var FlagKeys = map[string]string{
	"mode":            "transport.mode",
	"host":            "transport.host",
	"port":            "transport.port",
	"path":            "transport.path",
	"argv":            "transport.argv",
	"connect-timeout": "transport.connect_timeout",
	"connect-retries": "transport.connect_retries",
	"read-buffer":     "read_buffer_size",
	"flush-timeout":   "write_flush_timeout",
	"signal":          "signals",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// Load reads configuration. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Mode returns the parsed transport mode.
func (c *Config) Mode() (api.Mode, error) {
	return api.ParseMode(c.Transport.Mode)
}

// Validate checks that the selected mode has the parameters it needs.
func (c *Config) Validate() error {
	mode, err := c.Mode()
	if err != nil {
		return err
	}
	switch mode {
	case api.ModeStream:
		if c.Transport.Port <= 0 || c.Transport.Port > 65535 {
			return fmt.Errorf("%w: transport.port %d", api.ErrInvalidArgument, c.Transport.Port)
		}
	case api.ModeLocal:
		if c.Transport.Path == "" {
			return fmt.Errorf("%w: transport.path is required for local mode", api.ErrInvalidArgument)
		}
	case api.ModeChild:
		if len(c.Transport.Argv) == 0 {
			return fmt.Errorf("%w: transport.argv is required for child mode", api.ErrInvalidArgument)
		}
	}
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("%w: read_buffer_size %d", api.ErrInvalidArgument, c.ReadBufferSize)
	}
	return nil
}
