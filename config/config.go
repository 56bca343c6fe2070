package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

const (
	Name      = "magma"
	EnvPrefix = "MAGMA"
)

type Config struct {
	Listener  ListenerConfig  `mapstructure:"listener"`
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Login     LoginConfig     `mapstructure:"login"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	UserCache UserCacheConfig `mapstructure:"usercache"`
	Log       LogConfig       `mapstructure:"log"`
}

type ListenerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (l ListenerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

type ServerConfig struct {
	MOTD                 string        `mapstructure:"motd"`
	MaxPlayers           int           `mapstructure:"max_players"`
	Favicon              string        `mapstructure:"favicon"`
	OnlineMode           bool          `mapstructure:"online_mode"`
	CompressionThreshold int           `mapstructure:"compression_threshold"`
	MaxNicknameLength    int           `mapstructure:"max_nickname_length"`
	KeyFile              string        `mapstructure:"key_file"`
	KeepAliveInterval    time.Duration `mapstructure:"keepalive_interval"`
	KeepAliveTimeout     time.Duration `mapstructure:"keepalive_timeout"`
}

type SessionConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoginConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type UserCacheConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key with its default value. Keys without a
// default are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listener.host", "0.0.0.0")
	v.SetDefault("listener.port", constants.DefaultPort)

	v.SetDefault("server.motd", "A magma server")
	v.SetDefault("server.max_players", 100)
	v.SetDefault("server.favicon", "")
	v.SetDefault("server.online_mode", true)
	v.SetDefault("server.compression_threshold", 256)
	v.SetDefault("server.max_nickname_length", protocol.MaxNameLength)
	v.SetDefault("server.key_file", "server.pem")
	v.SetDefault("server.keepalive_interval", "15s")
	v.SetDefault("server.keepalive_timeout", "30s")

	v.SetDefault("session.url", "https://sessionserver.mojang.com")
	v.SetDefault("session.timeout", "10s")

	v.SetDefault("login.rate", 1.0)
	v.SetDefault("login.burst", 3)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", 8080)

	v.SetDefault("usercache.path", "usercache.db")

	v.SetDefault("log.level", "info")
}

// Load reads magma.yaml from dir, writing one with the defaults when there
// is none. Variables from dir/.env.local and MAGMA_ prefixed environment
// variables override the file, e.g. MAGMA_LISTENER_PORT.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env.local")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env.local: %w", err)
	}

	v := viper.New()
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to write sample config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Listener.Port < 0 || c.Listener.Port > 65535 {
		return fmt.Errorf("listener.port %d out of range", c.Listener.Port)
	}
	if n := c.Server.MaxNicknameLength; n < 1 || n > protocol.MaxNameLength {
		return fmt.Errorf("server.max_nickname_length must be between 1 and %d", protocol.MaxNameLength)
	}
	if c.Server.CompressionThreshold < protocol.CompressionDisabled {
		return fmt.Errorf("server.compression_threshold must be %d (off) or above", protocol.CompressionDisabled)
	}
	if c.Server.KeepAliveInterval <= 0 || c.Server.KeepAliveTimeout < c.Server.KeepAliveInterval {
		return errors.New("server.keepalive_timeout must be at least server.keepalive_interval")
	}
	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	return nil
}
