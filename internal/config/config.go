package config

import (
	"errors"
	"log/slog"
	"net"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	loomerr "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/reactive"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "loom"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LOOM"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "127.0.0.1:7070"

	// DefaultSnapshotDir is the default snapshot directory.
	DefaultSnapshotDir = ".loom/snapshots"
)

// Config is the complete loom configuration.
type Config struct {
	// Debug enables per-job debug logging in the runtime.
	Debug bool `mapstructure:"debug"`

	Log       LogConfig       `mapstructure:"log"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Inspector InspectorConfig `mapstructure:"inspector"`
	Snapshots SnapshotConfig  `mapstructure:"snapshots"`

	// path is the file the config was read from, if any.
	path string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// RuntimeConfig configures reactive runtimes.
type RuntimeConfig struct {
	// QueueSize is the dispatch queue capacity.
	QueueSize int `mapstructure:"queue_size"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// InspectorConfig configures the inspector server.
type InspectorConfig struct {
	Addr string `mapstructure:"addr"`
}

// SnapshotConfig selects the snapshot store. When S3.Bucket is set,
// snapshots go to S3; otherwise to Dir.
type SnapshotConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

// S3Config locates the snapshot bucket.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// New returns the default configuration.
func New() *Config {
	cfg := &Config{}
	if err := newViper().Unmarshal(cfg); err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("runtime.queue_size", reactive.DefaultQueueSize)
	v.SetDefault("metrics.namespace", "loom")
	v.SetDefault("inspector.addr", DefaultInspectorAddr)
	v.SetDefault("snapshots.dir", DefaultSnapshotDir)
	v.SetDefault("snapshots.s3.bucket", "")
	v.SetDefault("snapshots.s3.prefix", "")
	v.SetDefault("snapshots.s3.region", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from a loom.* file in dir, if one exists,
// applies environment overrides and validates the result.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(dir)
	return load(v, nil)
}

// LoadFile reads the configuration from path, which must exist.
func LoadFile(path string) (*Config, error) {
	return LoadWith(path, nil)
}

// LoadWith reads path (or searches the working directory when path is
// empty) and then applies overrides, typically bound CLI flags, on top of
// the file and environment.
func LoadWith(path string, overrides map[string]any) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
	}
	return load(v, overrides)
}

func load(v *viper.Viper, overrides map[string]any) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return nil, loomerr.New("E501").
				WithDetail("cannot read configuration file").
				Wrap(err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	cfg := &Config{path: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, loomerr.New("E501").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Runtime.QueueSize <= 0 {
		return invalid("runtime.queue_size must be positive, got %d", c.Runtime.QueueSize)
	}
	if c.Metrics.Namespace == "" {
		return invalid("metrics.namespace must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Inspector.Addr); err != nil {
		return invalid("inspector.addr %q is not host:port", c.Inspector.Addr)
	}
	if c.Snapshots.S3.Bucket == "" && c.Snapshots.Dir == "" {
		return invalid("snapshots.dir must be set when no S3 bucket is configured")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return loomerr.New("E501").WithDetailf(format, args...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, invalid("log.level must be debug, info, warn or error, got %q", l.Level)
	}
	return level, nil
}

// Path returns the file the config was read from, or "".
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory of Path, or "." when no file was read.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// UsesS3 reports whether snapshots go to S3.
func (c *Config) UsesS3() bool {
	return c.Snapshots.S3.Bucket != ""
}
