package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is the class of configuration failures.
var Error = errs.Class("config")

// EnvPrefix prefixes environment overrides, HBRECORD_ADDR for instance.
const EnvPrefix = "HBRECORD"

// Config holds what is needed to reach the HBase Thrift gateway.
type Config struct {
	Addr    string            `mapstructure:"addr"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`

	// ScanLimit is the page size of scanners opened directly.
	ScanLimit int32 `mapstructure:"scan_limit"`
	// BatchSize is the page size used when a table is scanned to the end.
	BatchSize int32 `mapstructure:"batch_size"`

	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "http://localhost:9090")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("scan_limit", 10)
	v.SetDefault("batch_size", 64)
	v.SetDefault("log.level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the configuration with only defaults and environment
// overrides applied.
func Default() (*Config, error) {
	return decode(newViper())
}

// LoadConfig reads a yaml file, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, Error.New("read %s: %v", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Error.New("unmarshal: %v", err)
	}
	if cfg.Addr == "" {
		return nil, Error.New("addr is required")
	}
	return &cfg, nil
}
