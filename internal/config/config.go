package config

import (
	"fmt"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
	pkgconfig "github.com/weiawesome/wes-io-live/snowflake-service/pkg/config"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Snowflake SnowflakeConfig
	UUID      UUIDConfig   `mapstructure:"uuid"`
	NanoID    NanoIDConfig `mapstructure:"nanoid"`
	CUID2     CUID2Config  `mapstructure:"cuid2"`
	Batch     BatchConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type GRPCConfig struct {
	Host string
	Port int
}

type SnowflakeConfig struct {
	MachineID       int64  `mapstructure:"machine_id"`
	Epoch           int64  `mapstructure:"epoch"`
	ClockRegression string `mapstructure:"clock_regression"` // reject | reuse
	Encoding        string `mapstructure:"encoding"`
}

type UUIDConfig struct {
	Version int `mapstructure:"version"`
}

type NanoIDConfig struct {
	Size     int    `mapstructure:"size"`
	Alphabet string `mapstructure:"alphabet"`
}

type CUID2Config struct {
	Length int `mapstructure:"length"`
}

type BatchConfig struct {
	MaxCount int `mapstructure:"max_count"`
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads config/config.yaml (optional) and the environment.
func Load() (*Config, error) {
	return LoadFrom("./config")
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir string) (*Config, error) {
	v, err := pkgconfig.Load(dir, "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50053)
	v.SetDefault("snowflake.machine_id", 1)
	v.SetDefault("snowflake.epoch", snowflake.DefaultEpoch)
	v.SetDefault("snowflake.clock_regression", snowflake.RejectRegression.String())
	v.SetDefault("snowflake.encoding", string(snowflake.EncodingDecimal))
	v.SetDefault("uuid.version", 4)
	v.SetDefault("nanoid.size", idgen.DefaultNanoIDSize)
	v.SetDefault("nanoid.alphabet", idgen.DefaultNanoIDAlphabet)
	v.SetDefault("cuid2.length", idgen.DefaultCUID2Length)
	v.SetDefault("batch.max_count", 1000)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	if err := pkgconfig.BindEnvAliases(v, map[string][]string{
		"server.port":          {"PORT"},
		"grpc.port":            {"GRPC_PORT"},
		"snowflake.machine_id": {"SNOWFLAKE_MACHINE_ID", "MACHINE_ID"},
		"snowflake.epoch":      {"SNOWFLAKE_EPOCH"},
		"nanoid.size":          {"NANOID_SIZE"},
		"nanoid.alphabet":      {"NANOID_ALPHABET"},
		"cuid2.length":         {"CUID2_LENGTH"},
		"log.level":            {"LOG_LEVEL"},
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no generator could be built from.
func (c *Config) Validate() error {
	if c.Snowflake.MachineID < 0 || c.Snowflake.MachineID > snowflake.MaxMachineID {
		return fmt.Errorf("snowflake.machine_id must be between 0 and %d, got %d", snowflake.MaxMachineID, c.Snowflake.MachineID)
	}
	if c.Snowflake.Epoch < 0 {
		return fmt.Errorf("snowflake.epoch must not be negative, got %d", c.Snowflake.Epoch)
	}
	if _, err := snowflake.ParseRegressionPolicy(c.Snowflake.ClockRegression); err != nil {
		return fmt.Errorf("snowflake.clock_regression: %w", err)
	}
	if _, err := snowflake.ParseEncoding(c.Snowflake.Encoding); err != nil {
		return fmt.Errorf("snowflake.encoding: %w", err)
	}
	if c.Batch.MaxCount < 1 {
		return fmt.Errorf("batch.max_count must be positive, got %d", c.Batch.MaxCount)
	}
	if c.Server.Port <= 0 || c.GRPC.Port <= 0 {
		return fmt.Errorf("server.port and grpc.port must be positive")
	}
	return nil
}
