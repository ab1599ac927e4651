package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Fanout   FanoutConfig   `mapstructure:"fanout"`
	Timeline TimelineConfig `mapstructure:"timeline"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Log      LogConfig      `mapstructure:"log"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres or sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FanoutConfig struct {
	BatchSize    int `mapstructure:"batch_size"`    // followers per page / inbox insert batch
	Workers      int `mapstructure:"workers"`       // concurrent batch writers per post
	ReplicaQueue int `mapstructure:"replica_queue"` // fan redundancy queue size
}

type TimelineConfig struct {
	PageSize    int `mapstructure:"page_size"`    // default feed page
	BackfillPer int `mapstructure:"backfill_per"` // posts pulled per followed author on repair
}

type CounterConfig struct {
	FlagTTL     time.Duration `mapstructure:"flag_ttl"`     // like idempotency flag lifetime
	ShadowQueue int           `mapstructure:"shadow_queue"` // shadow log writer queue size
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // OTLP/HTTP collector, host:port
}

// Load 读取 config.yaml 并叠加环境变量（SOCIALFEED_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SOCIALFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=postgres port=5432 sslmode=disable")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("fanout.batch_size", 500)
	v.SetDefault("fanout.workers", 8)
	v.SetDefault("fanout.replica_queue", 10000)
	v.SetDefault("timeline.page_size", 20)
	v.SetDefault("timeline.backfill_per", 50)
	v.SetDefault("counter.flag_ttl", 720*time.Hour)
	v.SetDefault("counter.shadow_queue", 65536)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("trace.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		// missing file is fine: defaults + env are enough for local runs
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
