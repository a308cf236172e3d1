package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type LogCfg struct {
	Level string
}

type WorkspaceCfg struct {
	ID string
}

type SDKCfg struct {
	Token string
}

type AuthCfg struct {
	Active    bool
	PortalURL string        `mapstructure:"portal_url"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type UploadCfg struct {
	SecretKey    string        `mapstructure:"secret_key"`
	SignatureTTL time.Duration `mapstructure:"signature_ttl"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
}

type ConfigAPICfg struct {
	URL     string
	Timeout time.Duration
}

type MongoCfg struct {
	URI      string
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// ConnURI returns the explicit URI when set, otherwise builds one from the parts.
func (m MongoCfg) ConnURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.User == "" {
		return fmt.Sprintf("mongodb://%s:%d", m.Host, m.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", m.User, m.Password, m.Host, m.Port)
}

type InfluxCfg struct {
	URL         string
	Token       string
	User        string
	Password    string
	Org         string
	Database    string
	Measurement string
}

// AuthToken returns the API token, falling back to v1-style "user:password" credentials.
func (i InfluxCfg) AuthToken() string {
	if i.Token != "" {
		return i.Token
	}
	if i.User != "" {
		return i.User + ":" + i.Password
	}
	return ""
}

type S3Cfg struct {
	Endpoint     string
	Region       string
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string
	UsePathStyle bool `mapstructure:"use_path_style"`
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type EventsCfg struct {
	URL      string
	Exchange string
}

type TelemetryCfg struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Workspace WorkspaceCfg
	SDK       SDKCfg
	Auth      AuthCfg
	Upload    UploadCfg
	ConfigAPI ConfigAPICfg `mapstructure:"config_api"`
	Mongo     MongoCfg
	Influx    InfluxCfg
	S3        S3Cfg
	Redis     RedisCfg
	Events    EventsCfg
	Telemetry TelemetryCfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "test-manager")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.active", false)
	v.SetDefault("auth.cache_ttl", time.Minute)
	v.SetDefault("upload.signature_ttl", 30*time.Second)
	v.SetDefault("upload.max_bytes", int64(100<<20))
	v.SetDefault("config_api.timeout", 30*time.Second)
	v.SetDefault("mongo.host", "localhost")
	v.SetDefault("mongo.port", 27017)
	v.SetDefault("mongo.database", "test_manager")
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.database", "test_manager")
	v.SetDefault("influx.measurement", "logbook")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_path_style", true)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("events.exchange", "test-manager")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// Load reads configuration from an optional file and the environment.
// An empty path searches ./configs and the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// deployment platform variable names
	_ = v.BindEnv("workspace.id", "Quix__Workspace__Id", "WORKSPACE_ID")
	_ = v.BindEnv("sdk.token", "Quix__Sdk__Token", "SDK_TOKEN")
	_ = v.BindEnv("auth.active", "API_AUTH_ACTIVE", "AUTH_ACTIVE")
	_ = v.BindEnv("auth.portal_url", "Quix__Portal__Api", "AUTH_PORTAL_URL")
	_ = v.BindEnv("influx.database", "INFLUXDB_DATABASE", "INFLUX_DATABASE")
	_ = v.BindEnv("influx.user", "INFLUXDB_USER", "INFLUX_USER")
	_ = v.BindEnv("influx.password", "INFLUXDB_PASSWORD", "INFLUX_PASSWORD")
	_ = v.BindEnv("influx.measurement", "INFLUXDB_MEASUREMENT", "INFLUX_MEASUREMENT")
	_ = v.BindEnv("upload.secret_key", "SECRET_KEY", "UPLOAD_SECRET_KEY")
	_ = v.BindEnv("upload.signature_ttl", "UPLOAD_SIGNATURE_TTL")
	_ = v.BindEnv("config_api.url", "CONFIG_API_URL")
	// keys without defaults are invisible to Unmarshal unless bound
	for _, key := range []string{
		"mongo.uri", "mongo.user", "mongo.password",
		"influx.token", "influx.org",
		"s3.endpoint", "s3.access_key", "s3.secret_key", "s3.bucket",
		"redis.addr", "redis.password", "redis.db",
		"events.url", "telemetry.endpoint",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Upload.SecretKey == "" {
		key, err := randomHex(32)
		if err != nil {
			return nil, fmt.Errorf("generate upload secret: %w", err)
		}
		cfg.Upload.SecretKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workspace.ID == "" {
		return errors.New("workspace.id is required")
	}
	if c.ConfigAPI.URL == "" {
		return errors.New("config_api.url is required")
	}
	if c.S3.Bucket == "" {
		return errors.New("s3.bucket is required")
	}
	if c.Upload.SignatureTTL <= 0 {
		return errors.New("upload.signature_ttl must be positive")
	}
	if c.Auth.CacheTTL < 0 {
		return errors.New("auth.cache_ttl must not be negative")
	}
	if c.Auth.Active && c.Auth.PortalURL == "" {
		return errors.New("auth.portal_url is required when auth is active")
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
