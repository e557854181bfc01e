package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrInvalidConfig wraps every configuration problem found at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfigFile is read when AUTH_CONFIG_FILE is not set. It is optional.
const DefaultConfigFile = "config/auth.yaml"

type Config struct {
	Env                  string        `koanf:"env" validate:"required"`
	LogLevel             string        `koanf:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat            string        `koanf:"logFormat" validate:"oneof=json text"`
	Port                 int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownGracePeriod  time.Duration `koanf:"shutdownGracePeriod" validate:"gt=0"`
	HousekeepingInterval time.Duration `koanf:"housekeepingInterval" validate:"gt=0"`
	PepperFile           string        `koanf:"pepperFile" validate:"required"`

	Database   DatabaseConfig   `koanf:"database"`
	Token      TokenConfig      `koanf:"token"`
	Clients    []ClientConfig   `koanf:"clients" validate:"dive"`
	RateLimits RateLimitsConfig `koanf:"rateLimits"`
	Kafka      KafkaConfig      `koanf:"kafka"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// DatabaseConfig selects the store driver. The pool settings only apply to
// postgres; zero keeps the pgx default.
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	File   string `koanf:"file" validate:"required_if=Driver sqlite"`
	URL    string `koanf:"url" validate:"required_if=Driver postgres"`

	MaxConns        int32         `koanf:"maxConns" validate:"gte=0"`
	MinConns        int32         `koanf:"minConns" validate:"gte=0"`
	MaxConnLifetime time.Duration `koanf:"maxConnLifetime" validate:"gte=0"`
	MaxConnIdleTime time.Duration `koanf:"maxConnIdleTime" validate:"gte=0"`
}

// TokenConfig holds the signing secret and lifetimes. Lifetimes are minutes.
type TokenConfig struct {
	Issuer                 string   `koanf:"issuer" validate:"required"`
	Audience               []string `koanf:"audience" validate:"required,min=1,dive,required"`
	SecurityKey            string   `koanf:"securityKey" validate:"required"`
	AccessTokenExpiration  int      `koanf:"accessTokenExpiration" validate:"gt=0"`
	RefreshTokenExpiration int      `koanf:"refreshTokenExpiration" validate:"gtfield=AccessTokenExpiration"`
}

func (c TokenConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiration) * time.Minute
}

func (c TokenConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiration) * time.Minute
}

// ClientConfig is one trusted machine client. Clients are only read from the
// config file, never from the environment.
type ClientConfig struct {
	ID                     string `koanf:"id" validate:"required"`
	Secret                 string `koanf:"secret" validate:"required,min=16"`
	AllowedLifetimeMinutes int    `koanf:"allowedLifetimeMinutes" validate:"gt=0"`
}

type RateLimitProfile struct {
	RequestsPerWindow int           `koanf:"requests" validate:"gt=0"`
	Window            time.Duration `koanf:"window" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"gt=0"`
}

type RateLimitsConfig struct {
	Strict   RateLimitProfile `koanf:"strict"`
	Moderate RateLimitProfile `koanf:"moderate"`
	Lenient  RateLimitProfile `koanf:"lenient"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic" validate:"required_with=Brokers"`
}

type TelemetryConfig struct {
	// OTLPEndpoint is a host:port for the gRPC exporter. Tracing is off when empty.
	OTLPEndpoint string  `koanf:"otlpEndpoint"`
	ServiceName  string  `koanf:"serviceName" validate:"required"`
	SampleRatio  float64 `koanf:"sampleRatio" validate:"gte=0,lte=1"`
}

// envKeys maps supported environment variables to config keys.
var envKeys = map[string]string{
	"ENV":                           "env",
	"LOG_LEVEL":                     "logLevel",
	"LOG_FORMAT":                    "logFormat",
	"PORT":                          "port",
	"SHUTDOWN_GRACE_PERIOD":         "shutdownGracePeriod",
	"HOUSEKEEPING_INTERVAL":         "housekeepingInterval",
	"AUTH_PEPPER_FILE":              "pepperFile",
	"AUTH_DATABASE_DRIVER":          "database.driver",
	"AUTH_DATABASE_FILE":            "database.file",
	"AUTH_DATABASE_URL":             "database.url",
	"AUTH_DATABASE_MAX_CONNS":       "database.maxConns",
	"AUTH_DATABASE_MIN_CONNS":       "database.minConns",
	"AUTH_DATABASE_CONN_LIFETIME":   "database.maxConnLifetime",
	"AUTH_DATABASE_CONN_IDLE_TIME":  "database.maxConnIdleTime",
	"AUTH_ISSUER":                   "token.issuer",
	"AUTH_AUDIENCE":                 "token.audience",
	"AUTH_SECURITY_KEY":             "token.securityKey",
	"AUTH_ACCESS_TOKEN_EXPIRATION":  "token.accessTokenExpiration",
	"AUTH_REFRESH_TOKEN_EXPIRATION": "token.refreshTokenExpiration",
	"AUTH_KAFKA_BROKERS":            "kafka.brokers",
	"AUTH_KAFKA_TOPIC":              "kafka.topic",
	"OTEL_EXPORTER_OTLP_ENDPOINT":   "telemetry.otlpEndpoint",
	"OTEL_SERVICE_NAME":             "telemetry.serviceName",
	"OTEL_TRACES_SAMPLER_ARG":       "telemetry.sampleRatio",
	"RATELIMIT_STRICT_REQUESTS":     "rateLimits.strict.requests",
	"RATELIMIT_STRICT_WINDOW":       "rateLimits.strict.window",
	"RATELIMIT_STRICT_BURST":        "rateLimits.strict.burst",
	"RATELIMIT_MODERATE_REQUESTS":   "rateLimits.moderate.requests",
	"RATELIMIT_MODERATE_WINDOW":     "rateLimits.moderate.window",
	"RATELIMIT_MODERATE_BURST":      "rateLimits.moderate.burst",
	"RATELIMIT_LENIENT_REQUESTS":    "rateLimits.lenient.requests",
	"RATELIMIT_LENIENT_WINDOW":      "rateLimits.lenient.window",
	"RATELIMIT_LENIENT_BURST":       "rateLimits.lenient.burst",
}

// Comma separated list variables.
var envLists = map[string]bool{
	"AUTH_AUDIENCE":      true,
	"AUTH_KAFKA_BROKERS": true,
}

func defaultConfig() Config {
	limits := httpx.DefaultRateLimits()
	profile := func(c httpx.RateLimitConfig) RateLimitProfile {
		return RateLimitProfile{RequestsPerWindow: c.RequestsPerWindow, Window: c.Window, Burst: c.Burst}
	}

	return Config{
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		PepperFile:           "pepper",
		Database: DatabaseConfig{
			Driver: "sqlite",
			File:   "auth.db",
		},
		Token: TokenConfig{
			Issuer:                 "jwtauth",
			AccessTokenExpiration:  15,
			RefreshTokenExpiration: 7 * 24 * 60,
		},
		RateLimits: RateLimitsConfig{
			Strict:   profile(limits.Strict),
			Moderate: profile(limits.Moderate),
			Lenient:  profile(limits.Lenient),
		},
		Telemetry: TelemetryConfig{
			ServiceName: "jwtauth",
			SampleRatio: 1,
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by AUTH_CONFIG_FILE (or DefaultConfigFile when present), then environment
// variables. The result is validated.
func LoadConfig() (Config, error) {
	path, explicit := os.LookupEnv("AUTH_CONFIG_FILE")
	if !explicit {
		path = DefaultConfigFile
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	return loadConfig(path)
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			mapped, ok := envKeys[key]
			if !ok || value == "" {
				return "", nil
			}
			if envLists[key] {
				return mapped, splitList(value)
			}
			return mapped, value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("%w: load env: %w", ErrInvalidConfig, err)
	}

	// Slices are decoded in place, so list defaults are applied afterwards.
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if len(cfg.Token.Audience) == 0 {
		cfg.Token.Audience = []string{cfg.Token.Issuer}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that client ids are unique.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]struct{}, len(c.Clients))
	for _, cl := range c.Clients {
		if _, dup := seen[cl.ID]; dup {
			return fmt.Errorf("%w: duplicate client id %q", ErrInvalidConfig, cl.ID)
		}
		seen[cl.ID] = struct{}{}
	}
	return nil
}

// DomainClients converts the configured clients for the client registry.
func (c Config) DomainClients() []domain.Client {
	out := make([]domain.Client, 0, len(c.Clients))
	for _, cl := range c.Clients {
		out = append(out, domain.Client{
			ID:                     cl.ID,
			Secret:                 cl.Secret,
			AllowedLifetimeMinutes: cl.AllowedLifetimeMinutes,
		})
	}
	return out
}

// HTTPRateLimits converts the configured profiles for the router.
func (c Config) HTTPRateLimits() httpx.RateLimits {
	conv := func(p RateLimitProfile) httpx.RateLimitConfig {
		return httpx.RateLimitConfig{RequestsPerWindow: p.RequestsPerWindow, Window: p.Window, Burst: p.Burst}
	}
	return httpx.RateLimits{
		Strict:   conv(c.RateLimits.Strict),
		Moderate: conv(c.RateLimits.Moderate),
		Lenient:  conv(c.RateLimits.Lenient),
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
