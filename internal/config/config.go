package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	AllowedOrigin      string `mapstructure:"allowed_origin"`
	DefaultDisplayName string `mapstructure:"default_display_name"`
	DefaultLobbyName   string `mapstructure:"default_lobby_name"`
	BackpressurePolicy string `mapstructure:"backpressure_policy"`

	JoinRateLimit    int           `mapstructure:"join_rate_limit"`
	JoinRateInterval time.Duration `mapstructure:"join_rate_interval"`

	ICEServers      []string `mapstructure:"ice_servers"`
	SocketIOEnabled bool     `mapstructure:"socketio_enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 4000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "lobby-dev-secret-change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("default_display_name", "Kullanici")
	v.SetDefault("default_lobby_name", "Yeni Lobi")
	v.SetDefault("backpressure_policy", "kick")
	v.SetDefault("join_rate_limit", 10)
	v.SetDefault("join_rate_interval", "10s")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("socketio_enabled", true)
}

// Load reads config/config.<CONFIG_ENV>.yaml (or CONFIG_FILE), then applies
// LOBBY_* environment overrides plus PORT and CLIENT_ORIGIN.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	fileName := os.Getenv("CONFIG_FILE")
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvPrefix("LOBBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "LOBBY_PORT", "PORT")
	_ = v.BindEnv("allowed_origin", "LOBBY_ALLOWED_ORIGIN", "CLIENT_ORIGIN")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("invalid ping_period %s", c.PingPeriod)
	}
	switch strings.ToLower(c.BackpressurePolicy) {
	case "kick", "drop":
	default:
		return fmt.Errorf("invalid backpressure_policy %q", c.BackpressurePolicy)
	}
	return nil
}
