package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Tokens   TokensConfig   `mapstructure:"tokens"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret           string        `mapstructure:"secret"`
	AuthTokenTTL     time.Duration `mapstructure:"auth_token_ttl"`
	RememberTokenTTL time.Duration `mapstructure:"remember_token_ttl"`
}

type TokensConfig struct {
	APITokenTTL   time.Duration `mapstructure:"api_token_ttl"`
	LoginOTPTTL   time.Duration `mapstructure:"login_otp_ttl"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type SweeperConfig struct {
	DeleteInterval    time.Duration `mapstructure:"delete_interval"`
	ReminderInterval  time.Duration `mapstructure:"reminder_interval"`
	PurgePollInterval time.Duration `mapstructure:"purge_poll_interval"`
	PurgeDelay        time.Duration `mapstructure:"purge_delay"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
