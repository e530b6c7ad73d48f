package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type RegistryConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
}

type StorageConfig struct {
	Driver string       `mapstructure:"driver"` // s3, gdrive or local
	Bucket string       `mapstructure:"bucket"`
	S3     S3Config     `mapstructure:"s3"`
	GDrive GDriveConfig `mapstructure:"gdrive"`
	Local  LocalConfig  `mapstructure:"local"`
}

type S3Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

type GDriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`
}

type LocalConfig struct {
	Path string `mapstructure:"path"`
}

type ToolsConfig struct {
	PgDumpPath    string        `mapstructure:"pg_dump_path"`
	PgRestorePath string        `mapstructure:"pg_restore_path"`
	// RunTimeout bounds one dump or restore run. Zero disables the bound.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Spec is a cron expression with seconds, e.g. "0 * * * * *".
	Spec string `mapstructure:"spec"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "custos")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.bucket", "backups")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "0 * * * * *")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Registry.DatabaseURL == "" {
		return fmt.Errorf("registry.database_url is required")
	}

	switch c.Storage.Driver {
	case "s3":
		if c.Storage.S3.Region == "" && c.Storage.S3.Endpoint == "" {
			return fmt.Errorf("storage.s3: region or endpoint is required")
		}
	case "gdrive":
		if c.Storage.GDrive.CredentialsFile == "" {
			return fmt.Errorf("storage.gdrive.credentials_file is required")
		}
		if c.Storage.GDrive.FolderID == "" {
			return fmt.Errorf("storage.gdrive.folder_id is required")
		}
	case "local":
		if c.Storage.Local.Path == "" {
			return fmt.Errorf("storage.local.path is required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram.chat_id must be numeric, got %q", c.Telegram.ChatID)
		}
	}

	return nil
}
