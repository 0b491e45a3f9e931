package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/smith3v/lexilogio/pkg/logger"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix   = "LEXILOGIO_"
	DefaultDeck = "el_en"
)

type Config struct {
	DataDir  string         `koanf:"data_dir" validate:"required"`
	Deck     string         `koanf:"deck" validate:"required"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	// Path overrides the per-deck sqlite file under DataDir.
	Path     string `koanf:"path"`
	Host     string `koanf:"host" validate:"required_if=Driver postgres"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname" validate:"required_if=Driver postgres"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	SSLMode  string `koanf:"sslmode"`
}

type LoggingConfig struct {
	Level     string `koanf:"level" validate:"omitempty,oneof=debug info warn warning error"`
	File      string `koanf:"file"`
	GormLevel string `koanf:"gorm_level" validate:"omitempty,oneof=silent error warn info"`
}

type TelegramConfig struct {
	Token          string  `koanf:"token"`
	AllowedUserIDs []int64 `koanf:"allowed_user_ids"`
	ReminderTime   string  `koanf:"reminder_time" validate:"omitempty,datetime=15:04"`
}

var AppConfig = Default()

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"data-dir":   "data_dir",
	"deck":       "deck",
	"log-level":  "logging.level",
	"log-file":   "logging.file",
	"db-driver":  "database.driver",
	"db-path":    "database.path",
	"bot-token":  "telegram.token",
	"gorm-level": "logging.gorm_level",
}

func Default() Config {
	dataDir := ".lexilogio"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".lexilogio")
	}
	return Config{
		DataDir: dataDir,
		Deck:    DefaultDeck,
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Port:    5432,
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			Level:     "info",
			GormLevel: "warn",
		},
		Telegram: TelegramConfig{
			ReminderTime: "09:00",
		},
	}
}

// LoadDotEnv loads variables from an env file into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig layers defaults, the optional YAML file at filename, LEXILOGIO_*
// environment variables and changed flags, then validates the result into
// AppConfig.
func LoadConfig(filename string, flags *pflag.FlagSet) error {
	cfg, err := Load(filename, flags)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

func Load(filename string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if strings.TrimSpace(filename) != "" {
		if err := k.Load(file.Provider(filename), yaml.Parser()); err != nil {
			logger.Error("failed to read config file", "file", filename, "error", err)
			return Config{}, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("failed to read flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envKey turns LEXILOGIO_DATABASE__DRIVER into database.driver.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

var (
	ErrNoBotToken     = errors.New("telegram.token is not set")
	ErrNoAllowedUsers = errors.New("telegram.allowed_user_ids is empty")
)

// CheckBot reports what is missing before the bot may serve the deck. The bot
// only talks to listed users, so an empty allow list is refused.
func (t TelegramConfig) CheckBot() error {
	if strings.TrimSpace(t.Token) == "" {
		return ErrNoBotToken
	}
	if len(t.AllowedUserIDs) == 0 {
		return ErrNoAllowedUsers
	}
	return nil
}

// IsAllowed reports whether userID may use the bot. An empty allow list admits
// nobody.
func (t TelegramConfig) IsAllowed(userID int64) bool {
	for _, id := range t.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
