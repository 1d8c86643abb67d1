// config описывает конфигурацию бота и её загрузку из YAML/ENV.
//
// Приоритет источников:
//  1. явный путь, переданный в Load/MustLoad;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация бота.
type Config struct {
	// Token — токен Telegram-бота. Обязателен.
	Token string `yaml:"token" env:"TELEGRAM_TOKEN" env-required:"true"`
	// OperatorID — Telegram id оператора (разработчика). 0 — оператор не задан:
	// жалобы только логируются, админ-команды недоступны.
	OperatorID int64       `yaml:"operator_id" env:"OPERATOR_ID" env-default:"0"`
	Mongo      MongoConfig `yaml:"mongo"`
	LogLevel   string      `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// MongoConfig — настройки подключения к MongoDB.
type MongoConfig struct {
	URI      string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string        `yaml:"database" env:"MONGO_DB" env-default:"genshin_bot"`
	Timeout  time.Duration `yaml:"timeout" env:"MONGO_TIMEOUT" env-default:"5s"`
}

// Load загружает конфигурацию по описанному приоритету источников.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: файл %q недоступен: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: чтение %q: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: чтение переменных окружения: %w", err)
	}
	return &cfg, nil
}

// MustLoad — Load с паникой при ошибке; для main.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}
