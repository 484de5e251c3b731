package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Бэкенды хранилища записей
const (
	StoragePostgres = "postgres"
	StorageAirtable = "airtable"
)

type Config struct {
	TelegramToken string
	OpenAIAPIKey  string
	OpenAIModel   string

	Storage           string // postgres | airtable
	DBDSN             string
	AirtableToken     string
	AirtableBaseID    string
	AirtableTableName string

	CatalogPath  string
	StaffChatID  int64
	ReminderHour int  // Час ежедневной рассылки напоминаний
	NameFallback bool // Принимать одинокое слово с заглавной буквы как имя

	Environment string
}

// Load читает конфигурацию из .env и переменных окружения.
// Все значения обрезаются: хвостовой пробел в токене даёт загадочный 401.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:     env("TELEGRAM_TOKEN"),
		OpenAIAPIKey:      env("OPENAI_API_KEY"),
		OpenAIModel:       env("OPENAI_MODEL"),
		Storage:           env("STORAGE"),
		DBDSN:             env("DB_DSN"),
		AirtableToken:     env("AIRTABLE_TOKEN"),
		AirtableBaseID:    env("AIRTABLE_BASE_ID"),
		AirtableTableName: env("AIRTABLE_TABLE_NAME"),
		CatalogPath:       env("CATALOG_PATH"),
		Environment:       env("ENV"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Storage == "" {
		cfg.Storage = StoragePostgres
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "catalog.yaml"
	}

	cfg.ReminderHour = 9
	if raw := env("REMINDER_HOUR"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("REMINDER_HOUR must be 0-23, got %q", raw)
		}
		cfg.ReminderHour = hour
	}

	if raw := env("STAFF_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("STAFF_CHAT_ID must be a chat id, got %q", raw)
		}
		cfg.StaffChatID = id
	}

	cfg.NameFallback = env("NAME_FALLBACK") == "true"

	// Без этих настроек боту не подняться, падаем сразу на старте
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required but not set")
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for postgres storage")
		}
	case StorageAirtable:
		if cfg.AirtableToken == "" || cfg.AirtableBaseID == "" || cfg.AirtableTableName == "" {
			return nil, fmt.Errorf("AIRTABLE_TOKEN, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME are required for airtable storage")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE %q, want %s or %s", cfg.Storage, StoragePostgres, StorageAirtable)
	}

	log.Printf("Config loaded: storage=%s env=%s\n", cfg.Storage, cfg.Environment)

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
