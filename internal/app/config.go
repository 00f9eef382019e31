package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/comptoirs/internal/service/order"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

const envPrefix = "comptoirs"

// Config описывает настройки ядра, считываемые из переменных окружения
// с префиксом COMPTOIRS_.
type Config struct {
	// StorageDriver выбирает реализацию единицы работы: memory|postgres.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	// PostgresDSN обязателен для драйвера postgres.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	// PostgresAutoMigrate применяет up-миграции при старте.
	PostgresAutoMigrate bool `envconfig:"POSTGRES_AUTO_MIGRATE" default:"true"`
	// BulkCustomerThreshold — порог "крупного клиента" (строгое сравнение).
	BulkCustomerThreshold int64 `envconfig:"BULK_CUSTOMER_THRESHOLD" default:"100"`
	// BulkCustomerDiscount — скидка крупного клиента, точная десятичная строка.
	BulkCustomerDiscount string `envconfig:"BULK_CUSTOMER_DISCOUNT" default:"0.15"`
	// ClockZone — часовой пояс, определяющий календарное "сегодня".
	// Специальное значение Local означает локальный пояс сервера.
	ClockZone string `envconfig:"CLOCK_ZONE" default:"Local"`
}

// LoadConfig читает конфигурацию из окружения и проверяет её.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		StorageDriver:         StorageDriverMemory,
		PostgresAutoMigrate:   true,
		BulkCustomerThreshold: 100,
		BulkCustomerDiscount:  "0.15",
		ClockZone:             "Local",
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage driver requires COMPTOIRS_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}

	if c.BulkCustomerThreshold < 0 {
		return fmt.Errorf("bulk customer threshold must be non-negative, got %d", c.BulkCustomerThreshold)
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Rules собирает правила создания заказа из конфигурации.
func (c Config) Rules() (order.Rules, error) {
	discount, err := decimal.NewFromString(c.BulkCustomerDiscount)
	if err != nil {
		return order.Rules{}, fmt.Errorf("parse bulk customer discount %q: %w", c.BulkCustomerDiscount, err)
	}
	if discount.IsNegative() {
		return order.Rules{}, fmt.Errorf("bulk customer discount must be non-negative, got %s", discount)
	}
	return order.Rules{
		BulkThreshold: c.BulkCustomerThreshold,
		BulkDiscount:  discount,
	}, nil
}

// Location разрешает настроенный часовой пояс.
func (c Config) Location() (*time.Location, error) {
	if c.ClockZone == "" || c.ClockZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ClockZone)
	if err != nil {
		return nil, fmt.Errorf("load clock zone %q: %w", c.ClockZone, err)
	}
	return loc, nil
}
