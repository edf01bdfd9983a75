package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pricing  PricingConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// PricingConfig parameterizes the default surcharge policy.
type PricingConfig struct {
	TaxRate            float64 // flat sales-tax fraction, e.g. 0.08
	BundleSize         int     // distinct categories that trigger the bundle discount
	BundleDiscountRate float64 // discount fraction on the base subtotal
}

// CatalogConfig parameterizes product creation.
type CatalogConfig struct {
	StrictDetails bool // reject attribute bags with keys outside the category schema
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PRICING_TAX_RATE", 0.08)
	viper.SetDefault("PRICING_BUNDLE_SIZE", 0)
	viper.SetDefault("PRICING_BUNDLE_DISCOUNT_RATE", 0.0)
	viper.SetDefault("CATALOG_STRICT_DETAILS", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Pricing: PricingConfig{
			TaxRate:            viper.GetFloat64("PRICING_TAX_RATE"),
			BundleSize:         viper.GetInt("PRICING_BUNDLE_SIZE"),
			BundleDiscountRate: viper.GetFloat64("PRICING_BUNDLE_DISCOUNT_RATE"),
		},
		Catalog: CatalogConfig{
			StrictDetails: viper.GetBool("CATALOG_STRICT_DETAILS"),
		},
	}
}
