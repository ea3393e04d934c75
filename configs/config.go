package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT" default:"3010"`
	Environment          string `mapstructure:"ENVIRONMENT" default:"development"`
	DBHost               string `mapstructure:"DB_HOST"`
	DBPort               string `mapstructure:"DB_PORT"`
	DBName               string `mapstructure:"DB_NAME"`
	DBUser               string `mapstructure:"DB_USER"`
	DBPassword           string `mapstructure:"DB_PASSWORD"`
	DBSSLMode            string `mapstructure:"DB_SSL_MODE"`
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int    `mapstructure:"REDIS_DB"`
	RabbitMQUrl          string `mapstructure:"RABBITMQ_URL" default:"localhost"`
	RabbitMQPort         string `mapstructure:"RABBITMQ_PORT" default:"5672"`
	RabbitMQUser         string `mapstructure:"RABBITMQ_USER"`
	RabbitMQPassword     string `mapstructure:"RABBITMQ_PASSWORD"`
	DispatchQueue        string `mapstructure:"RABBITMQ_DISPATCH_QUEUE"`
	DispatchExchange     string `mapstructure:"RABBITMQ_DISPATCH_EXCHANGE"`
	DispatchRoutingKey   string `mapstructure:"RABBITMQ_DISPATCH_ROUTING_KEY"`
	SenderExchange       string `mapstructure:"RABBITMQ_SENDER_EXCHANGE"`
	CoreAPIBaseURL       string `mapstructure:"CORE_API_BASE_URL"`
	CoreAPIKey           string `mapstructure:"CORE_API_KEY"`
	ReceiptTTLHours      int    `mapstructure:"RECEIPT_TTL_HOURS" default:"24"`
	DispatchRatePerMin   int    `mapstructure:"DISPATCH_RATE_PER_MINUTE" default:"30"`
}

func LoadConfig(path string) *Config {
	var cfg Config
	viper.SetConfigName("app_config")
	viper.SetConfigType("env")
	viper.AddConfigPath(path)
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil
		}
		cfg = Config{
			ServerPort:         os.Getenv("SERVER_PORT"),
			Environment:        os.Getenv("ENVIRONMENT"),
			DBHost:             os.Getenv("DB_HOST"),
			DBPort:             os.Getenv("DB_PORT"),
			DBName:             os.Getenv("DB_NAME"),
			DBUser:             os.Getenv("DB_USER"),
			DBPassword:         os.Getenv("DB_PASSWORD"),
			DBSSLMode:          os.Getenv("DB_SSL_MODE"),
			RedisAddr:          os.Getenv("REDIS_ADDR"),
			RedisPassword:      os.Getenv("REDIS_PASSWORD"),
			RedisDB:            getEnvInt("REDIS_DB", 0),
			RabbitMQUrl:        os.Getenv("RABBITMQ_URL"),
			RabbitMQPort:       os.Getenv("RABBITMQ_PORT"),
			RabbitMQUser:       os.Getenv("RABBITMQ_USER"),
			RabbitMQPassword:   os.Getenv("RABBITMQ_PASSWORD"),
			DispatchQueue:      os.Getenv("RABBITMQ_DISPATCH_QUEUE"),
			DispatchExchange:   os.Getenv("RABBITMQ_DISPATCH_EXCHANGE"),
			DispatchRoutingKey: os.Getenv("RABBITMQ_DISPATCH_ROUTING_KEY"),
			SenderExchange:     os.Getenv("RABBITMQ_SENDER_EXCHANGE"),
			CoreAPIBaseURL:     os.Getenv("CORE_API_BASE_URL"),
			CoreAPIKey:         os.Getenv("CORE_API_KEY"),
			ReceiptTTLHours:    getEnvInt("RECEIPT_TTL_HOURS", 24),
			DispatchRatePerMin: getEnvInt("DISPATCH_RATE_PER_MINUTE", 30),
		}
	} else {
		err = viper.Unmarshal(&cfg)
		if err != nil {
			return nil
		}
	}
	if cfg.ReceiptTTLHours <= 0 {
		cfg.ReceiptTTLHours = 24
	}
	if cfg.DispatchRatePerMin <= 0 {
		cfg.DispatchRatePerMin = 30
	}
	return &cfg
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
