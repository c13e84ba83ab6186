package main

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port         string
	Env          string
	MongoURI     string
	MongoDB      string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	SNSTopicArn  string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "rango"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  getEnv("ORDER_EVENTS_TOPIC", "order.status_changed"),
		SNSTopicArn: os.Getenv("ORDER_ALERTS_SNS_ARN"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.MongoURI == "" || cfg.MongoDB == "" {
		return nil, fmt.Errorf("mongo config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
