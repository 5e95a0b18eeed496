package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Polza AI provider; an empty key means demo fallback sources.
	PolzaKey     string
	PolzaBase    string
	PolzaModel   string
	PolzaTimeout time.Duration

	// BlockPriority is the tie-break order for profile ties.
	BlockPriority []string
}

func Load() *Config {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080 // fallback
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432 // fallback
	}

	model := os.Getenv("POLZA_MODEL")
	if model == "" {
		model = "perplexity/sonar"
	}

	base := os.Getenv("POLZA_API_BASE")
	if base == "" {
		base = "https://api.polza.ai/api/v1"
	}

	timeoutSec, err := strconv.Atoi(os.Getenv("POLZA_TIMEOUT_SECONDS"))
	if err != nil || timeoutSec <= 0 {
		timeoutSec = 30
	}

	priority := []string{"morning", "day", "evening"}
	if raw := os.Getenv("BLOCK_PRIORITY"); raw != "" {
		priority = nil
		for _, p := range strings.Split(raw, ",") {
			priority = append(priority, strings.ToLower(strings.TrimSpace(p)))
		}
	}

	return &Config{
		Port: port,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		PolzaKey:     os.Getenv("POLZA_API_KEY"),
		PolzaBase:    base,
		PolzaModel:   model,
		PolzaTimeout: time.Duration(timeoutSec) * time.Second,

		BlockPriority: priority,
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// HasDB reports whether a database is configured; without one the service
// runs on the in-memory store.
func (c *Config) HasDB() bool {
	return c.DBHost != ""
}
