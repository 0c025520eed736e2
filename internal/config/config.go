package config

import (
	"fmt"
	"os"
)

// Store kinds selectable via the STORE environment variable
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

// Config holds the server configuration, sourced from environment variables
// with sensible local defaults
type Config struct {
	Addr   string
	Store  string
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// New reads the configuration from the environment
func New() Config {
	return Config{
		Addr:   getenv("ADDR", ":8080"),
		Store:  getenv("STORE", StoreMemory),
		DBUser: getenv("DB_USER", "root"),
		DBPass: getenv("DB_PASS", ""),
		DBHost: getenv("DB_HOST", "127.0.0.1"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: getenv("DB_NAME", "school_finance"),
	}
}

// MySQLDSN builds the MySQL connection string. A full READ_DSN overrides the
// individual parts.
func (c Config) MySQLDSN() string {
	if dsn := os.Getenv("READ_DSN"); dsn != "" {
		return dsn
	}
	auth := c.DBUser
	if c.DBPass != "" {
		auth += ":" + c.DBPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4,utf8&loc=Local", auth, c.DBHost, c.DBPort, c.DBName)
}
