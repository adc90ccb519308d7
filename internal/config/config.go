// Package config reads the ledger settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Defaults.
const (
	DefaultDataFile   = "users.json"
	DefaultHistoryDir = "."
	DefaultKafkaTopic = "transaction_completed"
)

// Config holds the ledger settings.
type Config struct {
	Store        string   // one of StoreFile, StorePostgres, StoreMemory
	DataFile     string   // snapshot file, for StoreFile
	HistoryDir   string   // directory of the statement files, for StoreFile
	DatabaseURL  string   // postgres DSN, for StorePostgres
	KafkaBrokers []string // empty disables event publishing
	KafkaTopic   string
}

// Load loads the given .env files (".env" when none is given), ignoring
// missing ones, then reads the configuration from the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", name, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the environment only.
func FromEnv() (Config, error) {
	c := Config{
		Store:       getenv("LEDGER_STORE", StoreFile),
		DataFile:    getenv("LEDGER_DATA_FILE", DefaultDataFile),
		HistoryDir:  getenv("LEDGER_HISTORY_DIR", DefaultHistoryDir),
		DatabaseURL: os.Getenv("LEDGER_DATABASE_URL"),
		KafkaTopic:  getenv("LEDGER_KAFKA_TOPIC", DefaultKafkaTopic),
	}
	for _, b := range strings.Split(os.Getenv("LEDGER_KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	return c, c.Validate()
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("LEDGER_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown LEDGER_STORE %q", c.Store)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
