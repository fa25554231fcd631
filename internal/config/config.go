// Package config collects runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"taskmanager/internal/storage"
	"taskmanager/internal/util"
)

// Supported backends.
const (
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

// Config holds every setting the binary needs.
type Config struct {
	Addr              string
	StaticDir         string
	Backend           string
	DBPath            string
	Collection        string
	DeleteConcurrency int
	LogLevel          string
	LogFile           string

	Firestore FirestoreConfig
	Mongo     MongoConfig
}

// FirestoreConfig are the credentials of the hosted document store.
type FirestoreConfig struct {
	ProjectID       string
	APIKey          string
	Endpoint        string
	CredentialsFile string
}

// MongoConfig points at a MongoDB deployment.
type MongoConfig struct {
	URI      string
	Database string
}

// Load reads envFiles (".env" when none are given) and then the environment.
// Missing env files are ignored; variables already set win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return Config{
		Addr:              util.EnvOrDefault("TASKS_ADDR", ":8080"),
		StaticDir:         util.EnvOrDefault("TASKS_STATIC_DIR", "web/dist"),
		Backend:           strings.ToLower(util.EnvOrDefault("TASKS_BACKEND", BackendSQLite)),
		DBPath:            util.EnvOrDefault("TASKS_DB_PATH", "data/tasks.db"),
		Collection:        util.EnvOrDefault("TASKS_COLLECTION", storage.CollectionName),
		DeleteConcurrency: util.EnvIntOrDefault("TASKS_DELETE_CONCURRENCY", 0),
		LogLevel:          util.EnvOrDefault("TASKS_LOG_LEVEL", "info"),
		LogFile:           util.EnvOrDefault("TASKS_LOG_FILE", ""),
		Firestore: FirestoreConfig{
			ProjectID:       util.EnvOrDefault("FIRESTORE_PROJECT_ID", ""),
			APIKey:          util.EnvOrDefault("FIRESTORE_API_KEY", ""),
			Endpoint:        util.EnvOrDefault("FIRESTORE_ENDPOINT", ""),
			CredentialsFile: util.EnvOrDefault("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Mongo: MongoConfig{
			URI:      util.EnvOrDefault("MONGO_URI", ""),
			Database: util.EnvOrDefault("MONGO_DATABASE", "taskmanager"),
		},
	}, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if c.DeleteConcurrency < 0 {
		return fmt.Errorf("delete concurrency must not be negative")
	}
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case BackendMemory:
	case BackendFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore backend requires FIRESTORE_PROJECT_ID")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo backend requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
