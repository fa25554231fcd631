package cli

import (
	"context"
	"fmt"
	"log/slog"

	"taskmanager/internal/config"
	"taskmanager/internal/storage"
	"taskmanager/internal/storage/firestore"
	"taskmanager/internal/storage/memory"
	"taskmanager/internal/storage/mongo"
	"taskmanager/internal/storage/sqlite"
)

// openStore connects the backend selected in cfg.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		s.SetDeleteLimit(cfg.DeleteConcurrency)
		return s, nil
	case config.BackendMemory:
		return memory.New(memory.WithDeleteLimit(cfg.DeleteConcurrency)), nil
	case config.BackendFirestore:
		return firestore.Open(ctx, firestore.Config{
			ProjectID:       cfg.Firestore.ProjectID,
			APIKey:          cfg.Firestore.APIKey,
			Endpoint:        cfg.Firestore.Endpoint,
			CredentialsFile: cfg.Firestore.CredentialsFile,
			Collection:      cfg.Collection,
			DeleteLimit:     cfg.DeleteConcurrency,
		}, logger)
	case config.BackendMongo:
		return mongo.Open(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			Collection:  cfg.Collection,
			DeleteLimit: cfg.DeleteConcurrency,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
