// Package firestore stores tasks as documents in a Cloud Firestore collection.
// Field names match the documents written by the mobile client.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Config holds the connection settings for a Firestore project.
type Config struct {
	ProjectID       string
	APIKey          string
	Endpoint        string
	CredentialsFile string
	Collection      string
	DeleteLimit     int
}

type taskDoc struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	IsChecked   bool      `firestore:"isChecked"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"createdAt"`
	DueDate     string    `firestore:"dueDate"`
}

// Store talks to one Firestore collection.
type Store struct {
	client      *firestore.Client
	collection  string
	deleteLimit int
	logger      *slog.Logger
	now         func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects to Firestore. FIRESTORE_EMULATOR_HOST is honoured by the client.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.Collection == "" {
		cfg.Collection = storage.CollectionName
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}

	logger.Debug("firestore store ready", slog.String("project", cfg.ProjectID), slog.String("collection", cfg.Collection))
	return &Store{
		client:      client,
		collection:  cfg.Collection,
		deleteLimit: cfg.DeleteLimit,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Close releases the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) tasks() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// Create adds a new pending document and returns its generated id.
func (s *Store) Create(ctx context.Context, title, description, dueDate string) (string, error) {
	ref, _, err := s.tasks().Add(ctx, taskDoc{
		Title:       title,
		Description: description,
		IsChecked:   false,
		Status:      string(models.StatusPending),
		CreatedAt:   s.now(),
		DueDate:     dueDate,
	})
	if err != nil {
		return "", storage.Wrap("insert task", "", err)
	}
	return ref.ID, nil
}

// ListAll reads every document in the collection.
func (s *Store) ListAll(ctx context.Context) ([]models.Task, error) {
	iter := s.tasks().Documents(ctx)
	defer iter.Stop()

	tasks := []models.Task{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, storage.Wrap("list tasks", "", err)
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, storage.Wrap("decode task", snap.Ref.ID, err)
		}
		tasks = append(tasks, models.Task{
			ID:          snap.Ref.ID,
			Title:       doc.Title,
			Description: doc.Description,
			DueDate:     doc.DueDate,
			Status:      models.Status(doc.Status),
			IsChecked:   doc.IsChecked,
			CreatedAt:   doc.CreatedAt,
		})
	}
	return tasks, nil
}

// UpdateFields merges the set fields into the document.
func (s *Store) UpdateFields(ctx context.Context, id string, fields models.Fields) error {
	updates := toUpdates(fields)
	if len(updates) == 0 {
		return nil
	}
	if err := fields.Validate(); err != nil {
		return storage.Wrap("update task", id, err)
	}

	_, err := s.tasks().Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return storage.Wrap("update task", id, storage.ErrNotFound)
	}
	return storage.Wrap("update task", id, err)
}

func toUpdates(fields models.Fields) []firestore.Update {
	var updates []firestore.Update
	if fields.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *fields.Title})
	}
	if fields.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *fields.Description})
	}
	if fields.DueDate != nil {
		updates = append(updates, firestore.Update{Path: "dueDate", Value: *fields.DueDate})
	}
	if fields.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*fields.Status)})
	}
	if fields.IsChecked != nil {
		updates = append(updates, firestore.Update{Path: "isChecked", Value: *fields.IsChecked})
	}
	return updates
}

// DeleteOne removes the document. Firestore treats missing documents as deleted.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	if _, err := s.tasks().Doc(id).Delete(ctx); err != nil {
		return storage.Wrap("delete task", id, err)
	}
	return nil
}

// DeleteAll lists the collection and deletes each document concurrently.
func (s *Store) DeleteAll(ctx context.Context) (models.DeleteReport, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return models.DeleteReport{}, err
	}
	report := storage.DeleteEach(ctx, storage.IDs(tasks), s.deleteLimit, s.DeleteOne)
	if failed := report.Failed(); len(failed) > 0 {
		s.logger.Warn("bulk delete incomplete", slog.Int("failed", len(failed)), slog.Int("total", len(report.Results)))
	}
	return report, nil
}
