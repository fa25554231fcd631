// Package mongo stores tasks in a MongoDB collection using the same document
// shape as the firestore backend.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Config holds the connection settings for a MongoDB deployment.
type Config struct {
	URI         string
	Database    string
	Collection  string
	DeleteLimit int
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	IsChecked   bool               `bson:"isChecked"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	DueDate     string             `bson:"dueDate"`
}

// Store talks to one MongoDB collection.
type Store struct {
	client      *mongo.Client
	coll        *mongo.Collection
	deleteLimit int
	logger      *slog.Logger
	now         func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects to MongoDB and verifies the deployment is reachable.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.Collection == "" {
		cfg.Collection = storage.CollectionName
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("open mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Debug("mongo store ready", slog.String("database", cfg.Database), slog.String("collection", cfg.Collection))
	return &Store{
		client:      client,
		coll:        client.Database(cfg.Database).Collection(cfg.Collection),
		deleteLimit: cfg.DeleteLimit,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Create inserts a new pending document.
func (s *Store) Create(ctx context.Context, title, description, dueDate string) (string, error) {
	res, err := s.coll.InsertOne(ctx, taskDoc{
		Title:       title,
		Description: description,
		IsChecked:   false,
		Status:      string(models.StatusPending),
		// BSON dates carry millisecond precision.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		DueDate:   dueDate,
	})
	if err != nil {
		return "", storage.Wrap("insert task", "", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", storage.Wrap("insert task", "", fmt.Errorf("unexpected id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// ListAll returns every document in natural order.
func (s *Store) ListAll(ctx context.Context) ([]models.Task, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storage.Wrap("list tasks", "", err)
	}

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("list tasks", "", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, models.Task{
			ID:          d.ID.Hex(),
			Title:       d.Title,
			Description: d.Description,
			DueDate:     d.DueDate,
			Status:      models.Status(d.Status),
			IsChecked:   d.IsChecked,
			CreatedAt:   d.CreatedAt,
		})
	}
	return tasks, nil
}

// UpdateFields applies a $set with the given fields.
func (s *Store) UpdateFields(ctx context.Context, id string, fields models.Fields) error {
	set := toSet(fields)
	if len(set) == 0 {
		return nil
	}
	if err := fields.Validate(); err != nil {
		return storage.Wrap("update task", id, err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.Wrap("update task", id, storage.ErrNotFound)
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return storage.Wrap("update task", id, err)
	}
	if res.MatchedCount == 0 {
		return storage.Wrap("update task", id, storage.ErrNotFound)
	}
	return nil
}

func toSet(fields models.Fields) bson.M {
	set := bson.M{}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.DueDate != nil {
		set["dueDate"] = *fields.DueDate
	}
	if fields.Status != nil {
		set["status"] = string(*fields.Status)
	}
	if fields.IsChecked != nil {
		set["isChecked"] = *fields.IsChecked
	}
	return set
}

// DeleteOne removes the document. Ids that cannot exist are ignored.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
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
