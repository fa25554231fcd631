// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Store

// Run exercises the store contract against fresh stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create defaults", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		before := time.Now().Add(-time.Millisecond)
		id, err := s.Create(ctx, "Buy milk", "", "2024-06-01")
		require.NoError(t, err)
		require.NotEmpty(t, id)

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)

		got := tasks[0]
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, "", got.Description)
		assert.Equal(t, "2024-06-01", got.DueDate)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.False(t, got.IsChecked)
		assert.False(t, got.CreatedAt.Before(before), "createdAt %s before %s", got.CreatedAt, before)
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			id, err := s.Create(ctx, "task", "", "2024-01-01")
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("update merges fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, "Draft", "first", "2024-01-01")
		require.NoError(t, err)

		title := "Final"
		completed := models.StatusCompleted
		checked := true
		require.NoError(t, s.UpdateFields(ctx, id, models.Fields{Title: &title, Status: &completed, IsChecked: &checked}))

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Final", tasks[0].Title)
		assert.Equal(t, "first", tasks[0].Description)
		assert.Equal(t, "2024-01-01", tasks[0].DueDate)
		assert.Equal(t, models.StatusCompleted, tasks[0].Status)
		assert.True(t, tasks[0].IsChecked)
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		err := s.UpdateFields(context.Background(), missingID(t, s), models.Fields{Title: &title})
		require.Error(t, err)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		var se *storage.StoreError
		assert.True(t, errors.As(err, &se))
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, "Untouched", "notes", "2024-01-01")
		require.NoError(t, err)

		require.NoError(t, s.UpdateFields(ctx, id, models.Fields{}))
		require.NoError(t, s.UpdateFields(ctx, missingID(t, s), models.Fields{}))

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Untouched", tasks[0].Title)
		assert.Equal(t, models.StatusPending, tasks[0].Status)
	})

	t.Run("update rejects unknown status", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, "Laundry", "", "2024-01-01")
		require.NoError(t, err)

		bogus := models.Status("Archived")
		err = s.UpdateFields(ctx, id, models.Fields{Status: &bogus})
		assert.True(t, models.IsValidation(err), "got %v", err)

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, models.StatusPending, tasks[0].Status)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		keep, err := s.Create(ctx, "keep", "", "2024-01-01")
		require.NoError(t, err)
		drop, err := s.Create(ctx, "drop", "", "2024-01-02")
		require.NoError(t, err)

		require.NoError(t, s.DeleteOne(ctx, drop))
		require.NoError(t, s.DeleteOne(ctx, drop))

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, keep, tasks[0].ID)
	})

	t.Run("delete all", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"a", "b", "c"} {
			id, err := s.Create(ctx, title, "", "2024-01-01")
			require.NoError(t, err)
			ids = append(ids, id)
		}

		report, err := s.DeleteAll(ctx)
		require.NoError(t, err)
		assert.NoError(t, report.Err())
		assert.ElementsMatch(t, ids, report.Deleted())

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("delete all on empty collection", func(t *testing.T) {
		s := newStore(t)
		report, err := s.DeleteAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, report.Results)
	})
}

// missingID returns an id that looks valid for the backend but is not stored.
func missingID(t *testing.T, s storage.Store) string {
	t.Helper()
	ctx := context.Background()
	id, err := s.Create(ctx, "ghost", "", "2024-01-01")
	require.NoError(t, err)
	require.NoError(t, s.DeleteOne(ctx, id))
	return id
}
