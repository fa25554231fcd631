package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteEachCollectsEveryOutcome(t *testing.T) {
	boom := errors.New("boom")
	ids := []string{"a", "b", "c", "d", "e"}

	report := DeleteEach(context.Background(), ids, 0, func(_ context.Context, id string) error {
		if id == "b" || id == "d" {
			return boom
		}
		return nil
	})

	require.Len(t, report.Results, len(ids))
	for i, res := range report.Results {
		assert.Equal(t, ids[i], res.ID)
	}
	assert.Equal(t, []string{"a", "c", "e"}, report.Deleted())
	require.Len(t, report.Failed(), 2)
	assert.ErrorIs(t, report.Err(), boom)
}

func TestDeleteEachRespectsLimit(t *testing.T) {
	var running, peak int32
	ids := []string{"1", "2", "3", "4", "5", "6"}

	report := DeleteEach(context.Background(), ids, 2, func(context.Context, string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	assert.Len(t, report.Deleted(), len(ids))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestDeleteEachEmpty(t *testing.T) {
	report := DeleteEach(context.Background(), nil, 0, func(context.Context, string) error {
		t.Fatal("delete called")
		return nil
	})
	assert.Empty(t, report.Results)
	assert.NoError(t, report.Err())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("op", "id", nil))

	err := Wrap("update task", "42", ErrNotFound)
	assert.EqualError(t, err, "update task 42: task not found")
	assert.ErrorIs(t, err, ErrNotFound)

	again := Wrap("other", "", err)
	assert.Same(t, err, again)
}
