package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/registry-client/internal/store"
	"github.com/serroba/registry-client/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSubmission(id submission.ID) *submission.Submission {
	now := time.Now()

	return &submission.Submission{
		ID:        id,
		DocID:     "doc-" + string(id),
		Status:    submission.StatusPending,
		ClientIP:  "127.0.0.1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_Save(t *testing.T) {
	t.Run("saves and reads back a submission", func(t *testing.T) {
		s := store.NewMemoryStore()

		err := s.Save(context.Background(), pendingSubmission("abc123"))
		require.NoError(t, err)

		got, err := s.GetByID(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, "doc-abc123", got.DocID)
		assert.Equal(t, submission.StatusPending, got.Status)
	})

	t.Run("keeps the first save for an id", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Save(context.Background(), pendingSubmission("abc123"))

		second := pendingSubmission("abc123")
		second.DocID = "other"

		require.NoError(t, s.Save(context.Background(), second))

		got, _ := s.GetByID(context.Background(), "abc123")
		assert.Equal(t, "doc-abc123", got.DocID)
	})

	t.Run("returned copies do not alias the store", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Save(context.Background(), pendingSubmission("abc123"))

		got, _ := s.GetByID(context.Background(), "abc123")
		got.Status = submission.StatusAccepted

		again, _ := s.GetByID(context.Background(), "abc123")
		assert.Equal(t, submission.StatusPending, again.Status)
	})
}

func TestMemoryStore_GetByID(t *testing.T) {
	t.Run("returns ErrNotFound when id does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		got, err := s.GetByID(context.Background(), "notfound")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, submission.ErrNotFound)
	})
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	t.Run("records the outcome", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Save(context.Background(), pendingSubmission("abc123"))

		err := s.UpdateStatus(context.Background(), "abc123", submission.Outcome{
			Status:     submission.StatusAccepted,
			RegistryID: "reg-1",
		})
		require.NoError(t, err)

		got, _ := s.GetByID(context.Background(), "abc123")
		assert.Equal(t, submission.StatusAccepted, got.Status)
		assert.Equal(t, "reg-1", got.RegistryID)
		assert.Empty(t, got.Error)
	})

	t.Run("returns ErrNotFound for unknown ids", func(t *testing.T) {
		s := store.NewMemoryStore()

		err := s.UpdateStatus(context.Background(), "missing", submission.Outcome{Status: submission.StatusFailed})

		assert.ErrorIs(t, err, submission.ErrNotFound)
	})
}
