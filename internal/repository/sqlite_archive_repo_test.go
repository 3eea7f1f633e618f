package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sfinx/internal/domain"
)

func TestSQLiteArchiveSaveAndGet(t *testing.T) {
	repo, err := NewSQLiteArchiveRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	archivedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := domain.ArchivedInterview{
		InterviewID: "int-1",
		Stage:       "coding_session",
		ExitReason:  "scorer-ready",
		Snapshot:    []byte(`{"stage":"coding_session"}`),
		ArchivedAt:  archivedAt,
	}
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "int-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExitReason != "scorer-ready" || got.Stage != "coding_session" {
		t.Fatalf("unexpected archive %+v", got)
	}
	if string(got.Snapshot) != `{"stage":"coding_session"}` {
		t.Fatalf("unexpected snapshot %s", got.Snapshot)
	}
	if !got.ArchivedAt.Equal(archivedAt) {
		t.Fatalf("expected archived_at %v, got %v", archivedAt, got.ArchivedAt)
	}
}

func TestSQLiteArchiveUpsertAndMissing(t *testing.T) {
	repo, err := NewSQLiteArchiveRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	base := domain.ArchivedInterview{InterviewID: "int-2", Stage: "coding_session", Snapshot: []byte(`{}`), ArchivedAt: time.Now()}
	if err := repo.Save(ctx, base); err != nil {
		t.Fatalf("save: %v", err)
	}
	base.Stage = "ended"
	if err := repo.Save(ctx, base); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := repo.Get(ctx, "int-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != "ended" || got.ExitReason != "" {
		t.Fatalf("expected upserted stage ended without exit reason, got %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrArchiveNotFound) {
		t.Fatalf("expected ErrArchiveNotFound, got %v", err)
	}
}
