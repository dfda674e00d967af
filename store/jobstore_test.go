package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"storycast/types"
)

func newTestStore(t *testing.T) (*JobStore, *FSBlobStore) {
	t.Helper()
	dir := t.TempDir()
	blobs := NewFSBlobStore(filepath.Join(dir, "blobs"))
	return NewJobStore(filepath.Join(dir, "jobs.json"), blobs), blobs
}

func TestFSBlobStore_GetMissing(t *testing.T) {
	_, blobs := newTestStore(t)
	if _, err := blobs.Get(context.Background(), "nope/missing.bin"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestFSBlobStore_PutGetDelete(t *testing.T) {
	_, blobs := newTestStore(t)
	ctx := context.Background()

	if err := blobs.Put(ctx, "j1/mix-1.mp3", []byte("abc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := blobs.Get(ctx, "j1/mix-1.mp3")
	if err != nil || string(data) != "abc" {
		t.Fatalf("get: %q %v", data, err)
	}
	if err := blobs.Delete(ctx, "j1/mix-1.mp3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := blobs.Get(ctx, "j1/mix-1.mp3"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound after delete, got %v", err)
	}
	// Deleting an absent key is not an error.
	if err := blobs.Delete(ctx, "j1/mix-1.mp3"); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestJobStore_CRUD(t *testing.T) {
	jobs, _ := newTestStore(t)

	job := types.Job{ID: "abc", Story: "once upon a time", Status: types.StatusPending}
	if err := jobs.Create(job); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := jobs.Create(job); err == nil {
		t.Fatal("duplicate create must fail")
	}

	got, err := jobs.Get("abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Story != "once upon a time" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", got)
	}

	got.Status = types.StatusScriptReady
	if err := jobs.Update(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := jobs.Get("abc")
	if again.Status != types.StatusScriptReady {
		t.Fatalf("update not persisted: %s", again.Status)
	}
	if !again.UpdatedAt.After(again.CreatedAt) && !again.UpdatedAt.Equal(again.CreatedAt) {
		t.Fatalf("UpdatedAt went backward: %v < %v", again.UpdatedAt, again.CreatedAt)
	}

	list, err := jobs.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %d %v", len(list), err)
	}

	if _, err := jobs.Get("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if err := jobs.Update(types.Job{ID: "missing"}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestJobStore_DeleteRemovesEveryBlob(t *testing.T) {
	jobs, blobs := newTestStore(t)
	ctx := context.Background()

	job := types.Job{
		ID:          "ep1",
		Status:      types.StatusFilesReady,
		MixKey:      "ep1/mix-1.mp3",
		LosslessKey: "ep1/lossless-1.wav",
		CoverKey:    "ep1/cover-1.jpg",
		VideoKey:    "ep1/video-1.mp4",
		Items: []types.ScriptItem{
			{ID: "i1", AudioKey: "ep1/items/i1.mp3"},
			{ID: "i2"}, // never synthesized, no blob
			{ID: "i3", AudioKey: "ep1/items/i3.wav"},
		},
	}
	keys := job.BlobKeys()
	if len(keys) != 6 {
		t.Fatalf("expected 6 referenced blobs, got %d", len(keys))
	}
	for _, k := range keys {
		if err := blobs.Put(ctx, k, []byte("x")); err != nil {
			t.Fatalf("seed blob %s: %v", k, err)
		}
	}
	if err := jobs.Create(job); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := jobs.Delete(ctx, "ep1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, k := range keys {
		if _, err := blobs.Get(ctx, k); !errors.Is(err, ErrBlobNotFound) {
			t.Fatalf("blob %s survived deletion: %v", k, err)
		}
	}
	if _, err := jobs.Get("ep1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("metadata survived deletion: %v", err)
	}
}
