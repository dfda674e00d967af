package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"storycast/types"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// JobStore persists job metadata as one flat JSON list, read whole and
// written whole under a mutex. One logical writer at a time is the design;
// cross-process locking is out of scope. Blobs live in the companion
// BlobStore and are referenced from jobs by key only.
type JobStore struct {
	mu    sync.Mutex
	path  string
	blobs BlobStore
}

// NewJobStore creates a job store writing its metadata list to path and
// deleting blobs through blobs.
func NewJobStore(path string, blobs BlobStore) *JobStore {
	return &JobStore{path: path, blobs: blobs}
}

// Create persists a new job record.
func (s *JobStore) Create(job types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.readAll()
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if j.ID == job.ID {
			return fmt.Errorf("job %s already exists", job.ID)
		}
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	return s.writeAll(append(jobs, job))
}

// Get returns the job with the given id.
func (s *JobStore) Get(id string) (types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.readAll()
	if err != nil {
		return types.Job{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// List returns every job record.
func (s *JobStore) List() ([]types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Update replaces the stored record for job.ID with the given value.
func (s *JobStore) Update(job types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.readAll()
	if err != nil {
		return err
	}
	for i, j := range jobs {
		if j.ID == job.ID {
			job.UpdatedAt = time.Now().UTC()
			jobs[i] = job
			return s.writeAll(jobs)
		}
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
}

// Delete removes the job and every blob it references. Blobs go first: a
// metadata record pointing at missing blobs is recoverable by re-running
// steps, orphaned blobs with no record are not.
func (s *JobStore) Delete(ctx context.Context, id string) error {
	job, err := s.Get(id)
	if err != nil {
		return err
	}
	for _, key := range job.BlobKeys() {
		if err := s.blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete blob %s: %w", key, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	jobs, err := s.readAll()
	if err != nil {
		return err
	}
	kept := jobs[:0]
	for _, j := range jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	return s.writeAll(kept)
}

func (s *JobStore) readAll() ([]types.Job, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var jobs []types.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse job list: %w", err)
	}
	return jobs, nil
}

// writeAll replaces the list atomically: temp file then rename.
func (s *JobStore) writeAll(jobs []types.Job) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
