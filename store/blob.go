package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBlobNotFound is returned by Get for keys with no stored object.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds large binary artifacts (audio, video, cover art),
// addressed by derived keys and kept strictly outside job metadata records.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ArtifactKey derives the key for a generated job output. The timestamp
// keeps re-generated artifacts from silently shadowing the blob an older
// metadata record still references.
func ArtifactKey(jobID, role, ext string) string {
	return fmt.Sprintf("%s/%s-%d.%s", jobID, role, time.Now().UnixMilli(), ext)
}

// ItemAudioKey derives the key for one script item's synthesized audio.
func ItemAudioKey(jobID, itemID, ext string) string {
	return fmt.Sprintf("%s/items/%s.%s", jobID, itemID, ext)
}
