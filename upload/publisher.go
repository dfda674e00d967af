package upload

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"storycast/types"
)

// Progress reports resumable-upload advancement.
type Progress struct {
	BytesSent  int64
	TotalBytes int64
}

// Credential is the publishing credential: an OAuth2 refresh-token triple.
type Credential struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Valid reports whether all three parts are present.
func (c Credential) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Result identifies the published video.
type Result struct {
	RemoteID string
	URL      string
}

// Publisher pushes a finished video to a hosting platform.
type Publisher interface {
	Publish(ctx context.Context, videoData []byte, meta types.EpisodeMetadata, cred Credential, onProgress func(Progress)) (*Result, error)
}

// Settings carries the static upload knobs from config.
type Settings struct {
	Visibility        string
	CategoryID        string
	MadeForKids       bool
	NotifySubscribers bool
	DefaultLanguage   string
	ChunkSizeMB       int
}

// YouTube publishes through the YouTube Data API v3 with a resumable
// chunked media upload.
type YouTube struct {
	settings Settings
}

// NewYouTube creates the publisher.
func NewYouTube(settings Settings) *YouTube {
	return &YouTube{settings: settings}
}

// Publish uploads the video. On failure nothing is retried here; the
// workflow records the error and keeps all produced artifacts.
func (y *YouTube) Publish(ctx context.Context, videoData []byte, meta types.EpisodeMetadata, cred Credential, onProgress func(Progress)) (*Result, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("incomplete publishing credential")
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	svc, err := youtube.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	video := y.buildVideo(meta)

	total := int64(len(videoData))
	log.Printf("[upload] Uploading %q (%.1f MB)", meta.Title, float64(total)/1024/1024)

	chunkSize := y.settings.ChunkSizeMB * 1024 * 1024
	if chunkSize <= 0 {
		chunkSize = googleapi.DefaultUploadChunkSize
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	// NotifySubscribers is an insert parameter, not part of the status
	// resource.
	call.NotifySubscribers(y.settings.NotifySubscribers)
	call.Media(bytes.NewReader(videoData), googleapi.ChunkSize(chunkSize))
	if onProgress != nil {
		call.ProgressUpdater(func(current, _ int64) {
			onProgress(Progress{BytesSent: current, TotalBytes: total})
		})
	}

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w", err)
	}

	res := &Result{
		RemoteID: uploaded.Id,
		URL:      fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	log.Printf("[upload] Uploaded: %s", res.URL)
	return res, nil
}

// buildVideo assembles the upload resource from episode metadata and the
// static settings.
func (y *YouTube) buildVideo(meta types.EpisodeMetadata) *youtube.Video {
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           y.settings.CategoryID,
			DefaultLanguage:      y.settings.DefaultLanguage,
			DefaultAudioLanguage: y.settings.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           y.settings.Visibility,
			SelfDeclaredMadeForKids: y.settings.MadeForKids,
		},
	}
}
