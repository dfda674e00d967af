package video

import (
	"errors"
	"fmt"
	"image"
	"time"

	"storycast/audio"
)

// Segment pairs one audio clip with the still image shown while it plays.
// ImageData may be nil when a fallback cover is supplied to Render.
type Segment struct {
	Clip      *audio.Clip
	ImageData []byte
}

var (
	// ErrNoSegments is returned when Render is given an empty sequence.
	ErrNoSegments = errors.New("no segments to render")
	// ErrMissingVisual is returned when a segment has no image and no
	// fallback was supplied.
	ErrMissingVisual = errors.New("segment has no image and no fallback")
)

// Options selects a resolution preset and a quality preset. Bitrate tiers
// are independent of resolution: predictable output size is preferred over
// rate-distortion tuning.
type Options struct {
	Resolution string // 360p | 720p | 1080p
	Quality    string // low | medium | high
	FPS        int
	// TrailingHold keeps the last frame up after the final segment so the
	// audio tail is not truncated.
	TrailingHold time.Duration
}

var resolutions = map[string][2]int{
	"360p":  {640, 360},
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
}

var bitrates = map[string]string{
	"low":    "1000k",
	"medium": "2500k",
	"high":   "5000k",
}

// Dimensions resolves the pixel size of the resolution preset.
func (o Options) Dimensions() (w, h int, err error) {
	d, ok := resolutions[o.Resolution]
	if !ok {
		return 0, 0, fmt.Errorf("unknown resolution preset %q", o.Resolution)
	}
	return d[0], d[1], nil
}

// Bitrate resolves the target video bitrate of the quality preset.
func (o Options) Bitrate() (string, error) {
	b, ok := bitrates[o.Quality]
	if !ok {
		return "", fmt.Errorf("unknown quality preset %q", o.Quality)
	}
	return b, nil
}

// Frame is one entry of the capture schedule: a composed raster held for an
// exact duration. The schedule is plain data so tests can assert timing
// without any wall clock.
type Frame struct {
	Image *image.RGBA
	Hold  time.Duration
}
