package video

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"storycast/audio"
)

// Recorder owns the actual capture: it receives the complete frame schedule
// plus the episode audio (a lossless WAV) and muxes both into one video
// container. Implementations must release whatever they acquire on both
// success and failure, and must not return a partial artifact.
type Recorder interface {
	Record(ctx context.Context, frames []Frame, audioWAV []byte, opts Options) ([]byte, error)
}

// Renderer produces a slideshow video: each segment's image held for
// exactly that segment's audio duration, audio and image tracks in
// lockstep. The renderer itself only builds the deterministic schedule; the
// Recorder does the encoding.
type Renderer struct {
	rec Recorder
}

// NewRenderer creates a Renderer on top of the given Recorder.
func NewRenderer(rec Recorder) *Renderer {
	return &Renderer{rec: rec}
}

// Render builds and captures the slideshow. A segment without an image uses
// the fallback; no image and no fallback aborts before any capture work.
func (r *Renderer) Render(ctx context.Context, segments []Segment, fallback []byte, opts Options) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	w, h, err := opts.Dimensions()
	if err != nil {
		return nil, err
	}
	if _, err := opts.Bitrate(); err != nil {
		return nil, err
	}

	// Resolve every visual up front: decode failures must surface before
	// capture starts, not waste a capture mid-flight.
	var fallbackImg image.Image
	if len(fallback) > 0 {
		fallbackImg, err = decodeImage(fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback image: %w", err)
		}
	}
	rasters := make([]image.Image, len(segments))
	for i, seg := range segments {
		switch {
		case len(seg.ImageData) > 0:
			img, err := decodeImage(seg.ImageData)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			rasters[i] = img
		case fallbackImg != nil:
			rasters[i] = fallbackImg
		default:
			return nil, fmt.Errorf("segment %d: %w", i, ErrMissingVisual)
		}
	}

	// The audio track is the segments' clips concatenated back-to-back,
	// same math as the episode mixdown.
	clips := make([]*audio.Clip, len(segments))
	for i, seg := range segments {
		clips[i] = seg.Clip
	}
	merged, err := audio.Merge(clips)
	if err != nil {
		return nil, fmt.Errorf("merge segment audio: %w", err)
	}

	frames := make([]Frame, len(segments))
	for i, seg := range segments {
		hold := seg.Clip.Duration()
		if i == len(segments)-1 {
			hold += opts.TrailingHold
		}
		frames[i] = Frame{Image: compose(rasters[i], w, h), Hold: hold}
	}

	log.Printf("[video] Capturing %d segments at %dx%d (%s), %.1fs total",
		len(segments), w, h, opts.Quality, totalHold(frames).Seconds())

	out, err := r.rec.Record(ctx, frames, audio.EncodeWAV(merged), opts)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return out, nil
}

func totalHold(frames []Frame) time.Duration {
	var d time.Duration
	for _, f := range frames {
		d += f.Hold
	}
	return d
}
