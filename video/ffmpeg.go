package video

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegRecorder encodes the frame schedule with the host's ffmpeg through
// the concat demuxer: each still is held for its exact duration while the
// WAV track plays alongside, then both are muxed into one MP4.
type FFmpegRecorder struct{}

// NewFFmpegRecorder creates the production Recorder.
func NewFFmpegRecorder() *FFmpegRecorder {
	return &FFmpegRecorder{}
}

// Record writes the schedule and audio into a scratch dir, runs the encode,
// and returns the finished container. The scratch dir is removed on every
// path; a failed encode returns no artifact.
func (r *FFmpegRecorder) Record(ctx context.Context, frames []Frame, audioWAV []byte, opts Options) ([]byte, error) {
	bitrate, err := opts.Bitrate()
	if err != nil {
		return nil, err
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}

	dir, err := os.MkdirTemp("", "storycast-capture-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	var list strings.Builder
	var lastFrame string
	for i, f := range frames {
		name := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		out, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(out, f.Image); err != nil {
			out.Close()
			return nil, fmt.Errorf("write frame %d: %w", i, err)
		}
		out.Close()
		fmt.Fprintf(&list, "file '%s'\nduration %.3f\n", name, f.Hold.Seconds())
		lastFrame = name
	}
	// The concat demuxer ignores the final duration unless the last file is
	// repeated.
	fmt.Fprintf(&list, "file '%s'\n", lastFrame)

	listPath := filepath.Join(dir, "frames.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return nil, err
	}
	wavPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(wavPath, audioWAV, 0644); err != nil {
		return nil, err
	}

	outPath := filepath.Join(dir, "episode.mp4")
	visuals := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"})
	track := ffmpeg.Input(wavPath)
	err = ffmpeg.Output([]*ffmpeg.Stream{visuals, track}, outPath, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"b:v":      bitrate,
		"r":        fmt.Sprintf("%d", fps),
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      "192k",
		"shortest": "",
	}).OverWriteOutput().Silent(true).Run()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg encode: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, err
	}
	return data, nil
}
