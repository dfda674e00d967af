package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// Format identifies the container a synthesis provider returned. Providers
// must declare their output format so we pick the right decoder.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// Decode turns raw provider bytes into a mono Clip at the source sample
// rate. Stereo sources are downmixed by averaging the channels.
func Decode(data []byte, format Format) (*Clip, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode %s: empty input", format)
	}

	var (
		stream beep.StreamSeekCloser
		f      beep.Format
		err    error
	)
	rc := io.NopCloser(bytes.NewReader(data))
	switch format {
	case FormatMP3:
		stream, f, err = mp3.Decode(rc)
	case FormatWAV:
		stream, f, err = wav.Decode(rc)
	default:
		return nil, fmt.Errorf("decode: unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	defer stream.Close()

	samples, err := drainMono(stream)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &Clip{SampleRate: int(f.SampleRate), Samples: samples}, nil
}

// drainMono reads a streamer to exhaustion and downmixes to mono.
func drainMono(s beep.Streamer) ([]float64, error) {
	var mono []float64
	chunk := make([][2]float64, 512)
	for {
		n, ok := s.Stream(chunk)
		for i := 0; i < n; i++ {
			mono = append(mono, (chunk[i][0]+chunk[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return mono, nil
}
