package audio

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// fakeEncoder emits one tagged chunk per block so concatenation order is
// observable, plus a tail at Flush.
type fakeEncoder struct {
	blocks     []int
	failBlock  int // 1-based; 0 means never fail
	flushError bool
}

func (f *fakeEncoder) EncodeBlock(pcm []int16) ([]byte, error) {
	f.blocks = append(f.blocks, len(pcm))
	if f.failBlock > 0 && len(f.blocks) == f.failBlock {
		return nil, errors.New("encoder exploded")
	}
	return []byte(fmt.Sprintf("<%d:%d>", len(f.blocks), len(pcm))), nil
}

func (f *fakeEncoder) Flush() ([]byte, error) {
	if f.flushError {
		return nil, errors.New("flush exploded")
	}
	return []byte("<tail>"), nil
}

func TestEncodeMP3_BlocksInOrder(t *testing.T) {
	buf := &Buffer{SampleRate: TargetSampleRate, Samples: make([]float64, 2500)}
	enc := &fakeEncoder{}
	factory := func(rate, bitrate int) (BlockEncoder, error) {
		if rate != TargetSampleRate {
			t.Fatalf("factory got rate %d", rate)
		}
		return enc, nil
	}

	out, err := EncodeMP3(buf, factory, 128, 1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "<1:1000><2:1000><3:500><tail>"
	if string(out) != want {
		t.Fatalf("want %q, got %q", want, out)
	}
	if len(enc.blocks) != 3 || enc.blocks[2] != 500 {
		t.Fatalf("unexpected block sizes %v", enc.blocks)
	}
}

func TestEncodeMP3_NoFactory(t *testing.T) {
	buf := &Buffer{SampleRate: TargetSampleRate, Samples: make([]float64, 10)}
	if _, err := EncodeMP3(buf, nil, 128, 1000); !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("expected ErrEncoderUnavailable, got %v", err)
	}
}

func TestEncodeEpisode_FallsBackToLossless(t *testing.T) {
	buf := &Buffer{SampleRate: TargetSampleRate, Samples: []float64{0.5, -0.5, 0.25}}

	failing := func(rate, bitrate int) (BlockEncoder, error) {
		return &fakeEncoder{failBlock: 1}, nil
	}
	data, format := EncodeEpisode(buf, failing, 128, 1000)
	if format != "wav" {
		t.Fatalf("want wav fallback, got %q", format)
	}
	if !bytes.Equal(data, EncodeWAV(buf)) {
		t.Fatal("fallback bytes differ from the lossless encoding")
	}

	data, format = EncodeEpisode(buf, nil, 128, 1000)
	if format != "wav" || !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("unavailable encoder must fall back to wav, got %q", format)
	}
}

func TestEncodeEpisode_UsesEncoderWhenHealthy(t *testing.T) {
	buf := &Buffer{SampleRate: TargetSampleRate, Samples: []float64{0.5, -0.5}}
	factory := func(rate, bitrate int) (BlockEncoder, error) {
		return &fakeEncoder{}, nil
	}
	_, format := EncodeEpisode(buf, factory, 128, 1000)
	if format != "mp3" {
		t.Fatalf("want mp3, got %q", format)
	}
}
