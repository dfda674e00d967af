package audio

import (
	"errors"
	"fmt"
	"log"
)

// BlockEncoder is a perceptual encoder consumed in fixed-size PCM blocks.
// Implementations may buffer internally and emit bytes on any call; Flush
// drains whatever remains. Emitted chunks concatenated in call order form
// the complete container.
type BlockEncoder interface {
	EncodeBlock(pcm []int16) ([]byte, error)
	Flush() ([]byte, error)
}

// EncoderFactory opens a BlockEncoder for the given stream parameters.
type EncoderFactory func(sampleRate, bitrateKbps int) (BlockEncoder, error)

// ErrEncoderUnavailable signals that no perceptual encoder can be opened on
// this host.
var ErrEncoderUnavailable = errors.New("mp3 encoder unavailable")

// EncodeMP3 quantizes the buffer to 16-bit PCM (same scaling as the
// lossless path) and feeds it to the encoder in blocks of blockSamples.
func EncodeMP3(buf *Buffer, factory EncoderFactory, bitrateKbps, blockSamples int) ([]byte, error) {
	if factory == nil {
		return nil, ErrEncoderUnavailable
	}
	enc, err := factory(buf.SampleRate, bitrateKbps)
	if err != nil {
		return nil, fmt.Errorf("open encoder: %w", err)
	}

	pcm := make([]int16, len(buf.Samples))
	for i, s := range buf.Samples {
		pcm[i] = Quantize(s)
	}

	var out []byte
	for start := 0; start < len(pcm); start += blockSamples {
		end := start + blockSamples
		if end > len(pcm) {
			end = len(pcm)
		}
		chunk, err := enc.EncodeBlock(pcm[start:end])
		if err != nil {
			return nil, fmt.Errorf("encode block at %d: %w", start, err)
		}
		out = append(out, chunk...)
	}
	tail, err := enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("flush encoder: %w", err)
	}
	return append(out, tail...), nil
}

// EncodeEpisode produces the distributable episode audio. Compression is
// best effort: when the MP3 encoder fails or is unavailable the lossless
// container is returned instead and the format marks the switch. This never
// fails for a well-formed buffer.
func EncodeEpisode(buf *Buffer, factory EncoderFactory, bitrateKbps, blockSamples int) (data []byte, format string) {
	mp3Data, err := EncodeMP3(buf, factory, bitrateKbps, blockSamples)
	if err != nil {
		log.Printf("[audio] MP3 encode failed, falling back to WAV: %v", err)
		return EncodeWAV(buf), "wav"
	}
	return mp3Data, "mp3"
}
