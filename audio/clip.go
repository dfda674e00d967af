package audio

import "time"

// Clip is one decoded audio segment for one script item: mono float64
// samples in [-1, 1] at the clip's source sample rate. Clips are immutable
// once created; the workflow owns them until they are merged.
type Clip struct {
	ItemID     string
	Index      int
	SampleRate int
	Samples    []float64
}

// Seconds returns the clip duration in seconds.
func (c *Clip) Seconds() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Duration returns the clip duration as a time.Duration.
func (c *Clip) Duration() time.Duration {
	return time.Duration(c.Seconds() * float64(time.Second))
}

// Buffer is the merged continuous episode signal at the canonical sample
// rate, mono.
type Buffer struct {
	SampleRate int
	Samples    []float64
}

// Seconds returns the buffer duration in seconds.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Duration returns the buffer duration as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}
