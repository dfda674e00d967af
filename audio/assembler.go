package audio

import (
	"errors"
	"fmt"
	"math"

	"github.com/faiface/beep"
)

// TargetSampleRate is the canonical episode sample rate. Every clip is
// normalized to it inside Merge; callers never pre-resample.
const TargetSampleRate = 44100

// resampleQuality trades CPU for interpolation accuracy in beep's resampler.
const resampleQuality = 4

// ErrNoClips is returned when Merge is asked to assemble an empty timeline.
var ErrNoClips = errors.New("no clips to merge")

// Merge concatenates clips back-to-back into one mono buffer at
// TargetSampleRate. Placement is duration-based: each clip starts at the
// running sum of the durations of the clips before it, so per-clip rounding
// never compounds across a long episode. Merge is a pure function; on error
// no partial buffer is returned.
func Merge(clips []*Clip) (*Buffer, error) {
	if len(clips) == 0 {
		return nil, ErrNoClips
	}

	var totalSeconds float64
	for _, c := range clips {
		totalSeconds += c.Seconds()
	}
	dst := make([]float64, int(math.Ceil(totalSeconds*TargetSampleRate)))

	var offsetSeconds float64
	for _, c := range clips {
		if len(c.Samples) == 0 {
			continue
		}
		rendered, err := renderAt(c, TargetSampleRate)
		if err != nil {
			return nil, fmt.Errorf("render clip %d (%s): %w", c.Index, c.ItemID, err)
		}
		start := int(math.Round(offsetSeconds * TargetSampleRate))
		for i, s := range rendered {
			if start+i >= len(dst) {
				break
			}
			dst[start+i] = s
		}
		offsetSeconds += c.Seconds()
	}

	return &Buffer{SampleRate: TargetSampleRate, Samples: dst}, nil
}

// renderAt returns the clip's samples at the given rate, resampling when the
// source rate differs. Rendering is offline and deterministic.
func renderAt(c *Clip, rate int) ([]float64, error) {
	if c.SampleRate == rate {
		out := make([]float64, len(c.Samples))
		copy(out, c.Samples)
		return out, nil
	}
	if c.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	src := &clipStreamer{samples: c.Samples}
	res := beep.Resample(resampleQuality, beep.SampleRate(c.SampleRate), beep.SampleRate(rate), src)
	return drainMono(res)
}

// clipStreamer adapts a mono sample slice to beep.Streamer, duplicating the
// signal on both channels so the resampler treats it symmetrically.
type clipStreamer struct {
	samples []float64
	pos     int
}

func (cs *clipStreamer) Stream(out [][2]float64) (int, bool) {
	if cs.pos >= len(cs.samples) {
		return 0, false
	}
	n := 0
	for i := range out {
		if cs.pos >= len(cs.samples) {
			break
		}
		v := cs.samples[cs.pos]
		out[i][0] = v
		out[i][1] = v
		cs.pos++
		n++
	}
	return n, true
}

func (cs *clipStreamer) Err() error { return nil }
