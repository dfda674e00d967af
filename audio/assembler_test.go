package audio

import (
	"errors"
	"math"
	"testing"
)

func constClip(value float64, samples, rate int) *Clip {
	s := make([]float64, samples)
	for i := range s {
		s[i] = value
	}
	return &Clip{SampleRate: rate, Samples: s}
}

func TestMerge_EmptyInput(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrNoClips) {
		t.Fatalf("expected ErrNoClips, got %v", err)
	}
}

func TestMerge_ConcatenatesInOrder(t *testing.T) {
	a := constClip(0.25, 1000, TargetSampleRate)
	b := constClip(-0.5, 500, TargetSampleRate)

	merged, err := Merge([]*Clip{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged.Samples) != 1500 {
		t.Fatalf("expected 1500 samples, got %d", len(merged.Samples))
	}
	for i := 0; i < 1000; i++ {
		if merged.Samples[i] != 0.25 {
			t.Fatalf("sample %d: want 0.25, got %v", i, merged.Samples[i])
		}
	}
	for i := 1000; i < 1500; i++ {
		if merged.Samples[i] != -0.5 {
			t.Fatalf("sample %d: want -0.5, got %v", i, merged.Samples[i])
		}
	}
}

func TestMerge_DurationAdditivity(t *testing.T) {
	clips := []*Clip{
		constClip(0.1, 2205, 22050), // 0.1s at half rate
		constClip(0.2, 4410, TargetSampleRate), // 0.1s
		constClip(0.3, 13230, 44100), // 0.3s
	}
	var want float64
	for _, c := range clips {
		want += c.Seconds()
	}

	merged, err := Merge(clips)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	tolerance := 1.0 / TargetSampleRate
	if diff := math.Abs(merged.Seconds() - want); diff > tolerance {
		t.Fatalf("duration drift %v exceeds one sample period (want %v, got %v)", diff, want, merged.Seconds())
	}
}

func TestMerge_ZeroDurationClipDoesNotShiftOffsets(t *testing.T) {
	a := constClip(0.5, 441, TargetSampleRate)
	empty := &Clip{SampleRate: TargetSampleRate}
	b := constClip(-0.25, 441, TargetSampleRate)

	merged, err := Merge([]*Clip{a, empty, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Samples[440] != 0.5 {
		t.Fatalf("end of first clip: want 0.5, got %v", merged.Samples[440])
	}
	if merged.Samples[441] != -0.25 {
		t.Fatalf("start of second clip: want -0.25, got %v", merged.Samples[441])
	}
}

func TestMerge_ResamplesMixedRates(t *testing.T) {
	// 0.1s of 0.5 at half the target rate followed by 0.1s of -0.5 at the
	// target rate. Segment interiors must hold their value after
	// resampling; edges are allowed interpolation wiggle.
	a := constClip(0.5, 2205, 22050)
	b := constClip(-0.5, 4410, TargetSampleRate)

	merged, err := Merge([]*Clip{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	mid := 2205 // middle of the first segment after resampling to 44.1k
	if math.Abs(merged.Samples[mid]-0.5) > 0.01 {
		t.Fatalf("resampled interior: want ~0.5, got %v", merged.Samples[mid])
	}
	mid = 4410 + 2205
	if math.Abs(merged.Samples[mid]+0.5) > 0.01 {
		t.Fatalf("second segment interior: want ~-0.5, got %v", merged.Samples[mid])
	}
}
