package types

import (
	"errors"
	"testing"
)

func TestStatusCanAdvance(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusScriptReady, true},
		{StatusPending, StatusFilesReady, true}, // forward skips are legal
		{StatusScriptReady, StatusPending, false},
		{StatusFilesReady, StatusGenerating, false},
		{StatusUploaded, StatusUploading, false},
		{StatusUploaded, StatusError, false}, // terminal, even sideways
		{StatusGenerating, StatusError, true},
		{StatusError, StatusGenerating, true}, // retry re-enters the path
		{StatusError, StatusUploaded, true},
		{StatusError, StatusError, false},
		{Status("bogus"), StatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanAdvance(c.to); got != c.want {
			t.Fatalf("CanAdvance(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestAdvanceClearsError(t *testing.T) {
	job := Job{ID: "j", Status: StatusGenerating}
	job = job.Fail(errors.New("synthesis exploded"))
	if job.Status != StatusError || job.Error == "" {
		t.Fatalf("fail did not record error state: %+v", job)
	}

	job, err := job.Advance(StatusGenerating)
	if err != nil {
		t.Fatalf("retry transition: %v", err)
	}
	if job.Error != "" {
		t.Fatalf("error message survived recovery: %q", job.Error)
	}

	if _, err := job.Advance(StatusPending); err == nil {
		t.Fatal("backward transition must be rejected")
	}
}

func TestEffectiveMetadata(t *testing.T) {
	job := Job{
		Suggested: EpisodeMetadata{Title: "AI Title", Description: "AI desc", Tags: []string{"a"}},
	}
	if got := job.EffectiveMetadata(); got.Title != "AI Title" {
		t.Fatalf("without overlay: %+v", got)
	}

	job.Edited = &EpisodeMetadata{Title: "Human Title"}
	got := job.EffectiveMetadata()
	if got.Title != "Human Title" || got.Description != "AI desc" || len(got.Tags) != 1 {
		t.Fatalf("overlay merge: %+v", got)
	}
}
