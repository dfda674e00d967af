package types

import "time"

// ItemType distinguishes spoken lines from sound-effect cues.
type ItemType string

const (
	ItemSpeech ItemType = "speech"
	ItemSFX    ItemType = "sfx"
)

// Character is one cast member with a resolved voice assignment. The voice
// provider is resolved once when the script is accepted and never
// re-resolved later.
type Character struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	VoiceProvider string `json:"voice_provider"`
	VoiceID       string `json:"voice_id"`
}

// Scene groups script items by location for the reader's benefit.
type Scene struct {
	Index       int    `json:"index"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ScriptItem is one line of dialogue or one sound-effect cue. Once its audio
// is persisted, AudioKey references the blob; the decoded buffer itself is
// never stored on the item.
type ScriptItem struct {
	ID          string   `json:"id"`
	Index       int      `json:"index"`
	Type        ItemType `json:"type"`
	Character   string   `json:"character,omitempty"`
	Text        string   `json:"text,omitempty"`
	Expression  string   `json:"expression,omitempty"`
	SFXPrompt   string   `json:"sfx_prompt,omitempty"`
	SFXSeconds  float64  `json:"sfx_seconds,omitempty"`
	Location    string   `json:"location"`
	AudioKey    string   `json:"audio_key,omitempty"`
	LastFailure string   `json:"last_failure,omitempty"`
}

// EpisodeMetadata is the publishable title/description/tags set.
type EpisodeMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Script is what the script-generation collaborator returns for a story.
type Script struct {
	Cast     []Character     `json:"cast"`
	Scenes   []Scene         `json:"scenes"`
	Items    []ScriptItem    `json:"items"`
	Metadata EpisodeMetadata `json:"metadata"`
}

// Job is the unit of end-to-end workflow state for one episode. Workflow
// steps build a new Job value through Advance/Fail and field assignment on a
// copy; nothing patches a stored job in place.
type Job struct {
	ID        string    `json:"id"`
	Story     string    `json:"story"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cast   []Character  `json:"cast,omitempty"`
	Scenes []Scene      `json:"scenes,omitempty"`
	Items  []ScriptItem `json:"items,omitempty"`

	// Suggested comes from the script generator; Edited is the optional
	// human overlay and wins wherever a field is set.
	Suggested EpisodeMetadata  `json:"suggested_metadata"`
	Edited    *EpisodeMetadata `json:"edited_metadata,omitempty"`

	// Blob references. Keys only, never inline bytes.
	MixKey      string `json:"mix_key,omitempty"`
	MixFormat   string `json:"mix_format,omitempty"` // "mp3", or "wav" after encoder fallback
	LosslessKey string `json:"lossless_key,omitempty"`
	CoverKey    string `json:"cover_key,omitempty"`
	VideoKey    string `json:"video_key,omitempty"`

	RemoteID  string `json:"remote_id,omitempty"`
	RemoteURL string `json:"remote_url,omitempty"`
}

// EffectiveMetadata merges the human-edited overlay over the AI suggestion,
// field by field.
func (j Job) EffectiveMetadata() EpisodeMetadata {
	meta := j.Suggested
	if j.Edited == nil {
		return meta
	}
	if j.Edited.Title != "" {
		meta.Title = j.Edited.Title
	}
	if j.Edited.Description != "" {
		meta.Description = j.Edited.Description
	}
	if len(j.Edited.Tags) > 0 {
		meta.Tags = j.Edited.Tags
	}
	return meta
}

// BlobKeys returns every blob key the job references. Deleting the job must
// delete all of these; an orphaned blob is a bug, not a tradeoff.
func (j Job) BlobKeys() []string {
	var keys []string
	for _, k := range []string{j.MixKey, j.LosslessKey, j.CoverKey, j.VideoKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	for _, item := range j.Items {
		if item.AudioKey != "" {
			keys = append(keys, item.AudioKey)
		}
	}
	return keys
}
