package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"storycast/audio"
	"storycast/config"
	"storycast/cover"
	"storycast/script"
	"storycast/sfx"
	"storycast/store"
	"storycast/types"
	"storycast/upload"
	"storycast/video"
	"storycast/voice"
)

// Deps collects the collaborators a Runner drives. Everything is an
// interface or small value so tests can swap in fakes.
type Deps struct {
	Config    *config.Config
	Jobs      *store.JobStore
	Blobs     store.BlobStore
	Scripts   script.Generator
	Voices    *voice.Registry
	Effects   sfx.Synthesizer
	Art       cover.Generator
	Renderer  *video.Renderer
	Encoder   audio.EncoderFactory
	Publisher upload.Publisher
}

// Runner executes workflow steps over jobs. Each step persists its output
// before advancing, isolates failures per the step's scope, and never
// retries on its own.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// CreateJob registers a new pending job for the given story text.
func (r *Runner) CreateJob(story string) (types.Job, error) {
	if story == "" {
		return types.Job{}, fmt.Errorf("story text is empty")
	}
	job := types.Job{
		ID:     uuid.NewString()[:8],
		Story:  story,
		Status: types.StatusPending,
	}
	if err := r.deps.Jobs.Create(job); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// GenerateScript runs pending -> script_ready: asks the script collaborator
// for cast/scenes/items/metadata and resolves cast voice assignments once,
// deterministically, at this transition. A job that already carries a script
// is left untouched; regeneration only happens as a retry out of the error
// state.
func (r *Runner) GenerateScript(ctx context.Context, jobID string) (types.Job, error) {
	job, err := r.deps.Jobs.Get(jobID)
	if err != nil {
		return types.Job{}, err
	}
	if len(job.Items) > 0 && job.Status != types.StatusPending && job.Status != types.StatusError {
		log.Printf("[workflow] Job %s already has a script, nothing to do", jobID)
		return job, nil
	}

	opts := script.Options{
		TargetMinutes:  r.deps.Config.Script.TargetMinutes,
		MaxCastMembers: r.deps.Config.Script.MaxCastMembers,
	}
	generated, err := r.deps.Scripts.Generate(ctx, job.Story, opts)
	if err != nil {
		return r.fail(job, fmt.Errorf("generate script: %w", err))
	}

	job.Cast = r.resolveVoices(ctx, generated.Cast)
	job.Scenes = generated.Scenes
	job.Items = generated.Items
	job.Suggested = generated.Metadata

	job, err = job.Advance(types.StatusScriptReady)
	if err != nil {
		return types.Job{}, err
	}
	if err := r.deps.Jobs.Update(job); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// resolveVoices fills in missing provider/voice assignments from the chosen
// provider's voice list, round-robin by cast position. A cast member that
// arrives with an assignment keeps it untouched.
func (r *Runner) resolveVoices(ctx context.Context, cast []types.Character) []types.Character {
	provider, err := r.pickVoiceProvider()
	if err != nil {
		log.Printf("[workflow] Voice resolution skipped: %v", err)
		return cast
	}
	voices, err := provider.ListVoices(ctx)
	if err != nil || len(voices) == 0 {
		log.Printf("[workflow] Could not list voices for %s: %v", provider.Name(), err)
		return cast
	}
	for i := range cast {
		if cast[i].VoiceProvider != "" {
			continue
		}
		cast[i].VoiceProvider = provider.Name()
		cast[i].VoiceID = voices[i%len(voices)].ID
	}
	return cast
}

// pickVoiceProvider honors pipeline.default_voice_provider when that
// provider is registered and configured, otherwise falls back to the first
// configured provider in name order.
func (r *Runner) pickVoiceProvider() (voice.Provider, error) {
	if name := r.deps.Config.Pipeline.DefaultVoices; name != "" {
		p, err := r.deps.Voices.Get(name)
		if err == nil && p.Configured() {
			return p, nil
		}
		log.Printf("[workflow] Preferred voice provider %q unavailable, falling back", name)
	}
	return r.deps.Voices.DefaultConfigured()
}

// FilesResult summarizes one GenerateFiles invocation.
type FilesResult struct {
	Job         types.Job
	Synthesized int
	Skipped     int
	Failed      int
	NoOp        bool
}

// GenerateFiles runs script_ready -> generating -> files_ready: per-item
// audio, mixdown, container encoding, cover art, and the slideshow video.
// Items already holding an audio key are never re-synthesized, so the same
// entry point serves both "generate all" and "fill missing audio"; a fully
// complete job is reported as a no-op.
func (r *Runner) GenerateFiles(ctx context.Context, jobID string) (FilesResult, error) {
	job, err := r.deps.Jobs.Get(jobID)
	if err != nil {
		return FilesResult{}, err
	}
	if len(job.Items) == 0 {
		return FilesResult{}, fmt.Errorf("job %s has no script items", jobID)
	}

	if r.complete(job) {
		log.Printf("[workflow] Job %s already has all artifacts, nothing to do", jobID)
		return FilesResult{Job: job, NoOp: true}, nil
	}

	if job.Status.CanAdvance(types.StatusGenerating) {
		if job, err = r.advance(job, types.StatusGenerating); err != nil {
			return FilesResult{}, err
		}
	}

	res := FilesResult{}
	job, res = r.synthesizeItems(ctx, job, res)

	job, err = r.assembleEpisode(ctx, job)
	if err != nil {
		res.Job, _ = r.fail(job, err)
		return res, err
	}

	job = r.generateCover(ctx, job)

	job, err = r.renderVideo(ctx, job)
	if err != nil {
		res.Job, _ = r.fail(job, err)
		return res, err
	}

	if job.Status != types.StatusFilesReady {
		if job, err = r.advance(job, types.StatusFilesReady); err != nil {
			return FilesResult{}, err
		}
	}
	res.Job = job
	return res, nil
}

// complete reports whether every artifact the files step can produce
// already exists on the job.
func (r *Runner) complete(job types.Job) bool {
	for _, item := range job.Items {
		if item.AudioKey == "" && !r.skippableSFX(item) {
			return false
		}
	}
	if job.MixKey == "" || job.LosslessKey == "" {
		return false
	}
	if job.CoverKey == "" {
		return false
	}
	return job.VideoKey != ""
}

// skippableSFX reports whether a cue may be silently dropped because no
// effect synthesizer is configured. Governed by pipeline.require_sfx.
func (r *Runner) skippableSFX(item types.ScriptItem) bool {
	if item.Type != types.ItemSFX {
		return false
	}
	if r.deps.Config.Pipeline.RequireSFX {
		return false
	}
	return r.deps.Effects == nil || !r.deps.Effects.Configured()
}

// synthesizeItems walks the script strictly in order, one provider call at
// a time, persisting each item's audio before moving on. A failing item is
// recorded and skipped; the step only hard-fails later if nothing at all
// succeeded.
func (r *Runner) synthesizeItems(ctx context.Context, job types.Job, res FilesResult) (types.Job, FilesResult) {
	for i := range job.Items {
		item := &job.Items[i]
		if item.AudioKey != "" {
			res.Skipped++
			continue
		}
		if r.skippableSFX(*item) {
			log.Printf("[workflow] Item %d: sfx synthesizer not configured, skipping cue", item.Index)
			res.Skipped++
			continue
		}

		data, format, err := r.synthesizeItem(ctx, job, *item)
		if err != nil {
			log.Printf("[workflow] Item %d synthesis failed: %v", item.Index, err)
			item.LastFailure = err.Error()
			res.Failed++
			continue
		}

		// Decode before persisting: corrupt provider bytes must never
		// reach the store as an item's audio.
		if _, err := audio.Decode(data, format); err != nil {
			log.Printf("[workflow] Item %d returned undecodable audio: %v", item.Index, err)
			item.LastFailure = err.Error()
			res.Failed++
			continue
		}

		key := store.ItemAudioKey(job.ID, item.ID, string(format))
		if err := r.deps.Blobs.Put(ctx, key, data); err != nil {
			log.Printf("[workflow] Item %d audio persist failed: %v", item.Index, err)
			item.LastFailure = err.Error()
			res.Failed++
			continue
		}
		item.AudioKey = key
		item.LastFailure = ""
		res.Synthesized++

		if err := r.deps.Jobs.Update(job); err != nil {
			log.Printf("[workflow] Persist after item %d failed: %v", item.Index, err)
		}
	}
	return job, res
}

func (r *Runner) synthesizeItem(ctx context.Context, job types.Job, item types.ScriptItem) ([]byte, audio.Format, error) {
	switch item.Type {
	case types.ItemSpeech:
		character, ok := findCharacter(job.Cast, item.Character)
		if !ok {
			return nil, "", fmt.Errorf("unknown character %q", item.Character)
		}
		if character.VoiceProvider == "" {
			return nil, "", fmt.Errorf("character %q has no voice assigned", item.Character)
		}
		provider, err := r.deps.Voices.Get(character.VoiceProvider)
		if err != nil {
			return nil, "", err
		}
		if !provider.Configured() {
			return nil, "", fmt.Errorf("voice provider %q not configured", character.VoiceProvider)
		}
		syn, err := provider.Synthesize(ctx, item.Text, character.VoiceID, item.Expression)
		if err != nil {
			return nil, "", err
		}
		return syn.Data, syn.Format, nil

	case types.ItemSFX:
		if r.deps.Effects == nil || !r.deps.Effects.Configured() {
			return nil, "", fmt.Errorf("sfx synthesizer not configured")
		}
		data, err := r.deps.Effects.Synthesize(ctx, item.SFXPrompt, item.SFXSeconds)
		if err != nil {
			return nil, "", err
		}
		return data, audio.FormatMP3, nil

	default:
		return nil, "", fmt.Errorf("unknown item type %q", item.Type)
	}
}

// assembleEpisode decodes every persisted clip in script order, merges them
// into one buffer, and encodes both containers. Zero clips is a hard
// failure for the whole step.
func (r *Runner) assembleEpisode(ctx context.Context, job types.Job) (types.Job, error) {
	clips, err := r.loadClips(ctx, job)
	if err != nil {
		return job, err
	}
	if len(clips) == 0 {
		return job, fmt.Errorf("no item produced audio, cannot assemble episode")
	}

	merged, err := audio.Merge(clips)
	if err != nil {
		return job, fmt.Errorf("merge timeline: %w", err)
	}
	log.Printf("[workflow] Merged %d clips, %.1fs total", len(clips), merged.Seconds())

	lossless := audio.EncodeWAV(merged)
	losslessKey := store.ArtifactKey(job.ID, "lossless", "wav")
	if err := r.replaceArtifact(ctx, job.LosslessKey, losslessKey, lossless); err != nil {
		return job, fmt.Errorf("persist lossless: %w", err)
	}
	job.LosslessKey = losslessKey

	mixData, mixFormat := audio.EncodeEpisode(merged, r.deps.Encoder,
		r.deps.Config.Audio.BitrateKbps, r.deps.Config.Audio.BlockSamples)
	mixKey := store.ArtifactKey(job.ID, "mix", mixFormat)
	if err := r.replaceArtifact(ctx, job.MixKey, mixKey, mixData); err != nil {
		return job, fmt.Errorf("persist mix: %w", err)
	}
	job.MixKey = mixKey
	job.MixFormat = mixFormat

	if err := r.deps.Jobs.Update(job); err != nil {
		return job, err
	}
	return job, nil
}

// loadClips reads back every item's persisted audio, preserving script
// order. Items without an audio key are simply absent from the timeline.
func (r *Runner) loadClips(ctx context.Context, job types.Job) ([]*audio.Clip, error) {
	var clips []*audio.Clip
	for _, item := range job.Items {
		if item.AudioKey == "" {
			continue
		}
		data, err := r.deps.Blobs.Get(ctx, item.AudioKey)
		if err != nil {
			return nil, fmt.Errorf("load item %d audio: %w", item.Index, err)
		}
		clip, err := audio.Decode(data, formatFromKey(item.AudioKey))
		if err != nil {
			return nil, fmt.Errorf("decode item %d audio: %w", item.Index, err)
		}
		clip.ItemID = item.ID
		clip.Index = item.Index
		clips = append(clips, clip)
	}
	return clips, nil
}

// generateCover is best effort: a job may reach files_ready without art,
// it just cannot get a video then.
func (r *Runner) generateCover(ctx context.Context, job types.Job) types.Job {
	if job.CoverKey != "" || r.deps.Art == nil {
		return job
	}
	meta := job.EffectiveMetadata()
	prompt := fmt.Sprintf("podcast cover art for %q, dramatic radio drama, no text", meta.Title)
	data, err := r.deps.Art.Generate(ctx, prompt, "1:1")
	if err != nil {
		log.Printf("[workflow] Cover art failed (continuing without): %v", err)
		return job
	}
	key := store.ArtifactKey(job.ID, "cover", "jpg")
	if err := r.deps.Blobs.Put(ctx, key, data); err != nil {
		log.Printf("[workflow] Cover persist failed (continuing without): %v", err)
		return job
	}
	job.CoverKey = key
	if err := r.deps.Jobs.Update(job); err != nil {
		log.Printf("[workflow] Persist after cover failed: %v", err)
	}
	return job
}

// renderVideo builds the slideshow when at least one image exists. Without
// cover art the video is skipped, not failed.
func (r *Runner) renderVideo(ctx context.Context, job types.Job) (types.Job, error) {
	if job.VideoKey != "" || r.deps.Renderer == nil {
		return job, nil
	}
	if job.CoverKey == "" {
		log.Printf("[workflow] No cover art, skipping video")
		return job, nil
	}

	coverData, err := r.deps.Blobs.Get(ctx, job.CoverKey)
	if err != nil {
		return job, fmt.Errorf("load cover: %w", err)
	}
	clips, err := r.loadClips(ctx, job)
	if err != nil {
		return job, err
	}
	segments := make([]video.Segment, len(clips))
	for i, clip := range clips {
		segments[i] = video.Segment{Clip: clip}
	}

	opts := video.Options{
		Resolution:   r.deps.Config.Video.Resolution,
		Quality:      r.deps.Config.Video.Quality,
		FPS:          r.deps.Config.Video.FPS,
		TrailingHold: time.Duration(r.deps.Config.Video.TrailingHoldMs) * time.Millisecond,
	}
	data, err := r.deps.Renderer.Render(ctx, segments, coverData, opts)
	if err != nil {
		return job, fmt.Errorf("render video: %w", err)
	}

	key := store.ArtifactKey(job.ID, "video", "mp4")
	if err := r.deps.Blobs.Put(ctx, key, data); err != nil {
		return job, fmt.Errorf("persist video: %w", err)
	}
	job.VideoKey = key
	if err := r.deps.Jobs.Update(job); err != nil {
		return job, err
	}
	return job, nil
}

// Publish runs files_ready -> uploading -> uploaded. It requires a video
// artifact and a valid credential; on failure the job carries the error and
// every produced artifact stays put.
func (r *Runner) Publish(ctx context.Context, jobID string, cred upload.Credential) (types.Job, error) {
	job, err := r.deps.Jobs.Get(jobID)
	if err != nil {
		return types.Job{}, err
	}
	if job.VideoKey == "" {
		return types.Job{}, fmt.Errorf("job %s has no video artifact", jobID)
	}
	if !cred.Valid() {
		return types.Job{}, fmt.Errorf("invalid publishing credential")
	}

	if job, err = r.advance(job, types.StatusUploading); err != nil {
		return types.Job{}, err
	}

	videoData, err := r.deps.Blobs.Get(ctx, job.VideoKey)
	if err != nil {
		return r.fail(job, fmt.Errorf("load video: %w", err))
	}

	result, err := r.deps.Publisher.Publish(ctx, videoData, job.EffectiveMetadata(), cred, func(p upload.Progress) {
		log.Printf("[workflow] Upload progress: %d/%d bytes", p.BytesSent, p.TotalBytes)
	})
	if err != nil {
		return r.fail(job, fmt.Errorf("publish: %w", err))
	}

	job.RemoteID = result.RemoteID
	job.RemoteURL = result.URL
	if job, err = r.advance(job, types.StatusUploaded); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// EditMetadata records the human metadata overlay without touching status.
func (r *Runner) EditMetadata(jobID string, meta types.EpisodeMetadata) (types.Job, error) {
	job, err := r.deps.Jobs.Get(jobID)
	if err != nil {
		return types.Job{}, err
	}
	job.Edited = &meta
	if err := r.deps.Jobs.Update(job); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// advance persists a forward status transition.
func (r *Runner) advance(job types.Job, next types.Status) (types.Job, error) {
	job, err := job.Advance(next)
	if err != nil {
		return job, err
	}
	if err := r.deps.Jobs.Update(job); err != nil {
		return job, err
	}
	return job, nil
}

// fail persists the error state and hands the step error back.
func (r *Runner) fail(job types.Job, cause error) (types.Job, error) {
	failed := job.Fail(cause)
	if err := r.deps.Jobs.Update(failed); err != nil {
		log.Printf("[workflow] Could not persist error state for %s: %v", job.ID, err)
	}
	return failed, cause
}

// replaceArtifact writes the new blob and drops the blob an older run left
// behind, so re-generation never orphans storage.
func (r *Runner) replaceArtifact(ctx context.Context, oldKey, newKey string, data []byte) error {
	if err := r.deps.Blobs.Put(ctx, newKey, data); err != nil {
		return err
	}
	if oldKey != "" && oldKey != newKey {
		if err := r.deps.Blobs.Delete(ctx, oldKey); err != nil {
			log.Printf("[workflow] Could not delete superseded blob %s: %v", oldKey, err)
		}
	}
	return nil
}

func findCharacter(cast []types.Character, name string) (types.Character, bool) {
	for _, c := range cast {
		if c.Name == name {
			return c, true
		}
	}
	return types.Character{}, false
}

func formatFromKey(key string) audio.Format {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return audio.Format(key[i+1:])
		}
	}
	return audio.FormatMP3
}
