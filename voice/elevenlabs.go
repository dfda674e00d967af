package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"storycast/audio"
)

const elevenBase = "https://api.elevenlabs.io/v1"

// ElevenLabs synthesizes speech through the ElevenLabs TTS API. Output is
// MP3.
type ElevenLabs struct {
	httpClient *http.Client
}

// NewElevenLabs creates the provider. The API key is read from
// ELEVENLABS_API_KEY at call time.
func NewElevenLabs() *ElevenLabs {
	return &ElevenLabs{httpClient: &http.Client{Timeout: 120 * time.Second}}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) Configured() bool {
	return os.Getenv("ELEVENLABS_API_KEY") != ""
}

func (e *ElevenLabs) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, elevenBase+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", os.Getenv("ELEVENLABS_API_KEY"))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs voices HTTP %d", resp.StatusCode)
	}

	var body struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
			Name    string `json:"name"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	voices := make([]Voice, 0, len(body.Voices))
	for _, v := range body.Voices {
		voices = append(voices, Voice{ID: v.VoiceID, Name: v.Name})
	}
	return voices, nil
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text, voiceID, styleHint string) (*Synthesis, error) {
	payload := map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
	}
	if styleHint != "" {
		// ElevenLabs has no free-text style knob; the hint is folded into
		// delivery via voice settings.
		payload["voice_settings"] = map[string]any{"stability": 0.4, "style": 0.6}
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", elevenBase, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", os.Getenv("ELEVENLABS_API_KEY"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("elevenlabs TTS HTTP %d: %s", resp.StatusCode, msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Synthesis{Data: data, Format: audio.FormatMP3}, nil
}
