package sfx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Synthesizer generates a sound effect from a prompt. The result is always
// a decodable compressed container (MP3).
type Synthesizer interface {
	Configured() bool
	Synthesize(ctx context.Context, prompt string, seconds float64) ([]byte, error)
}

const elevenSoundURL = "https://api.elevenlabs.io/v1/sound-generation"

// ElevenLabs generates effects through the ElevenLabs sound-generation API.
type ElevenLabs struct {
	httpClient *http.Client
}

// NewElevenLabs creates the synthesizer. The API key is read from
// ELEVENLABS_API_KEY at call time.
func NewElevenLabs() *ElevenLabs {
	return &ElevenLabs{httpClient: &http.Client{Timeout: 120 * time.Second}}
}

func (e *ElevenLabs) Configured() bool {
	return os.Getenv("ELEVENLABS_API_KEY") != ""
}

func (e *ElevenLabs) Synthesize(ctx context.Context, prompt string, seconds float64) ([]byte, error) {
	payload := map[string]any{"text": prompt}
	if seconds > 0 {
		payload["duration_seconds"] = seconds
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, elevenSoundURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", os.Getenv("ELEVENLABS_API_KEY"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("sound generation HTTP %d: %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}
