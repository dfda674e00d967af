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

const openaiSpeechURL = "https://api.openai.com/v1/audio/speech"

// openaiVoices is the fixed catalogue the speech endpoint accepts.
var openaiVoices = []Voice{
	{ID: "alloy", Name: "Alloy"},
	{ID: "echo", Name: "Echo"},
	{ID: "fable", Name: "Fable"},
	{ID: "onyx", Name: "Onyx"},
	{ID: "nova", Name: "Nova"},
	{ID: "shimmer", Name: "Shimmer"},
}

// OpenAI synthesizes speech through the OpenAI speech API. Output is
// requested as WAV.
type OpenAI struct {
	httpClient *http.Client
}

// NewOpenAI creates the provider. The API key is read from OPENAI_API_KEY
// at call time.
func NewOpenAI() *OpenAI {
	return &OpenAI{httpClient: &http.Client{Timeout: 120 * time.Second}}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Configured() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}

func (o *OpenAI) ListVoices(ctx context.Context) ([]Voice, error) {
	return append([]Voice(nil), openaiVoices...), nil
}

func (o *OpenAI) Synthesize(ctx context.Context, text, voiceID, styleHint string) (*Synthesis, error) {
	input := text
	if styleHint != "" {
		input = fmt.Sprintf("[%s] %s", styleHint, text)
	}
	payload := map[string]any{
		"model":           "tts-1",
		"voice":           voiceID,
		"input":           input,
		"response_format": "wav",
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiSpeechURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("OPENAI_API_KEY"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("openai speech HTTP %d: %s", resp.StatusCode, msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Synthesis{Data: data, Format: audio.FormatWAV}, nil
}
