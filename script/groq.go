package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"storycast/types"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

const systemPrompt = `You are a radio-drama scriptwriter. You turn prose into a cast-assigned audio script.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation.

The JSON object has:
- "cast": array of {"name", "description"} — every speaking character, narrator included
- "scenes": array of {"location", "description"} in story order
- "items": array, in performance order, of either
    {"type":"speech","character":"...","text":"...","expression":"calm|excited|whisper|angry|sad","location":"..."}
  or
    {"type":"sfx","sfx_prompt":"short sound description","sfx_seconds":2.5,"location":"..."}
- "metadata": {"title","description","tags":[...]}

Keep lines short enough to speak in one breath. Use sfx items sparingly, only
where a sound genuinely carries the scene.`

// GroqGenerator generates scripts through Groq's chat-completion API.
type GroqGenerator struct {
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewGroqGenerator creates a generator for the given model.
func NewGroqGenerator(model string, temperature float64) *GroqGenerator {
	return &GroqGenerator{
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: 90 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// rawScript is the LLM's JSON shape before ids and indices are assigned.
type rawScript struct {
	Cast   []types.Character `json:"cast"`
	Scenes []types.Scene     `json:"scenes"`
	Items  []struct {
		Type       string  `json:"type"`
		Character  string  `json:"character"`
		Text       string  `json:"text"`
		Expression string  `json:"expression"`
		SFXPrompt  string  `json:"sfx_prompt"`
		SFXSeconds float64 `json:"sfx_seconds"`
		Location   string  `json:"location"`
	} `json:"items"`
	Metadata types.EpisodeMetadata `json:"metadata"`
}

// Generate asks the model for a script and normalizes it into types.Script.
func (g *GroqGenerator) Generate(ctx context.Context, storyText string, opts Options) (*types.Script, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}

	log.Printf("[script] Generating script via %s...", g.model)

	userPrompt := buildUserPrompt(storyText, opts)
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: g.temperature,
		MaxTokens:   8192,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return nil, fmt.Errorf("parse groq response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("groq error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("groq returned no choices")
	}

	content := cleanJSON(chat.Choices[0].Message.Content)
	var raw rawScript
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w\ncontent: %s", err, truncate(content, 300))
	}

	out := &types.Script{
		Cast:     raw.Cast,
		Metadata: raw.Metadata,
	}
	for i, sc := range raw.Scenes {
		sc.Index = i
		out.Scenes = append(out.Scenes, sc)
	}
	for i, it := range raw.Items {
		out.Items = append(out.Items, types.ScriptItem{
			ID:         uuid.NewString()[:8],
			Index:      i,
			Type:       types.ItemType(it.Type),
			Character:  it.Character,
			Text:       it.Text,
			Expression: it.Expression,
			SFXPrompt:  it.SFXPrompt,
			SFXSeconds: it.SFXSeconds,
			Location:   it.Location,
		})
	}

	if err := Validate(out); err != nil {
		return nil, fmt.Errorf("malformed script: %w", err)
	}

	log.Printf("[script] %d cast, %d scenes, %d items", len(out.Cast), len(out.Scenes), len(out.Items))
	return out, nil
}

func buildUserPrompt(storyText string, opts Options) string {
	var sb strings.Builder
	sb.WriteString("Adapt this story into a radio-drama script.\n\n")
	if opts.TargetMinutes > 0 {
		fmt.Fprintf(&sb, "Target spoken length: about %d minutes.\n", opts.TargetMinutes)
	}
	if opts.MaxCastMembers > 0 {
		fmt.Fprintf(&sb, "Use at most %d cast members.\n", opts.MaxCastMembers)
	}
	sb.WriteString("\nSTORY:\n")
	sb.WriteString(storyText)
	return sb.String()
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
