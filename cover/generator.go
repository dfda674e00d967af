package cover

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Generator produces cover or per-scene art from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// Pollinations generates images via Pollinations.ai (free, keyless).
type Pollinations struct {
	httpClient *http.Client
}

// NewPollinations creates the generator.
func NewPollinations() *Pollinations {
	return &Pollinations{httpClient: &http.Client{Timeout: 60 * time.Second}}
}

var aspectSizes = map[string][2]int{
	"1:1":  {1024, 1024},
	"16:9": {1920, 1080},
	"9:16": {1080, 1920},
}

// Generate fetches one image. Pollinations occasionally times out, so the
// request is retried up to 3 times with backoff.
func (p *Pollinations) Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	size, ok := aspectSizes[aspectRatio]
	if !ok {
		size = aspectSizes["1:1"]
	}
	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=flux",
		url.PathEscape(prompt), size[0], size[1],
	)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		data, err := p.fetch(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Printf("[cover] Attempt %d failed: %v", attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		}
	}
	return nil, fmt.Errorf("image generation failed after 3 attempts: %w", lastErr)
}

func (p *Pollinations) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Storycast/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from image service", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// An error page is smaller than any plausible image.
	if len(data) < 100 {
		return nil, fmt.Errorf("response too small (%d bytes)", len(data))
	}
	return data, nil
}
