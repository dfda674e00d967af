package research

import (
	"context"
	"fmt"
	"log"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Story is a piece of prose pulled from an external source, ready to seed a
// job.
type Story struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Source string `json:"source"`
	Score  int    `json:"score"`
}

// RedditSource pulls top self-posts from a subreddit as candidate stories.
// This is an optional input source for jobs, not a pipeline step.
type RedditSource struct {
	client   *reddit.Client
	minScore int
}

// NewRedditSource creates a read-only Reddit client.
func NewRedditSource(minScore int) (*RedditSource, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &RedditSource{client: client, minScore: minScore}, nil
}

// TopStories returns the subreddit's top text posts from the past week,
// best first, filtered to posts with enough prose to adapt.
func (r *RedditSource) TopStories(ctx context.Context, subreddit string, limit int) ([]Story, error) {
	posts, _, err := r.client.Subreddit.TopPosts(ctx, subreddit, &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: limit},
		Time:        "week",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}

	var stories []Story
	for _, post := range posts {
		if post.Body == "" || post.Score < r.minScore {
			continue
		}
		// A story shorter than a paragraph cannot carry an episode.
		if len(post.Body) < 400 {
			continue
		}
		stories = append(stories, Story{
			ID:     post.ID,
			Title:  post.Title,
			Body:   post.Body,
			Source: fmt.Sprintf("r/%s", subreddit),
			Score:  post.Score,
		})
	}
	log.Printf("[research] r/%s: %d usable stories of %d posts", subreddit, len(stories), len(posts))
	return stories, nil
}
