package script

import (
	"context"
	"fmt"

	"storycast/types"
)

// Options tunes one generation request.
type Options struct {
	TargetMinutes  int
	MaxCastMembers int
}

// Generator turns prose into a cast-assigned radio-drama script. The wire
// format belongs to the implementation; callers only see types.Script.
type Generator interface {
	Generate(ctx context.Context, storyText string, opts Options) (*types.Script, error)
}

// Validate rejects malformed collaborator output before it reaches the
// workflow: input errors fail fast, verbatim.
func Validate(s *types.Script) error {
	if s == nil || len(s.Items) == 0 {
		return fmt.Errorf("script has no items")
	}
	cast := make(map[string]bool, len(s.Cast))
	for _, c := range s.Cast {
		if c.Name == "" {
			return fmt.Errorf("cast member with empty name")
		}
		cast[c.Name] = true
	}
	for i, item := range s.Items {
		switch item.Type {
		case types.ItemSpeech:
			if item.Text == "" {
				return fmt.Errorf("speech item %d has no text", i)
			}
			if !cast[item.Character] {
				return fmt.Errorf("speech item %d names unknown character %q", i, item.Character)
			}
		case types.ItemSFX:
			if item.SFXPrompt == "" {
				return fmt.Errorf("sfx item %d has no prompt", i)
			}
		default:
			return fmt.Errorf("item %d has unknown type %q", i, item.Type)
		}
	}
	return nil
}
