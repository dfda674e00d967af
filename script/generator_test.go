package script

import (
	"strings"
	"testing"

	"storycast/types"
)

func TestValidate(t *testing.T) {
	cast := []types.Character{{Name: "Ann"}}
	cases := []struct {
		name    string
		script  *types.Script
		wantErr string
	}{
		{"nil script", nil, "no items"},
		{"no items", &types.Script{Cast: cast}, "no items"},
		{
			"speech without text",
			&types.Script{Cast: cast, Items: []types.ScriptItem{
				{Type: types.ItemSpeech, Character: "Ann"},
			}},
			"no text",
		},
		{
			"unknown character",
			&types.Script{Cast: cast, Items: []types.ScriptItem{
				{Type: types.ItemSpeech, Character: "Zed", Text: "hi"},
			}},
			"unknown character",
		},
		{
			"sfx without prompt",
			&types.Script{Cast: cast, Items: []types.ScriptItem{
				{Type: types.ItemSFX},
			}},
			"no prompt",
		},
		{
			"unknown type",
			&types.Script{Cast: cast, Items: []types.ScriptItem{
				{Type: "music"},
			}},
			"unknown type",
		},
		{
			"empty cast name",
			&types.Script{
				Cast:  []types.Character{{Name: ""}},
				Items: []types.ScriptItem{{Type: types.ItemSFX, SFXPrompt: "rain"}},
			},
			"empty name",
		},
		{
			"valid",
			&types.Script{Cast: cast, Items: []types.ScriptItem{
				{Type: types.ItemSpeech, Character: "Ann", Text: "hello"},
				{Type: types.ItemSFX, SFXPrompt: "thunder"},
			}},
			"",
		},
	}
	for _, c := range cases {
		err := Validate(c.script)
		if c.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", c.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), c.wantErr) {
			t.Fatalf("%s: got %v, want mention of %q", c.name, err, c.wantErr)
		}
	}
}
