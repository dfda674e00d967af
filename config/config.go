package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Script   ScriptConfig   `yaml:"script"`
	Audio    AudioConfig    `yaml:"audio"`
	Video    VideoConfig    `yaml:"video"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`
	Upload   UploadConfig   `yaml:"upload"`
	Server   ServerConfig   `yaml:"server"`
}

type ScriptConfig struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TargetMinutes  int     `yaml:"target_minutes"`
	MaxCastMembers int     `yaml:"max_cast_members"`
}

type AudioConfig struct {
	BitrateKbps  int `yaml:"bitrate_kbps"`
	BlockSamples int `yaml:"block_samples"`
}

type VideoConfig struct {
	Resolution     string `yaml:"resolution"` // 360p | 720p | 1080p
	Quality        string `yaml:"quality"`    // low | medium | high
	FPS            int    `yaml:"fps"`
	TrailingHoldMs int    `yaml:"trailing_hold_ms"`
}

type PipelineConfig struct {
	// RequireSFX turns a missing sound-effect synthesizer into a per-item
	// failure instead of a silent skip.
	RequireSFX    bool   `yaml:"require_sfx"`
	DefaultVoices string `yaml:"default_voice_provider"`
}

type StoreConfig struct {
	Backend string   `yaml:"backend"` // fs | s3
	Root    string   `yaml:"root"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	DefaultLanguage   string `yaml:"default_language"`
	ChunkSizeMB       int    `yaml:"chunk_size_mb"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML config file and pulls secrets from the environment
// (.env is loaded for local dev; deployments use real env vars).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Audio.BitrateKbps == 0 {
		c.Audio.BitrateKbps = 128
	}
	if c.Audio.BlockSamples == 0 {
		c.Audio.BlockSamples = 9216 // 8 MP3 granules worth of samples
	}
	if c.Video.Resolution == "" {
		c.Video.Resolution = "720p"
	}
	if c.Video.Quality == "" {
		c.Video.Quality = "medium"
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 30
	}
	if c.Video.TrailingHoldMs == 0 {
		c.Video.TrailingHoldMs = 500
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "fs"
	}
	if c.Store.Root == "" {
		c.Store.Root = "data"
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "private"
	}
	if c.Upload.ChunkSizeMB == 0 {
		c.Upload.ChunkSizeMB = 8
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}
