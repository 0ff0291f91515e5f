package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`
	TempDir string `yaml:"temp_dir"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Preview settings
	Preview PreviewConfig `yaml:"preview"`

	// Subtitle defaults applied when a cue has no explicit style
	Subtitles SubtitleConfig `yaml:"subtitles"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

type PreviewConfig struct {
	// TickMillis is the scheduler tick interval while playing
	TickMillis int `yaml:"tick_millis"`
	// ReseekToleranceMillis is the audio drift allowed before an SFX
	// handle is reseeked
	ReseekToleranceMillis int `yaml:"reseek_tolerance_millis"`
	// DisableShader forces the keyframe fallback compositor
	DisableShader bool `yaml:"disable_shader"`
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
}

type SubtitleConfig struct {
	FontName  string `yaml:"font_name"`
	FontSize  int    `yaml:"font_size"`
	FontColor string `yaml:"font_color"`
	BoxColor  string `yaml:"box_color"`
	Position  string `yaml:"position"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		TempDir: "./temp",
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
		},
		Preview: PreviewConfig{
			TickMillis:            50,
			ReseekToleranceMillis: 120,
			DisableShader:         false,
			Width:                 640,
			Height:                360,
		},
		Subtitles: SubtitleConfig{
			FontName:  "Arial",
			FontSize:  24,
			FontColor: "white",
			BoxColor:  "black@0.5",
			Position:  "bottom",
		},
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./cutforge.yaml",
		"./cutforge.yml",
		filepath.Join(os.Getenv("HOME"), ".cutforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
