package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/bfarr/prism"
	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/fsutil"
)

// RenderConfig is the JSON file format for animation settings. Every
// field is optional; fields omitted from the file leave the library
// defaults in place, so partial configs are safe. Flags set on the
// command line take precedence over the file.
type RenderConfig struct {
	// Frame composition params
	Policy     *string   `json:"policy,omitempty"` // "snapshot", "cumulative" or "window"
	WindowSize *int      `json:"window_size,omitempty"`
	Labels     []string  `json:"labels,omitempty"`
	Truths     []float64 `json:"truths,omitempty"`

	// Styling params
	Color         *string  `json:"color,omitempty"` // hex like "#4682b4"
	TruthColor    *string  `json:"truth_color,omitempty"`
	MarkerSize    *float64 `json:"marker_size,omitempty"` // printer's points
	ColorByWalker *bool    `json:"color_by_walker,omitempty"`

	// Layout params
	FinalBins   *int     `json:"final_bins,omitempty"`
	PanelInches *float64 `json:"panel_inches,omitempty"`
	DPI         *int     `json:"dpi,omitempty"`

	// Pacing params
	FPS             *int     `json:"fps,omitempty"`
	RoughSeconds    *float64 `json:"rough_seconds,omitempty"`
	CrossfadeFrames *int     `json:"crossfade_frames,omitempty"`

	// Overlay params
	ShowCounter  *bool `json:"show_counter,omitempty"`
	ShowProgress *bool `json:"show_progress,omitempty"`

	// Encoder params
	JPEGQuality *int `json:"jpeg_quality,omitempty"`
}

// Load reads a RenderConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size.
func Load(path string, fs fsutil.FileSystem) (*RenderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := fs.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fs.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RenderConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid. Color
// strings and chain-shape checks are left to the renderer, which knows
// the chain dimensions.
func (c *RenderConfig) Validate() error {
	if c.Policy != nil {
		if _, err := cube.ParsePolicy(*c.Policy); err != nil {
			return fmt.Errorf("invalid policy: %w", err)
		}
	}
	if c.WindowSize != nil && *c.WindowSize < 1 {
		return fmt.Errorf("window_size must be positive, got %d", *c.WindowSize)
	}
	if len(c.Labels) != 0 && len(c.Truths) != 0 && len(c.Labels) != len(c.Truths) {
		return fmt.Errorf("labels and truths disagree on dimensions: %d vs %d", len(c.Labels), len(c.Truths))
	}
	if c.MarkerSize != nil && *c.MarkerSize <= 0 {
		return fmt.Errorf("marker_size must be positive, got %f", *c.MarkerSize)
	}
	if c.FinalBins != nil && *c.FinalBins < 1 {
		return fmt.Errorf("final_bins must be positive, got %d", *c.FinalBins)
	}
	if c.PanelInches != nil && *c.PanelInches <= 0 {
		return fmt.Errorf("panel_inches must be positive, got %f", *c.PanelInches)
	}
	if c.DPI != nil && *c.DPI < 1 {
		return fmt.Errorf("dpi must be positive, got %d", *c.DPI)
	}
	if c.FPS != nil && *c.FPS < 1 {
		return fmt.Errorf("fps must be positive, got %d", *c.FPS)
	}
	if c.CrossfadeFrames != nil && *c.CrossfadeFrames < 0 {
		return fmt.Errorf("crossfade_frames must be non-negative, got %d", *c.CrossfadeFrames)
	}
	if c.JPEGQuality != nil && (*c.JPEGQuality < 1 || *c.JPEGQuality > 100) {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", *c.JPEGQuality)
	}
	return nil
}

// Apply copies every set field onto opts, leaving unset fields alone.
func (c *RenderConfig) Apply(opts *prism.Options) error {
	if c.Policy != nil {
		p, err := cube.ParsePolicy(*c.Policy)
		if err != nil {
			return fmt.Errorf("invalid policy: %w", err)
		}
		opts.Policy = p
	}
	if c.WindowSize != nil {
		opts.WindowSize = *c.WindowSize
	}
	if len(c.Labels) != 0 {
		opts.Labels = append([]string(nil), c.Labels...)
	}
	if len(c.Truths) != 0 {
		opts.Truths = append([]float64(nil), c.Truths...)
	}
	if c.Color != nil {
		opts.Color = *c.Color
	}
	if c.TruthColor != nil {
		opts.TruthColor = *c.TruthColor
	}
	if c.MarkerSize != nil {
		opts.MarkerSize = *c.MarkerSize
	}
	if c.ColorByWalker != nil {
		opts.ColorByWalker = *c.ColorByWalker
	}
	if c.FinalBins != nil {
		opts.FinalBins = *c.FinalBins
	}
	if c.PanelInches != nil {
		opts.PanelSize = vg.Length(*c.PanelInches) * vg.Inch
	}
	if c.DPI != nil {
		opts.DPI = *c.DPI
	}
	if c.FPS != nil {
		opts.FPS = *c.FPS
	}
	if c.RoughSeconds != nil {
		opts.RoughSeconds = *c.RoughSeconds
	}
	if c.CrossfadeFrames != nil {
		opts.CrossfadeFrames = *c.CrossfadeFrames
	}
	if c.ShowCounter != nil {
		opts.ShowCounter = *c.ShowCounter
	}
	if c.ShowProgress != nil {
		opts.ShowProgress = *c.ShowProgress
	}
	if c.JPEGQuality != nil {
		opts.JPEGQuality = *c.JPEGQuality
	}
	return nil
}
