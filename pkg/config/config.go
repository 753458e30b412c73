// Package config holds the scene construction configuration.
//
// A single Config value is built at process start (defaults, optionally
// overlaid from a TOML file) and passed by reference into the scene flow and
// the visual-widget constructors. There is no ambient global configuration;
// everything that tunes construction-time behavior lives here.
package config

import (
	"github.com/BurntSushi/toml"

	"github.com/isaflow/isaflow/pkg/errors"
)

// Default values for scene construction.
const (
	// DefaultSceneRatio is the scene width per bit. 1/8 means one grid unit
	// covers 8 bits.
	DefaultSceneRatio = 1.0 / 8.0

	// DefaultFrameWidth is the frame width in grid units.
	DefaultFrameWidth = 16

	// DefaultFrameHeight is the frame height in grid units.
	DefaultFrameHeight = 9

	// DefaultMemAddrWidth is the address bus width in bits.
	DefaultMemAddrWidth = 64

	// DefaultMemDataWidth is the data bus width in bits.
	DefaultMemDataWidth = 128

	// DefaultMemAlign is the memory address alignment in bytes.
	DefaultMemAlign = 64

	// DefaultElemFillOpacity is the fill opacity of element units.
	DefaultElemFillOpacity = 0.5

	// DefaultValueFormat is the fmt verb used to render element values.
	DefaultValueFormat = "%d"

	// DefaultFontSize is the font size used by widget labels.
	DefaultFontSize = 40
)

// Placement search strategies.
const (
	// StrategyRowThenColumn scans rows top-to-bottom, then columns, so new
	// objects preferentially stack below existing ones.
	StrategyRowThenColumn = "row-then-column"

	// StrategyColumnThenRow scans columns left-to-right, then rows, so new
	// objects preferentially sit beside existing ones.
	StrategyColumnThenRow = "column-then-row"
)

// MemRange is one addressable memory range shown by a memory unit.
type MemRange struct {
	Base  uint64 `toml:"base"`
	Limit uint64 `toml:"limit"`
}

// Config contains all scene construction settings.
// The zero value is not usable - use Default to obtain a valid Config.
type Config struct {
	// SceneRatio is the horizontal grid units per bit.
	SceneRatio float64 `toml:"scene_ratio"`

	// FrameWidth and FrameHeight set the initial canvas size in grid units.
	// The placement map grows beyond them on demand, keeping the aspect ratio.
	FrameWidth  int `toml:"frame_width"`
	FrameHeight int `toml:"frame_height"`

	// Strategy selects the placement search order.
	Strategy string `toml:"strategy"`

	// MemAddrWidth and MemDataWidth size the memory unit's buses in bits.
	MemAddrWidth int `toml:"mem_addr_width"`
	MemDataWidth int `toml:"mem_data_width"`

	// MemAlign is the memory address alignment in bytes.
	MemAlign int `toml:"mem_align"`

	// MemRanges lists the address ranges shown by memory units.
	MemRanges []MemRange `toml:"mem_ranges"`

	// ElemFillOpacity is the fill opacity applied to element units.
	ElemFillOpacity float64 `toml:"elem_fill_opacity"`

	// ValueFormat is the fmt verb used to render element values.
	ValueFormat string `toml:"value_format"`

	// FontSize is the font size used by widget labels.
	FontSize int `toml:"font_size"`
}

// Default returns a Config populated with the standard defaults:
// a 16x9 frame, one grid unit per 8 bits, row-then-column placement and a
// single 4KiB memory page.
func Default() *Config {
	return &Config{
		SceneRatio:      DefaultSceneRatio,
		FrameWidth:      DefaultFrameWidth,
		FrameHeight:     DefaultFrameHeight,
		Strategy:        StrategyRowThenColumn,
		MemAddrWidth:    DefaultMemAddrWidth,
		MemDataWidth:    DefaultMemDataWidth,
		MemAlign:        DefaultMemAlign,
		MemRanges:       []MemRange{{Base: 0, Limit: 0x1000}},
		ElemFillOpacity: DefaultElemFillOpacity,
		ValueFormat:     DefaultValueFormat,
		FontSize:        DefaultFontSize,
	}
}

// Load reads a TOML file and overlays it on the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.SceneRatio <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene_ratio must be positive, got %g", c.SceneRatio)
	}
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame must be positive, got %dx%d", c.FrameWidth, c.FrameHeight)
	}
	switch c.Strategy {
	case StrategyRowThenColumn, StrategyColumnThenRow:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown placement strategy %q", c.Strategy)
	}
	if c.MemAlign <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "mem_align must be positive, got %d", c.MemAlign)
	}
	return nil
}

// AspectRatio returns frame height divided by frame width.
// The placement map preserves this ratio while growing.
func (c *Config) AspectRatio() float64 {
	return float64(c.FrameHeight) / float64(c.FrameWidth)
}
