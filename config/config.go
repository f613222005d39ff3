package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes environment overrides, e.g. BOXLABEL_DATASET_PATH.
const EnvPrefix = "boxlabel"

// ClassSeed pre-registers a class name with a fixed index.
type ClassSeed struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Config holds runtime configuration for the annotator.
// Fields are loaded from a JSON file, then environment, then command-line flags.
type Config struct {
	Debug       bool   `json:"debug" envconfig:"DEBUG"`
	DatasetPath string `json:"dataset_path" envconfig:"DATASET_PATH"`

	// Canvas the image is resized to. Hit-testing works in these unzoomed pixels.
	CanvasWidth  int `json:"canvas_width" envconfig:"CANVAS_WIDTH"`
	CanvasHeight int `json:"canvas_height" envconfig:"CANVAS_HEIGHT"`

	// Gesture tuning
	HandleSize float64 `json:"handle_size" envconfig:"HANDLE_SIZE"`
	MinBoxSize float64 `json:"min_box_size" envconfig:"MIN_BOX_SIZE"`

	// Zoom
	ZoomStep float64 `json:"zoom_step" envconfig:"ZOOM_STEP"`
	ZoomMin  float64 `json:"zoom_min" envconfig:"ZOOM_MIN"`
	ZoomMax  float64 `json:"zoom_max" envconfig:"ZOOM_MAX"`

	// StrictLabels aborts a label load on the first malformed line and locks that image;
	// when false malformed lines are skipped and logged.
	StrictLabels         bool        `json:"strict_labels" envconfig:"STRICT_LABELS"`
	PromptClassesOnStart bool        `json:"prompt_classes_on_start" envconfig:"PROMPT_CLASSES"`
	ImageExtensions      []string    `json:"image_extensions" envconfig:"IMAGE_EXTENSIONS"`
	FrameCacheSize       int         `json:"frame_cache_size" envconfig:"FRAME_CACHE_SIZE"`
	Classes              []ClassSeed `json:"classes" ignored:"true"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                false,
		CanvasWidth:          1200,
		CanvasHeight:         900,
		HandleSize:           20,
		MinBoxSize:           10,
		ZoomStep:             1.2,
		ZoomMin:              0.5,
		ZoomMax:              3.0,
		StrictLabels:         true,
		PromptClassesOnStart: true,
		ImageExtensions:      []string{".jpg", ".jpeg", ".png"},
		FrameCacheSize:       16,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.CanvasWidth <= 0 {
		c.CanvasWidth = 1200
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = 900
	}
	if c.HandleSize <= 0 {
		c.HandleSize = 20
	}
	if c.MinBoxSize <= 0 {
		c.MinBoxSize = 10
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = 1.2
	}
	if c.ZoomMin <= 0 {
		c.ZoomMin = 0.5
	}
	if c.ZoomMax < c.ZoomMin {
		c.ZoomMax = c.ZoomMin
	}
	if len(c.ImageExtensions) == 0 {
		c.ImageExtensions = []string{".jpg", ".jpeg", ".png"}
	}
	if c.FrameCacheSize <= 0 {
		c.FrameCacheSize = 16
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
// Environment overrides are applied after the file in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else {
		defer f.Close()
		dec := json.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// DefaultPath returns $XDG_CONFIG_HOME/boxlabel/config.json, falling back to the
// working directory when the XDG location cannot be prepared.
func DefaultPath() string {
	p, err := xdg.ConfigFile(filepath.Join("boxlabel", "config.json"))
	if err != nil {
		return "boxlabel.json"
	}
	return p
}
