package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/saylesss88/persway/internal/layout"
)

// Config is the top-level configuration document.
type Config struct {
	LogLevel           string       `yaml:"logLevel"`
	SocketPath         string       `yaml:"socketPath"`
	DefaultLayout      LayoutConfig `yaml:"defaultLayout"`
	WorkspaceRenaming  bool         `yaml:"workspaceRenaming"`
	OnWindowFocus      string       `yaml:"onWindowFocus"`
	OnWindowFocusLeave string       `yaml:"onWindowFocusLeave"`
	OnExit             string       `yaml:"onExit"`
	Timing             Timing       `yaml:"timing"`
}

// LayoutConfig selects the process-wide default workspace policy.
type LayoutConfig struct {
	Kind        string `yaml:"kind"`
	Size        int    `yaml:"size"`
	StackLayout string `yaml:"stackLayout"`
}

// Timing holds the delays the daemon uses where the compositor offers no
// acknowledgment. All values are milliseconds.
type Timing struct {
	SettleMs         int `yaml:"settleMs"`
	MoveDelayMs      int `yaml:"moveDelayMs"`
	RenameDebounceMs int `yaml:"renameDebounceMs"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		DefaultLayout: LayoutConfig{
			Kind:        string(layout.KindManual),
			Size:        70,
			StackLayout: string(layout.ArrangementStacked),
		},
		Timing: Timing{
			SettleMs:         50,
			MoveDelayMs:      50,
			RenameDebounceMs: 100,
		},
	}
}

// Load reads and validates a configuration file. Keys absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("defaultLayout: %w", err)
	}
	if c.Timing.SettleMs < 0 || c.Timing.MoveDelayMs < 0 || c.Timing.RenameDebounceMs < 0 {
		return fmt.Errorf("timing values must not be negative")
	}
	return nil
}

// Policy converts the default layout section into a layout policy.
func (c Config) Policy() (layout.Policy, error) {
	var policy layout.Policy
	switch layout.Kind(c.DefaultLayout.Kind) {
	case layout.KindSpiral:
		policy = layout.Spiral()
	case layout.KindManual:
		policy = layout.Manual()
	case layout.KindStackMain:
		arrangement, err := layout.ParseArrangement(c.DefaultLayout.StackLayout)
		if err != nil {
			return layout.Policy{}, err
		}
		policy = layout.StackMain(c.DefaultLayout.Size, arrangement)
	default:
		return layout.Policy{}, fmt.Errorf("unknown layout kind %q", c.DefaultLayout.Kind)
	}
	if err := policy.Validate(); err != nil {
		return layout.Policy{}, err
	}
	return policy, nil
}
