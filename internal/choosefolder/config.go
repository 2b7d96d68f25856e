package choosefolder

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var errConfigNotFound = errors.New("config file not found")

// AppConfig is the optional defaults file. Every key may be overridden on the
// command line.
type AppConfig struct {
	Prompt              string `toml:"prompt,omitempty"`
	DefaultLocation     string `toml:"default-location,omitempty"`
	ShowHidden          bool   `toml:"show-hidden"`
	Multiple            bool   `toml:"multiple"`
	ShowPackageContents bool   `toml:"show-package-contents"`
	Osascript           string `toml:"osascript,omitempty"`
	Format              string `toml:"format,omitempty"`
}

func defaultAppConfig() AppConfig {
	return AppConfig{Format: FormatLines}
}

// Request returns the dialog options the config asks for.
func (c AppConfig) Request() Request {
	return Request{
		Prompt:              c.Prompt,
		DefaultLocation:     c.DefaultLocation,
		ShowHidden:          c.ShowHidden,
		Multiple:            c.Multiple,
		ShowPackageContents: c.ShowPackageContents,
	}
}

func validateFormat(format string) error {
	switch format {
	case FormatLines, FormatNull, FormatJSON:
		return nil
	}
	return fmt.Errorf("invalid format %q: must be %q, %q or %q", format, FormatLines, FormatNull, FormatJSON)
}

func normalizeConfig(cfg AppConfig) AppConfig {
	cfg.Prompt = strings.TrimSpace(cfg.Prompt)
	cfg.DefaultLocation = strings.TrimSpace(cfg.DefaultLocation)
	cfg.Osascript = strings.TrimSpace(cfg.Osascript)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = FormatLines
	}
	return cfg
}

// getConfigPath resolves the config file location:
// $CHOOSE_FOLDER_CONFIG, then $XDG_CONFIG_HOME/choose-folder/config.toml,
// then ~/.config/choose-folder/config.toml.
func getConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return expandUser(p)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(expandUser(xdg), "choose-folder", "config.toml")
	}
	return expandUser("~/.config/choose-folder/config.toml")
}

func readConfig() (AppConfig, error) {
	return readConfigAt(getConfigPath())
}

func readConfigAt(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("%w: %s", errConfigNotFound, path)
		}
		return AppConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg := defaultAppConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return AppConfig{}, fmt.Errorf("config file %s:\n%s", path, strict.String())
		}
		return AppConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg = normalizeConfig(cfg)
	if err := validateFormat(cfg.Format); err != nil {
		return AppConfig{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// loadConfig is readConfig with a missing file treated as defaults.
func loadConfig() (AppConfig, error) {
	cfg, err := readConfig()
	if errors.Is(err, errConfigNotFound) {
		return defaultAppConfig(), nil
	}
	return cfg, err
}

const configHeader = `# choose-folder defaults. Command-line flags override every key.
#
# prompt = "Select a folder"
# default-location = "~/Documents"
# osascript = "/usr/bin/osascript"
# format = "lines"   # lines, null or json

`

func writeConfigAt(path string, cfg AppConfig, force bool) error {
	path = filepath.Clean(expandUser(strings.TrimSpace(path)))
	if path == "" || path == "." {
		return errors.New("config path is empty")
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing file: %s (use --force)", path)
		}
	}
	cfg = normalizeConfig(cfg)
	if err := validateFormat(cfg.Format); err != nil {
		return err
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config TOML: %w", err)
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), b...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
