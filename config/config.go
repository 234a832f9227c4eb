package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UIConfig stores UI preferences between runs. TempoMode holds a
// song.TempoMode value as a plain string to keep this package dependency-free.
type UIConfig struct {
	TempoText  string `json:"tempoText,omitempty"`
	TempoMode  string `json:"tempoMode,omitempty"`
	MuteDrums  bool   `json:"muteDrums,omitempty"`
	MuteOthers bool   `json:"muteOthers,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	SoundFont string   `json:"soundFont,omitempty"`
	BrowseDir string   `json:"browseDir,omitempty"`
	Palette   string   `json:"palette,omitempty"` // optional .gpl palette file
	UI        UIConfig `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		BrowseDir: home,
		UI: UIConfig{
			TempoMode: "BPM",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "camina-drummer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.UI.TempoMode == "" {
		cfg.UI.TempoMode = "BPM"
	}
	if cfg.BrowseDir == "" {
		home, _ := os.UserHomeDir()
		cfg.BrowseDir = home
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SettingsFile is the legacy plain-text settings file holding the SoundFont path.
// It takes precedence over config.json when present in the working directory.
const SettingsFile = "settings.txt"

// ResolveSoundFont returns the SoundFont path to use, checking settings.txt
// first and falling back to the JSON config. The returned path is verified to
// exist on disk.
func (c *Config) ResolveSoundFont() (string, error) {
	path := c.SoundFont

	if fromFile, err := ParseSettingsFile(SettingsFile); err == nil && fromFile != "" {
		path = fromFile
	}

	if path == "" {
		return "", fmt.Errorf("no soundfont configured: set soundfont_path in %s or soundFont in config.json", SettingsFile)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("soundfont %s: %w", path, err)
	}
	return path, nil
}

// ParseSettingsFile reads a settings.txt style file. Lines are either
// "key = value" pairs (keys: soundfont, soundfont_path, soundfont path) or a
// bare path. Blank lines and # comments are ignored. The last match wins.
func ParseSettingsFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var found string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "soundfont", "soundfont_path", "soundfont path":
				found = strings.TrimSpace(value)
			}
			continue
		}
		found = line
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return found, nil
}
