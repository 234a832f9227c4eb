package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir mirrors t.Chdir (Go 1.24+) for older toolchains: change into dir and
// restore the previous working directory when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore chdir %s: %v", old, err)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseSettingsFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"key value", "soundfont_path = /banks/FluidR3.sf2\n", "/banks/FluidR3.sf2"},
		{"short key", "soundfont=/banks/a.sf2\n", "/banks/a.sf2"},
		{"spaced key", "SoundFont Path = /banks/b.sf3\n", "/banks/b.sf3"},
		{"bare path", "/banks/bare.sf2\n", "/banks/bare.sf2"},
		{"comments and blanks", "# my setup\n\nsoundfont = /banks/c.sf2\n", "/banks/c.sf2"},
		{"last match wins", "soundfont = /first.sf2\nsoundfont = /second.sf2\n", "/second.sf2"},
		{"unknown key ignored", "volume = 10\nsoundfont = /banks/d.sf2\n", "/banks/d.sf2"},
	}

	for _, tc := range tests {
		path := filepath.Join(dir, tc.name+".txt")
		writeFile(t, path, tc.content)
		got, err := ParseSettingsFile(path)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseSettingsFileMissing(t *testing.T) {
	_, err := ParseSettingsFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestResolveSoundFont(t *testing.T) {
	work := t.TempDir()
	chdir(t, work)

	sf := filepath.Join(work, "bank.sf2")
	writeFile(t, sf, "not a real soundfont")

	// From JSON config when settings.txt is absent
	cfg := &Config{SoundFont: sf}
	got, err := cfg.ResolveSoundFont()
	if err != nil {
		t.Fatalf("ResolveSoundFont: %v", err)
	}
	if got != sf {
		t.Errorf("got %q, want %q", got, sf)
	}

	// settings.txt takes precedence
	other := filepath.Join(work, "other.sf2")
	writeFile(t, other, "also not real")
	writeFile(t, filepath.Join(work, SettingsFile), "soundfont_path = "+other+"\n")
	got, err = cfg.ResolveSoundFont()
	if err != nil {
		t.Fatalf("ResolveSoundFont with settings.txt: %v", err)
	}
	if got != other {
		t.Errorf("got %q, want %q (settings.txt should win)", got, other)
	}
}

func TestResolveSoundFontErrors(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := &Config{}
	if _, err := cfg.ResolveSoundFont(); err == nil {
		t.Errorf("expected error when nothing is configured")
	}

	cfg = &Config{SoundFont: "/does/not/exist.sf2"}
	if _, err := cfg.ResolveSoundFont(); err == nil {
		t.Errorf("expected error for nonexistent soundfont")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.SoundFont = "/banks/FluidR3.sf2"
	cfg.UI.TempoText = "95"
	cfg.UI.TempoMode = "Percentage"
	cfg.UI.MuteDrums = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SoundFont != cfg.SoundFont {
		t.Errorf("SoundFont = %q, want %q", loaded.SoundFont, cfg.SoundFont)
	}
	if loaded.UI.TempoText != "95" || loaded.UI.TempoMode != "Percentage" || !loaded.UI.MuteDrums {
		t.Errorf("UI prefs not round-tripped: %+v", loaded.UI)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UI.TempoMode != "BPM" {
		t.Errorf("default tempo mode = %q, want BPM", cfg.UI.TempoMode)
	}
	if cfg.BrowseDir == "" {
		t.Errorf("default browse dir is empty")
	}
}
