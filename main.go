package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/truizsanchez/camina-drummer/config"
	"github.com/truizsanchez/camina-drummer/debug"
	"github.com/truizsanchez/camina-drummer/player"
	"github.com/truizsanchez/camina-drummer/theme"
	"github.com/truizsanchez/camina-drummer/tui"
)

func main() {
	debug.Enable()
	defer debug.Disable()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Theme: built-in phosphor palette, or a .gpl file from config
	palette := theme.Phosphor()
	if cfg.Palette != "" {
		if p, err := theme.LoadGPL(cfg.Palette); err == nil {
			palette = p
		} else {
			debug.Log("theme", "palette %s: %v, using built-in", cfg.Palette, err)
		}
	}
	th := theme.New(palette)

	sfPath, err := cfg.ResolveSoundFont()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p, err := player.New(sfPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	m := tui.NewModel(p, cfg, th)
	prog := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
