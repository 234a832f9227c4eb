package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/truizsanchez/camina-drummer/config"
	"github.com/truizsanchez/camina-drummer/debug"
	"github.com/truizsanchez/camina-drummer/player"
	"github.com/truizsanchez/camina-drummer/song"
	"github.com/truizsanchez/camina-drummer/theme"
	"github.com/truizsanchez/camina-drummer/widgets"
)

type browseEntry struct {
	name  string
	isDir bool
}

type Model struct {
	Player *player.Player
	Cfg    *config.Config
	Theme  *theme.Theme

	current *song.Song
	bpm     float64 // estimated original BPM of current song
	status  string

	tempoText    string
	tempoMode    song.TempoMode
	mute         song.Mute
	editingTempo bool

	browsing  bool
	browseDir string
	entries   []browseEntry
	browseSel int

	playDone  <-chan error
	exporting bool
	quitting  bool
}

// playbackDoneMsg arrives when the player finishes or is stopped
type playbackDoneMsg struct{ err error }

// exportDoneMsg arrives when a WAV export completes
type exportDoneMsg struct {
	path string
	err  error
}

func NewModel(p *player.Player, cfg *config.Config, th *theme.Theme) Model {
	m := Model{
		Player:    p,
		Cfg:       cfg,
		Theme:     th,
		tempoText: cfg.UI.TempoText,
		tempoMode: song.TempoMode(cfg.UI.TempoMode),
		mute: song.Mute{
			Drums:  cfg.UI.MuteDrums,
			Others: cfg.UI.MuteOthers,
		},
		browseDir: cfg.BrowseDir,
		status:    "No file loaded",
	}
	if m.tempoMode != song.ModePercentage {
		m.tempoMode = song.ModeBPM
	}
	p.SetMute(m.mute)
	return m
}

func listenForDone(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return playbackDoneMsg{err: <-done}
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.browsing {
			return m.updateBrowser(msg)
		}
		if m.editingTempo {
			return m.updateTempoField(msg)
		}
		return m.updateMain(msg)

	case playbackDoneMsg:
		m.playDone = nil
		if msg.err != nil {
			m.status = fmt.Sprintf("Playback error: %v", msg.err)
		} else {
			m.status = "Playback finished"
		}

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported %s", filepath.Base(msg.path))
		}
	}

	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Player.Stop()
		m.saveConfig()
		return m, tea.Quit

	case "f":
		m.openBrowser(m.browseDir)
		return m, nil

	case "d":
		m.mute.Drums = !m.mute.Drums
		m.Player.SetMute(m.mute)

	case "a":
		m.mute.Others = !m.mute.Others
		m.Player.SetMute(m.mute)

	case "t":
		m.editingTempo = true

	case "m":
		if m.tempoMode == song.ModeBPM {
			m.tempoMode = song.ModePercentage
		} else {
			m.tempoMode = song.ModeBPM
		}

	case "enter", "p":
		return m.startPlayback()

	case "s":
		m.Player.Stop()

	case "e":
		return m.startExport()
	}

	return m, nil
}

func (m Model) updateTempoField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.editingTempo = false
	case "backspace":
		if len(m.tempoText) > 0 {
			m.tempoText = m.tempoText[:len(m.tempoText)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 && (s[0] >= '0' && s[0] <= '9' || s[0] == '.') {
			m.tempoText += s
		}
	}
	return m, nil
}

func (m *Model) startPlayback() (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.status = "No MIDI file selected"
		return *m, nil
	}
	factor := song.TempoFactor(m.tempoText, m.tempoMode, m.bpm)
	done, err := m.Player.Play(m.current, factor)
	if err != nil {
		m.status = fmt.Sprintf("Cannot play: %v", err)
		return *m, nil
	}
	m.playDone = done
	m.status = fmt.Sprintf("Playing %s (factor %.2f)", m.current.Name(), factor)
	return *m, listenForDone(done)
}

func (m *Model) startExport() (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.status = "No MIDI file selected"
		return *m, nil
	}
	if m.exporting {
		m.status = "Export already running"
		return *m, nil
	}
	s := m.current
	factor := song.TempoFactor(m.tempoText, m.tempoMode, m.bpm)
	mute := m.mute
	out := strings.TrimSuffix(s.Path, filepath.Ext(s.Path)) + "-practice.wav"
	p := m.Player

	m.exporting = true
	m.status = fmt.Sprintf("Exporting %s ...", filepath.Base(out))
	return *m, func() tea.Msg {
		err := p.ExportWAV(s, factor, mute, out)
		return exportDoneMsg{path: out, err: err}
	}
}

func (m *Model) saveConfig() {
	m.Cfg.UI.TempoText = m.tempoText
	m.Cfg.UI.TempoMode = string(m.tempoMode)
	m.Cfg.UI.MuteDrums = m.mute.Drums
	m.Cfg.UI.MuteOthers = m.mute.Others
	m.Cfg.BrowseDir = m.browseDir
	if err := m.Cfg.Save(); err != nil {
		debug.Log("config", "save failed: %v", err)
	}
}

// File browser

func (m *Model) openBrowser(dir string) {
	entries, err := readMidiDir(dir)
	if err != nil {
		m.status = fmt.Sprintf("Cannot read %s: %v", dir, err)
		return
	}
	m.browsing = true
	m.browseDir = dir
	m.entries = entries
	m.browseSel = 0
}

func readMidiDir(dir string) ([]browseEntry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var entries []browseEntry
	for _, de := range dirents {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if de.IsDir() {
			entries = append(entries, browseEntry{name: name, isDir: true})
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".mid") {
			entries = append(entries, browseEntry{name: name})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		return entries[i].name < entries[j].name
	})
	return entries, nil
}

func (m Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.browsing = false

	case "j", "down":
		if m.browseSel < len(m.entries)-1 {
			m.browseSel++
		}

	case "k", "up":
		if m.browseSel > 0 {
			m.browseSel--
		}

	case "h", "backspace", "left":
		m.openBrowser(filepath.Dir(m.browseDir))

	case "enter", "l", "right":
		if m.browseSel >= len(m.entries) {
			break
		}
		entry := m.entries[m.browseSel]
		path := filepath.Join(m.browseDir, entry.name)
		if entry.isDir {
			m.openBrowser(path)
			break
		}
		m.loadFile(path)
		m.browsing = false
	}

	return m, nil
}

func (m *Model) loadFile(path string) {
	s, err := song.Load(path)
	if err != nil {
		m.status = fmt.Sprintf("Load failed: %v", err)
		debug.Log("tui", "load %s: %v", path, err)
		return
	}
	m.current = s
	m.bpm = s.EstimateBPM()
	m.status = fmt.Sprintf("Loaded %s", s.Name())
	debug.Log("tui", "loaded %s: %d events, %.2f bpm, %.1fs", s.Name(), len(s.Events), m.bpm, s.Duration())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	brightStyle := lipgloss.NewStyle().Foreground(th.Bright())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("camina-drummer  Drum Practice MIDI Player"))
	out.WriteString("\n\n")

	if m.browsing {
		out.WriteString(m.viewBrowser())
		return out.String()
	}

	// Current file
	fileLine := "No file loaded"
	if m.current != nil {
		fileLine = m.current.Name()
	}
	out.WriteString(fgStyle.Render("File: ") + brightStyle.Render(fileLine))
	out.WriteString("\n")

	// Original BPM
	bpmLine := "Original BPM: N/A"
	if m.current != nil {
		bpmLine = fmt.Sprintf("Original BPM: %.2f", m.bpm)
	}
	out.WriteString(fgStyle.Render(bpmLine))
	out.WriteString("\n\n")

	// Mute toggles
	out.WriteString("  " + widgets.RenderCheckbox(m.mute.Drums, th.Symbols.CheckOn, th.Symbols.CheckOff, "Mute drums", th.Accent()))
	out.WriteString("\n")
	out.WriteString("  " + widgets.RenderCheckbox(m.mute.Others, th.Symbols.CheckOn, th.Symbols.CheckOff, "Mute accompaniment", th.Accent()))
	out.WriteString("\n\n")

	// Tempo field + mode
	out.WriteString("  " + widgets.RenderField("Tempo", m.tempoText, m.editingTempo, th.FG(), th.Bright()))
	out.WriteString(fgStyle.Render("  mode: ") + brightStyle.Render(string(m.tempoMode)))
	out.WriteString("\n\n")

	// Playback state
	if m.Player.Playing() {
		out.WriteString(brightStyle.Render(fmt.Sprintf("%c playing", th.Symbols.Playing)))
		out.WriteString("\n")
	}

	// Status line
	if m.status != "" {
		out.WriteString(warnStyle.Render(m.status))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeyBinding{
		{Key: "f", Desc: "file"},
		{Key: "p", Desc: "play"},
		{Key: "s", Desc: "stop"},
		{Key: "d", Desc: "mute drums"},
		{Key: "a", Desc: "mute others"},
		{Key: "t", Desc: "tempo"},
		{Key: "m", Desc: "mode"},
		{Key: "e", Desc: "export wav"},
		{Key: "q", Desc: "quit"},
	}, th.Muted()))

	return out.String()
}

func (m Model) viewBrowser() string {
	th := m.Theme
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	selStyle := lipgloss.NewStyle().Foreground(th.Bright())

	var out strings.Builder
	out.WriteString(fgStyle.Render("Select MIDI file  " + m.browseDir))
	out.WriteString("\n\n")

	if len(m.entries) == 0 {
		out.WriteString(dimStyle.Render("  (no .mid files here)"))
		out.WriteString("\n")
	}

	for i, entry := range m.entries {
		name := entry.name
		if entry.isDir {
			name += "/"
		}
		if i == m.browseSel {
			out.WriteString(selStyle.Render(fmt.Sprintf("%c %s", th.Symbols.Cursor, name)))
		} else {
			out.WriteString(fgStyle.Render("  " + name))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeyBinding{
		{Key: "jk", Desc: "move"},
		{Key: "enter", Desc: "open"},
		{Key: "h", Desc: "up dir"},
		{Key: "esc", Desc: "cancel"},
	}, th.Muted()))

	return out.String()
}
