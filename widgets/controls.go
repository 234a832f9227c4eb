package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderCheckbox renders "■ label" / "□ label" with the given colors
func RenderCheckbox(on bool, onSym, offSym rune, label string, color lipgloss.Color) string {
	sym := offSym
	if on {
		sym = onSym
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(fmt.Sprintf("%c %s", sym, label))
}

// RenderField renders "label: [value]" with a block cursor when focused
func RenderField(label, value string, focused bool, fg, accent lipgloss.Color) string {
	labelStyle := lipgloss.NewStyle().Foreground(fg)
	valueStyle := lipgloss.NewStyle().Foreground(accent)
	if focused {
		return labelStyle.Render(label+": ") + valueStyle.Render("["+value+"_]")
	}
	return labelStyle.Render(label+": ") + valueStyle.Render("["+value+"]")
}

// KeyBinding is one entry in the key help line
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings as a single dim help line
func RenderKeyHelp(keys []KeyBinding, color lipgloss.Color) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k.Key, k.Desc))
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Join(parts, "  "))
}
