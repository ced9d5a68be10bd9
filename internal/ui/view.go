package ui

import (
	"strings"

	"github.com/atomicstack/earctl/internal/format/table"
	uistate "github.com/atomicstack/earctl/internal/ui/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	separatorWidth = 32
	rowIndicator   = "›"
	waitingText    = "Waiting for device..."
)

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]string, 0, 16)
	lines = append(lines, render(styles.Header, defaultTitle))
	if msg, ok := m.device.LastError(); ok {
		lines = append(lines, render(styles.Error, msg))
	}
	lines = append(lines, m.separator())

	info, ok := m.device.Info()
	if !ok {
		lines = append(lines, m.spinner.View()+" "+render(styles.Waiting, waitingText))
		return m.finish(lines)
	}

	grid := table.Format([][]string{
		{"Address:", info.Address},
		{"Firmware:", info.FirmwareVersion},
		{"Serial:", info.SerialNumber},
	}, []table.Alignment{table.AlignLeft, table.AlignLeft})
	for _, line := range grid {
		label, value, _ := strings.Cut(line, ":")
		lines = append(lines, render(styles.Label, label+":")+render(styles.Value, value))
	}

	lines = append(lines, m.separator())
	lines = append(lines, m.controlRows()...)
	if m.showHelp {
		lines = append(lines, m.separator(), m.helpLine())
	}
	return m.finish(lines)
}

func (m *Model) controlRows() []string {
	labelWidth := 0
	for _, row := range uistate.Rows {
		if w := lipgloss.Width(row.Label()); w > labelWidth {
			labelWidth = w
		}
	}
	out := make([]string, 0, len(uistate.Rows))
	for _, row := range uistate.Rows {
		indicator := " "
		if row == m.controls.Cursor {
			indicator = render(styles.RowIndicator, rowIndicator)
		}
		label := render(styles.Label, table.PadRight(row.Label(), labelWidth))
		out = append(out, indicator+" "+label+"  "+m.optionsLine(row))
	}
	return out
}

func (m *Model) optionsLine(row uistate.Row) string {
	enabled := m.controls.Enabled(row)
	selected := m.controls.Selected(row)
	options := uistate.Options(row)
	parts := make([]string, len(options))
	for i, option := range options {
		mark := "( )"
		if i == selected {
			mark = "(•)"
		}
		text := mark + " " + option
		switch {
		case !enabled:
			parts[i] = render(styles.DisabledOption, text)
		case i == selected:
			parts[i] = render(styles.SelectedOption, text)
		default:
			parts[i] = render(styles.Option, text)
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) helpLine() string {
	bindings := m.keys.shortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return render(styles.Footer, strings.Join(parts, " • "))
}

func (m *Model) separator() string {
	width := separatorWidth
	if m.width > 0 && m.width < width {
		width = m.width
	}
	return render(styles.Separator, strings.Repeat("─", width))
}

func (m *Model) finish(lines []string) string {
	if m.width > 0 {
		for i, line := range lines {
			lines[i] = truncate.String(line, uint(m.width))
		}
	}
	return strings.Join(lines, "\n")
}

func render(style *lipgloss.Style, text string) string {
	if style == nil {
		return text
	}
	return style.Render(text)
}
