package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats a detection view for terminal display using go-termfmt
type terminalFormatter struct {
	opts  *termfmt.TerminalOptions
	badge lipgloss.Style
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	return &terminalFormatter{
		opts: termOptions(color),
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1A1A"}).
			Background(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D56F4"}).
			Padding(0, 1),
	}
}

func (f *terminalFormatter) Format(view *detect.View) ([]byte, error) {
	view = emptyView(view)
	var b strings.Builder

	f.writeHeader(&b)
	f.writeSummary(&b, view)

	if len(view.Tally) > 0 {
		f.writeTally(&b, view)
	}

	f.writeRaw(&b, view)

	return []byte(b.String()), nil
}

// writeHeader writes a box-drawn title
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Deteccion de actividad"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeSummary writes the summary line followed by a field tree
func (f *terminalFormatter) writeSummary(b *strings.Builder, view *detect.View) {
	b.WriteString(emoji.GetEmoji("summary") + " Resumen\n")
	b.WriteString(view.Summary + "\n")

	items := []termfmt.TreeItem{
		{Label: "Ventanas", Value: view.Samples},
		{Label: "Actividades", Value: view.Activities},
		{Label: "Separador", Value: view.Separator},
		{Label: "Ultima columna", Value: view.LabelColumn},
		{Label: "Columnas", Value: view.Columns, Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeTally writes the dominant activity, one share bar per activity and
// the badge row
func (f *terminalFormatter) writeTally(b *strings.Builder, view *detect.View) {
	fmt.Fprintf(b, "%s Actividad dominante: %s\n", emoji.GetEmoji("dominant"), view.DominantText())

	items := make([]termfmt.TreeItem, 0, len(view.Tally))
	for i, entry := range tallyEntries(view) {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", emoji.GetEmoji("activity"), entry.Label),
			Value: fmt.Sprintf("%s (%.0f%%)", formatNumber(entry.Count), entry.Share*100),
			Children: []termfmt.TreeItem{
				{Label: shareBar(entry.Share, f.opts), Value: ""},
			},
			Last: i == len(view.Tally)-1,
		})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")

	f.writeBadges(b, view)
	b.WriteString("\n")
}

// writeBadges renders "label: count" badges, styled when color is on
func (f *terminalFormatter) writeBadges(b *strings.Builder, view *detect.View) {
	badges := view.Badges()
	if !f.opts.Color {
		for i, badge := range badges {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("[" + badge + "]")
		}
		b.WriteString("\n")
		return
	}

	rendered := make([]string, 0, len(badges)*2)
	for i, badge := range badges {
		if i > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, f.badge.Render(badge))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, rendered...) + "\n")
}

// writeRaw writes the pretty-printed response body
func (f *terminalFormatter) writeRaw(b *strings.Builder, view *detect.View) {
	b.WriteString(emoji.GetEmoji("raw") + " Respuesta\n")
	b.WriteString(view.Raw + "\n")
}
