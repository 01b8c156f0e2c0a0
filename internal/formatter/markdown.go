package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yildizm/LogDetect/internal/detect"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(view *detect.View) ([]byte, error) {
	view = emptyView(view)
	var b strings.Builder

	b.WriteString("# Deteccion de actividad\n\n")
	b.WriteString(view.Summary + "\n\n")

	f.writeSummaryTable(&b, view)

	if len(view.Tally) > 0 {
		f.writeTallySection(&b, view)
	}

	b.WriteString("## Respuesta\n\n")
	b.WriteString("```json\n")
	b.WriteString(view.Raw + "\n")
	b.WriteString("```\n")

	return []byte(b.String()), nil
}

// writeSummaryTable writes one row per summary field
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, view *detect.View) {
	b.WriteString("## Resumen\n\n")
	b.WriteString("| Campo | Valor |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| Ventanas | %s |\n", escapeCell(view.Samples))
	fmt.Fprintf(b, "| Actividades | %s |\n", escapeCell(view.Activities))
	fmt.Fprintf(b, "| Separador | `%s` |\n", escapeCell(view.Separator))
	fmt.Fprintf(b, "| Ultima columna | %s |\n", escapeCell(view.LabelColumn))
	fmt.Fprintf(b, "| Columnas | %s |\n\n", escapeCell(view.Columns))
}

// writeTallySection writes the dominant activity and the tally table
func (f *markdownFormatter) writeTallySection(b *strings.Builder, view *detect.View) {
	b.WriteString("## Actividades\n\n")
	fmt.Fprintf(b, "**Actividad dominante**: %s\n\n", view.DominantText())

	b.WriteString("| Actividad | Ventanas | Proporcion |\n")
	b.WriteString("|-----------|----------|------------|\n")
	for _, entry := range tallyEntries(view) {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", escapeCell(entry.Label), entry.Count, entry.Share*100)
	}
	b.WriteString("\n")
}

// escapeCell keeps table cells on one line
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// RenderMarkdown renders markdown for the terminal with glamour. Without
// color the plain "notty" style is used.
func RenderMarkdown(markdown []byte, color bool, width int) ([]byte, error) {
	if width <= 0 {
		width = 100
	}

	style := glamour.WithStandardStyle("notty")
	if color {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.RenderBytes(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
