package detect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placeholders for absent fields
const (
	PlaceholderSamples     = "-"
	PlaceholderSeparator   = "?"
	PlaceholderLabelColumn = "no"
	PlaceholderActivities  = "n/a"
)

// View is the presentation-independent rendering of one response
type View struct {
	Samples     string       `json:"samples"`
	Activities  string       `json:"activities"`
	Separator   string       `json:"separator"`
	LabelColumn string       `json:"label_column"`
	Columns     string       `json:"columns"`
	Summary     string       `json:"summary"`
	Tally       []LabelCount `json:"tally"`
	Raw         string       `json:"raw"`
}

// Render builds a View from a result. It has no side effects.
func Render(result *Result) *View {
	resp := &Response{}
	var raw []byte
	if result != nil {
		if result.Response != nil {
			resp = result.Response
		}
		raw = result.Raw
	}

	v := &View{
		Samples:     PlaceholderSamples,
		Activities:  PlaceholderActivities,
		Separator:   PlaceholderSeparator,
		LabelColumn: PlaceholderLabelColumn,
		Columns:     PlaceholderSamples,
		Tally:       Tally(resp.PredictedLabels),
		Raw:         PrettyJSON(raw),
	}

	if resp.Samples != nil {
		v.Samples = strconv.Itoa(*resp.Samples)
	}
	if p := resp.Preprocessing; p != nil {
		if p.Separator != nil {
			v.Separator = *p.Separator
		}
		if p.LabelColumn != nil {
			v.LabelColumn = p.LabelColumn.String()
		}
		if p.ColumnsDetected != nil {
			v.Columns = strconv.Itoa(*p.ColumnsDetected)
		}
	}

	// mistyped fields are shown as received
	for field, dst := range map[string]*string{
		"samples":                        &v.Samples,
		"preprocessing.separator":        &v.Separator,
		"preprocessing.label_column":     &v.LabelColumn,
		"preprocessing.columns_detected": &v.Columns,
	} {
		if text, ok := resp.LooseText(field); ok {
			*dst = text
		}
	}
	if len(resp.PredictedLabels) > 0 {
		v.Activities = strings.Join(DistinctLabels(resp.PredictedLabels), ", ")
	}

	v.Summary = fmt.Sprintf("Ventanas: %s | Actividades: %s | Separador: %s | Ultima columna: %s",
		v.Samples, v.Activities, v.Separator, v.LabelColumn)

	return v
}

// Dominant returns the highest-count entry, or nil if there is no tally
func (v *View) Dominant() *LabelCount {
	if v == nil || len(v.Tally) == 0 {
		return nil
	}
	return &v.Tally[0]
}

// DominantText formats the dominant entry as "label (count)"
func (v *View) DominantText() string {
	d := v.Dominant()
	if d == nil {
		return PlaceholderActivities
	}
	return fmt.Sprintf("%s (%d)", d.Label, d.Count)
}

// Badges returns one "label: count" string per tally entry
func (v *View) Badges() []string {
	if v == nil {
		return nil
	}
	badges := make([]string, 0, len(v.Tally))
	for _, lc := range v.Tally {
		badges = append(badges, fmt.Sprintf("%s: %d", lc.Label, lc.Count))
	}
	return badges
}

// TallyText renders the tally region as plain text. It is empty when
// there are no labels.
func (v *View) TallyText() string {
	if v == nil || len(v.Tally) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Actividad dominante: " + v.DominantText() + "\n")
	for i, badge := range v.Badges() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("[" + badge + "]")
	}
	return b.String()
}

// Share returns the fraction of samples carrying the given entry
func (v *View) Share(lc LabelCount) float64 {
	total := 0
	for _, e := range v.Tally {
		total += e.Count
	}
	if total == 0 {
		return 0
	}
	return float64(lc.Count) / float64(total)
}

// PrettyJSON indents raw JSON with two spaces. Key order and values are
// kept as received, so parsing the output yields the original object.
// An empty body renders as "{}".
func PrettyJSON(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "{}"
	}
	return buf.String()
}
