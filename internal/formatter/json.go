package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/yildizm/LogDetect/internal/detect"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Summary  string             `json:"summary"`
	Fields   *FieldsOutput      `json:"fields"`
	Dominant *detect.LabelCount `json:"dominant,omitempty"`
	Tally    []TallyEntry       `json:"tally"`
	Response json.RawMessage    `json:"response"`
}

// FieldsOutput mirrors the summary line field by field
type FieldsOutput struct {
	Samples     string `json:"samples"`
	Activities  string `json:"activities"`
	Separator   string `json:"separator"`
	LabelColumn string `json:"label_column"`
	Columns     string `json:"columns"`
}

func (f *jsonFormatter) Format(view *detect.View) ([]byte, error) {
	view = emptyView(view)

	output := &JSONOutput{
		Summary: view.Summary,
		Fields: &FieldsOutput{
			Samples:     view.Samples,
			Activities:  view.Activities,
			Separator:   view.Separator,
			LabelColumn: view.LabelColumn,
			Columns:     view.Columns,
		},
		Dominant: view.Dominant(),
		Tally:    tallyEntries(view),
		Response: json.RawMessage(view.Raw),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}
