package detect

import (
	"encoding/json"
	"io"
	"strconv"
)

// FormField is the multipart field name the detection service expects
const FormField = "file"

// Upload is a single file selected for submission
type Upload struct {
	Name    string
	Content io.Reader
}

// Response is a decoded detection response. Every field is optional.
type Response struct {
	Samples         *int           `json:"samples,omitempty"`
	Preprocessing   *Preprocessing `json:"preprocessing,omitempty"`
	PredictedLabels []string       `json:"predicted_labels,omitempty"`

	// Passthrough fields returned by the service but not rendered
	Prediction []int  `json:"prediction,omitempty"`
	Status     string `json:"status,omitempty"`

	hasLabels bool

	// display text of fields present with an unexpected type, keyed by
	// their dotted path ("samples", "preprocessing.separator")
	loose map[string]string
}

// HasLabels reports whether predicted_labels was present in the body
func (r *Response) HasLabels() bool {
	return r != nil && r.hasLabels
}

// LooseText returns the JSON text of a field that was present but not of
// the expected type
func (r *Response) LooseText(field string) (string, bool) {
	if r == nil {
		return "", false
	}
	text, ok := r.loose[field]
	return text, ok
}

func (r *Response) setLoose(field, text string) {
	if r.loose == nil {
		r.loose = make(map[string]string)
	}
	r.loose[field] = text
}

// Preprocessing describes how the service read the uploaded file
type Preprocessing struct {
	Separator       *string    `json:"separator,omitempty"`
	LabelColumn     *LabelFlag `json:"label_column,omitempty"`
	ColumnsDetected *int       `json:"columns_detected,omitempty"`
}

// LabelFlag is the label-column indicator. The service sends either a
// column kind ("Label", "Subject"), a boolean, or null.
type LabelFlag struct {
	Text   string
	IsBool bool
	Bool   bool
}

// String renders the flag the way it is displayed
func (f LabelFlag) String() string {
	if f.IsBool {
		return strconv.FormatBool(f.Bool)
	}
	return f.Text
}

// MarshalJSON writes the flag back in its original shape
func (f LabelFlag) MarshalJSON() ([]byte, error) {
	if f.IsBool {
		return json.Marshal(f.Bool)
	}
	return json.Marshal(f.Text)
}

// Result pairs a decoded response with the exact bytes received
type Result struct {
	Response *Response
	Raw      []byte
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LabelCount is one tally entry
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
