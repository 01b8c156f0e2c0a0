package detect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// maxExactFloat is the largest integer a float64 literal holds exactly
const maxExactFloat = 1 << 53

// DecodeOptions controls how strictly a success body is validated
type DecodeOptions struct {
	// Strict rejects bodies that are not a JSON object or whose fields
	// have the wrong type. By default such bodies are shown as they are:
	// an unparsable body becomes an empty response and mistyped fields
	// keep their JSON text for display.
	Strict bool
}

// Decode turns a success body into a typed Response. Only strict mode
// returns an error, always a malformed one.
func Decode(body []byte, opts DecodeOptions) (*Response, error) {
	resp, err := decodeResponse(body, opts.Strict)
	if err != nil {
		if !opts.Strict {
			return &Response{}, nil
		}
		return nil, NewMalformedError(err)
	}
	return resp, nil
}

func decodeResponse(body []byte, strict bool) (*Response, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	d := fieldDecoder{strict: strict, resp: resp}

	if raw, ok := fields["samples"]; ok {
		resp.Samples = d.count("samples", raw)
	}
	if raw, ok := fields["preprocessing"]; ok {
		resp.Preprocessing = d.preprocessing(raw)
	}
	if raw, ok := fields["predicted_labels"]; ok {
		resp.PredictedLabels, resp.hasLabels = d.labels(raw)
	}

	// passthrough fields are never validated
	if raw, ok := fields["prediction"]; ok {
		_ = json.Unmarshal(raw, &resp.Prediction)
	}
	if raw, ok := fields["status"]; ok {
		_ = json.Unmarshal(raw, &resp.Status)
	}

	if d.err != nil {
		return nil, d.err
	}

	if strict && resp.Samples != nil && resp.hasLabels && len(resp.PredictedLabels) != *resp.Samples {
		return nil, fmt.Errorf("predicted_labels has %d entries but samples is %d",
			len(resp.PredictedLabels), *resp.Samples)
	}

	return resp, nil
}

// decodeObject requires body to be a JSON object
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("body is not a JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return fields, nil
}

// fieldDecoder records the first schema violation in strict mode.
// Otherwise a mistyped field keeps its JSON text on the response.
type fieldDecoder struct {
	strict bool
	resp   *Response
	err    error
}

func (d *fieldDecoder) fail(field string, raw json.RawMessage, format string, args ...interface{}) {
	if !d.strict {
		d.resp.setLoose(field, jsonText(raw))
		return
	}
	if d.err == nil {
		d.err = fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...))
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// jsonText renders a value the way it is displayed: strings without
// quotes, anything else as compact JSON
func jsonText(raw json.RawMessage) string {
	if firstByte(raw) == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

// count decodes a non-negative integer
func (d *fieldDecoder) count(field string, raw json.RawMessage) *int {
	if isNull(raw) {
		return nil
	}
	n, err := parseCount(raw)
	if err != nil {
		d.fail(field, raw, "%v, got %s", err, string(raw))
		return nil
	}
	return &n
}

// parseCount reads a JSON number without going through float64, so large
// integers keep every digit. Integral floats such as 3.0 are accepted.
func parseCount(raw json.RawMessage) (int, error) {
	if c := firstByte(raw); c != '-' && (c < '0' || c > '9') {
		return 0, errors.New("expected integer")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return 0, errors.New("expected integer")
	}

	n, err := strconv.ParseInt(num.String(), 10, strconv.IntSize)
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
			return 0, errors.New("expected integer")
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, errors.New("expected non-negative integer")
	}
	return int(n), nil
}

func (d *fieldDecoder) str(field string, raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if firstByte(raw) != '"' || json.Unmarshal(raw, &s) != nil {
		d.fail(field, raw, "expected string, got %s", string(raw))
		return nil
	}
	return &s
}

func (d *fieldDecoder) labelFlag(field string, raw json.RawMessage) *LabelFlag {
	if isNull(raw) {
		return nil
	}
	switch firstByte(raw) {
	case '"':
		if s := d.str(field, raw); s != nil {
			return &LabelFlag{Text: *s}
		}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return &LabelFlag{IsBool: true, Bool: b}
		}
	}
	d.fail(field, raw, "expected string or boolean, got %s", string(raw))
	return nil
}

// preprocessing decodes the nested object. Any other shape carries no
// separator or label column, so it is treated as absent when not strict.
func (d *fieldDecoder) preprocessing(raw json.RawMessage) *Preprocessing {
	if isNull(raw) {
		return nil
	}
	var fields map[string]json.RawMessage
	if firstByte(raw) != '{' || json.Unmarshal(raw, &fields) != nil {
		if d.strict && d.err == nil {
			d.err = fmt.Errorf("preprocessing: expected object, got %s", string(raw))
		}
		return nil
	}

	p := &Preprocessing{}
	if v, ok := fields["separator"]; ok {
		p.Separator = d.str("preprocessing.separator", v)
	}
	if v, ok := fields["label_column"]; ok {
		p.LabelColumn = d.labelFlag("preprocessing.label_column", v)
	}
	if v, ok := fields["columns_detected"]; ok {
		p.ColumnsDetected = d.count("preprocessing.columns_detected", v)
	}
	return p
}

// labels decodes predicted_labels. Outside strict mode any array is kept:
// non-string entries are labelled by their JSON text and nulls are skipped.
func (d *fieldDecoder) labels(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}
	var entries []json.RawMessage
	if firstByte(raw) != '[' || json.Unmarshal(raw, &entries) != nil {
		if d.strict && d.err == nil {
			d.err = errors.New("predicted_labels: expected array of strings")
		}
		return nil, false
	}

	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		if firstByte(entry) == '"' {
			var s string
			if json.Unmarshal(entry, &s) == nil {
				labels = append(labels, s)
				continue
			}
		}
		if d.strict {
			if d.err == nil {
				d.err = errors.New("predicted_labels: expected array of strings")
			}
			return nil, false
		}
		if !isNull(entry) {
			labels = append(labels, jsonText(entry))
		}
	}
	return labels, true
}

// parseDetail extracts a non-empty string "detail" from an error body.
// Anything unparsable yields "".
func parseDetail(body []byte) string {
	fields, err := decodeObject(body)
	if err != nil {
		return ""
	}
	raw, ok := fields["detail"]
	if !ok || firstByte(raw) != '"' {
		return ""
	}
	var detail string
	if err := json.Unmarshal(raw, &detail); err != nil {
		return ""
	}
	return detail
}
