package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/LogDetect/internal/detect"
)

// csvFormatter formats the activity tally as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(view *detect.View) ([]byte, error) {
	view = emptyView(view)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Activity", "Windows", "Share"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range tallyEntries(view) {
		record := []string{
			entry.Label,
			strconv.Itoa(entry.Count),
			strconv.FormatFloat(entry.Share, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
