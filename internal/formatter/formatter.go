package formatter

import "github.com/yildizm/LogDetect/internal/detect"

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(view *detect.View) ([]byte, error)
}
