package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/LogDetect/internal/formatter"
)

// renderWidth is the word wrap used for --render
const renderWidth = 100

// getFormatter returns the appropriate formatter for the given format
func getFormatter(format string, color bool) (formatter.Formatter, error) {
	switch format {
	case "json":
		return formatter.NewJSON(), nil
	case "markdown", "md":
		return formatter.NewMarkdown(), nil
	case "csv":
		return formatter.NewCSV(), nil
	case "text", "terminal", "":
		return formatter.NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// stdoutPresenter prints controller states: the alert goes to errOut and
// each rendered view goes to out or to outputFile
type stdoutPresenter struct {
	out        io.Writer
	errOut     io.Writer
	formatter  formatter.Formatter
	render     bool
	color      bool
	outputFile string

	// last write failure, read once the submission settled
	err error
}

func newStdoutPresenter(out, errOut io.Writer, format string, render, color bool, outputFile string) (*stdoutPresenter, error) {
	if render {
		format = "markdown"
	}
	f, err := getFormatter(format, color)
	if err != nil {
		return nil, err
	}
	return &stdoutPresenter{
		out:        out,
		errOut:     errOut,
		formatter:  f,
		render:     render,
		color:      color,
		outputFile: outputFile,
	}, nil
}

// Present implements detect.Presenter
func (p *stdoutPresenter) Present(state detect.State) {
	switch {
	case state.Loading:
		if isVerbose() {
			fmt.Fprintf(p.errOut, "%s Procesando archivo...\n", emoji.GetEmoji("loading"))
		}
	case state.ErrorVisible:
		fmt.Fprintf(p.errOut, "%s %s\n", emoji.GetEmoji("error"), state.ErrorText)
	case state.View != nil:
		p.err = p.write(state.View)
	}
}

func (p *stdoutPresenter) write(view *detect.View) error {
	output, err := p.formatter.Format(view)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if p.render {
		output, err = formatter.RenderMarkdown(output, p.color, renderWidth)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
	}

	if p.outputFile == "" {
		_, err = p.out.Write(output)
		return err
	}
	if err := writeOutputBytesToFile(output, p.outputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(p.errOut, "Output saved to: %s\n", p.outputFile)
	}
	return nil
}

// Err returns the last write failure
func (p *stdoutPresenter) Err() error {
	return p.err
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}
	cleanPath := filepath.Clean(filePath)

	// #nosec G304 - path is chosen by the user
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
