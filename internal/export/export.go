// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a report.
type Exporter interface {
	// Export converts a report to the target format.
	Export(r *Report) ([]byte, error)

	// FileExtension returns the file extension (e.g., ".txt", ".md").
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// ErrEmptyReport is returned for a report without rows.
var ErrEmptyReport = errors.New("nothing to export")

// Report is one data set returned by the export endpoint.
type Report struct {
	Kind      model.ExportKind
	Rows      []map[string]any
	Generated time.Time
}

// Title returns the report heading, e.g. "ACADEMICS REPORT".
func (r *Report) Title() string {
	return strings.ToUpper(string(r.Kind)) + " REPORT"
}

// Columns returns the column order, taken from the first row.
func (r *Report) Columns() []string {
	if len(r.Rows) == 0 {
		return r.Kind.Columns()
	}
	return r.Kind.OrderColumns(r.Rows[0])
}

// Cells returns row i formatted in column order.
func (r *Report) Cells(i int, columns []string) []string {
	cells := make([]string, len(columns))
	for j, c := range columns {
		cells[j] = cellText(r.Rows[i][c])
	}
	return cells
}

func (r *Report) validate() error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	if r.Generated.IsZero() {
		return fmt.Errorf("report has no generation time")
	}
	return nil
}

// DecodeReport parses the JSON body of a report export.
func DecodeReport(kind model.ExportKind, body []byte, generated time.Time) (*Report, error) {
	var payload struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Message string           `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s report: %w", kind, err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("export %s: %s", kind, util.FirstNonEmpty(payload.Message, "server refused"))
	}
	return &Report{Kind: kind, Rows: payload.Data, Generated: generated}, nil
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are saved.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile renders r with exporter and writes it as <kind>_<YYYYMMDD><ext>.
// It returns the output path.
func ToFile(r *Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := r.validate(); err != nil {
		return "", err
	}
	content, err := exporter.Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	filename := fmt.Sprintf("%s_%s%s", r.Kind, r.Generated.Format("20060102"), exporter.FileExtension())
	return write(filename, content, opts)
}

// SaveDownload stores a server-rendered file (a CSV export) under its
// suggested name. An empty name falls back to fallback.
func SaveDownload(filename, fallback string, data []byte, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	name := util.FirstNonEmpty(filename, fallback)
	return write(sanitizeFilename(filepath.Base(name)), data, opts)
}

func write(filename string, content []byte, opts *Options) (string, error) {
	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if opts.OpenAfterExport {
		// The file exists either way; a missing opener is not an export failure.
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

// ForFormat returns the report exporter for a file extension or name:
// "txt", "md", "html" or "json". Anything else is plain text.
func ForFormat(name string) Exporter {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "md", "markdown":
		return NewMarkdownExporter()
	case "html":
		return NewHTMLExporter()
	case "json":
		return NewJSONExporter()
	default:
		return NewTextExporter()
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 80
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "export"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// cellText formats a JSON value for a table cell.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
