// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a report as a Markdown table.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders r.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", r.Title()))
	sb.WriteString(fmt.Sprintf("- **Generated**: %s\n", formatTimestamp(r.Generated)))
	sb.WriteString(fmt.Sprintf("- **Records**: %d\n\n", len(r.Rows)))

	if len(r.Rows) == 0 {
		sb.WriteString("*No records.*\n")
		return []byte(sb.String()), nil
	}

	columns := r.Columns()
	sb.WriteString("| " + strings.Join(escapeAll(columns), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for i := range r.Rows {
		sb.WriteString("| " + strings.Join(escapeAll(r.Cells(i, columns)), " | ") + " |\n")
	}
	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns "text/markdown".
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes table-breaking characters in a cell.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "<br>")
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeMarkdown(c)
	}
	return out
}
