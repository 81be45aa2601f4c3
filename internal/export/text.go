// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter renders a report as an aligned plain-text table.
type TextExporter struct{}

// NewTextExporter creates a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export renders r.
func (e *TextExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", r.Title())
	fmt.Fprintf(&buf, "Generated: %s\n", formatTimestamp(r.Generated))
	fmt.Fprintf(&buf, "Records: %d\n\n", len(r.Rows))

	if len(r.Rows) == 0 {
		buf.WriteString("No records.\n")
		return buf.Bytes(), nil
	}

	columns := r.Columns()
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	rule := make([]string, len(columns))
	for i, c := range columns {
		rule[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for i := range r.Rows {
		cells := r.Cells(i, columns)
		for j := range cells {
			cells[j] = strings.NewReplacer("\t", " ", "\n", " ").Replace(cells[j])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension returns ".txt".
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns "text/plain".
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
