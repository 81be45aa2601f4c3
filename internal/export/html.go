// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a printable HTML page. Printing it from a browser
// gives the PDF the web portal produced.
type HTMLExporter struct{}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Export renders r. Every cell is escaped.
func (e *HTMLExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(r.Title())))
	sb.WriteString("    <meta name=\"generator\" content=\"eduportal\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(fmt.Sprintf("    <h1>%s</h1>\n", html.EscapeString(r.Title())))
	sb.WriteString(fmt.Sprintf("    <p class=\"meta\">Generated %s &middot; %d records</p>\n",
		formatTimestamp(r.Generated), len(r.Rows)))

	if len(r.Rows) == 0 {
		sb.WriteString("    <p>No records.</p>\n")
	} else {
		columns := r.Columns()
		sb.WriteString("    <table>\n        <thead><tr>")
		for _, c := range columns {
			sb.WriteString("<th>" + html.EscapeString(c) + "</th>")
		}
		sb.WriteString("</tr></thead>\n        <tbody>\n")
		for i := range r.Rows {
			sb.WriteString("            <tr>")
			for _, cell := range r.Cells(i, columns) {
				sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("        </tbody>\n    </table>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns "text/html".
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

const css = `    <style>
        body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1f2937; }
        h1 { font-size: 1.4rem; margin-bottom: 0.2rem; }
        .meta { color: #6b7280; margin-top: 0; }
        table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
        th, td { border: 1px solid #d1d5db; padding: 4px 8px; text-align: left; }
        th { background: #f3f4f6; }
        @media print { body { margin: 0; } }
    </style>
`
