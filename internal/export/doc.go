// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes portal data exports to disk.
//
// CSV exports arrive from the server ready to save. Report exports (the
// "pdf" format) arrive as JSON rows and are rendered locally by an Exporter.
//
// # Key Types
//
//   - Report: the rows of one export and when they were generated
//   - Exporter: renders a Report (text, Markdown, HTML or JSON)
//   - Options: output directory and whether to open the result
//
// # Usage
//
//	report, err := export.DecodeReport(model.ExportStudents, body, time.Now())
//	path, err := export.ToFile(report, export.NewTextExporter(), opts)
package export
