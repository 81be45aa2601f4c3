// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the report rows as JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export renders r.
func (e *JSONExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	rows := r.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	return json.MarshalIndent(struct {
		Kind      string           `json:"kind"`
		Generated string           `json:"generated"`
		Rows      []map[string]any `json:"rows"`
	}{string(r.Kind), r.Generated.Format(time.RFC3339), rows}, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns "application/json".
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
