// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/model"
)

var generated = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

func sampleReport() *Report {
	return &Report{
		Kind:      model.ExportAcademics,
		Generated: generated,
		Rows: []map[string]any{
			{"Name": "Dr. <b>Rao</b>", "ID": "ACM_1", "Experience": float64(12), "Zeta": "x|y"},
			{"Name": "Ana", "ID": "ACM_2", "Experience": float64(3), "Zeta": ""},
		},
	}
}

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestDecodeReport(t *testing.T) {
	body := []byte(`{"success":true,"format":"pdf","filename":"students","data":[{"ID":"STU_1"}]}`)
	r, err := DecodeReport(model.ExportStudents, body, generated)
	require.NoError(t, err)
	require.Len(t, r.Rows, 1)
	require.Equal(t, "STUDENTS REPORT", r.Title())

	_, err = DecodeReport(model.ExportStudents, []byte(`{"success":false,"message":"Invalid data type"}`), generated)
	require.ErrorContains(t, err, "Invalid data type")

	_, err = DecodeReport(model.ExportStudents, []byte(`not json`), generated)
	require.Error(t, err)
}

func TestReport_Columns(t *testing.T) {
	r := sampleReport()
	require.Equal(t, []string{"ID", "Name", "Experience", "Zeta"}, r.Columns())
	require.Equal(t, []string{"ACM_1", "Dr. <b>Rao</b>", "12", "x|y"}, r.Cells(0, r.Columns()))

	empty := &Report{Kind: model.ExportUsers, Generated: generated}
	require.Equal(t, model.ExportUsers.Columns(), empty.Columns())
}

// =============================================================================
// EXPORTER TESTS
// =============================================================================

func TestTextExporter(t *testing.T) {
	out, err := NewTextExporter().Export(sampleReport())
	require.NoError(t, err)
	lines := strings.Split(string(out), "\n")
	require.Equal(t, "ACADEMICS REPORT", lines[0])
	require.Equal(t, "Generated: 2025-03-03 09:30:00", lines[1])
	require.True(t, strings.HasPrefix(lines[4], "ID     Name"), lines[4])
	require.Contains(t, string(out), "ACM_2  Ana")
}

func TestMarkdownExporter_EscapesPipes(t *testing.T) {
	out, err := NewMarkdownExporter().Export(sampleReport())
	require.NoError(t, err)
	require.Contains(t, string(out), `| ACM_1 | Dr. <b>Rao</b> | 12 | x\|y |`)
}

func TestHTMLExporter_EscapesCells(t *testing.T) {
	out, err := NewHTMLExporter().Export(sampleReport())
	require.NoError(t, err)
	require.NotContains(t, string(out), "<b>Rao</b>")
	require.Contains(t, string(out), "Dr. &lt;b&gt;Rao&lt;/b&gt;")
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter().Export(&Report{Kind: model.ExportUsers, Generated: generated})
	require.NoError(t, err)
	var decoded struct {
		Kind string           `json:"kind"`
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "users", decoded.Kind)
	require.NotNil(t, decoded.Rows)
}

func TestExporters_RejectMissingTime(t *testing.T) {
	for _, e := range []Exporter{NewTextExporter(), NewMarkdownExporter(), NewHTMLExporter(), NewJSONExporter()} {
		_, err := e.Export(&Report{Kind: model.ExportUsers})
		require.Error(t, err, e.FileExtension())
	}
}

func TestForFormat(t *testing.T) {
	require.Equal(t, ".md", ForFormat("markdown").FileExtension())
	require.Equal(t, ".html", ForFormat(".HTML").FileExtension())
	require.Equal(t, ".txt", ForFormat("pdf").FileExtension())
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ToFile(sampleReport(), NewTextExporter(), &Options{OutputDir: dir})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "academics_20250303.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "ACADEMICS REPORT"))
}

func TestSaveDownload(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveDownload("../../etc/students_20250303.csv", "students.csv", []byte("ID\n"), &Options{OutputDir: dir})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "students_20250303.csv"), path)

	path, err = SaveDownload("", "users.csv", []byte("x"), &Options{OutputDir: dir})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "users.csv"), path)
}

func TestFilenameSanitization(t *testing.T) {
	tests := []struct {
		input    string
		mustNot  []string
		mustHave []string
	}{
		{"Test/Path\\Name:With*Special?Chars", []string{"/", "\\", ":", "*", "?"}, []string{"-"}},
		{"Test<HTML>Tags|Pipe", []string{"<", ">", "|"}, []string{"-"}},
		{"Test With Spaces\tAnd\nNewlines\r", []string{" ", "\t", "\n", "\r"}, []string{"_"}},
		{"Test\x00\x01\x1fControl\x7fChars", []string{"\x00", "\x01", "\x1f", "\x7f"}, []string{"-"}},
	}

	for _, tt := range tests {
		result := sanitizeFilename(tt.input)
		for _, char := range tt.mustNot {
			require.NotContains(t, result, char, tt.input)
		}
		for _, char := range tt.mustHave {
			require.Contains(t, result, char, tt.input)
		}
	}
	require.Equal(t, "export", sanitizeFilename(".."))
}
