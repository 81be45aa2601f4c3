// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
)

// ExportKind names an exportable data set.
type ExportKind string

const (
	ExportAcademics  ExportKind = "academics"
	ExportStudents   ExportKind = "students"
	ExportTimetable  ExportKind = "timetable"
	ExportActivities ExportKind = "activities"
	ExportUsers      ExportKind = "users"
)

// ExportFormat is a download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// exportColumns fixes the column order of each export. JSON objects lose key
// order, so both ends agree on this table.
var exportColumns = map[ExportKind][]string{
	ExportAcademics: {
		"ID", "Name", "Username", "Department", "Qualification", "Experience",
		"Email", "Phone", "Status", "Registration ID",
	},
	ExportStudents: {
		"ID", "Student Name", "Username", "Section", "First Name", "Last Name",
		"DOB", "Gender", "Email", "Status", "Registration ID",
	},
	ExportTimetable: {
		"Day", "Section", "Start Time", "End Time", "Class Name", "Faculty",
		"Subject", "Classroom", "Building",
	},
	ExportActivities: {
		"Timestamp", "User", "Action", "Description", "Status", "Entity Type", "Entity ID",
	},
	ExportUsers: {
		"Username", "Role", "Status", "Email", "Profile Completed", "Registration ID", "Last Login",
	},
}

// ParseExportKind validates s.
func ParseExportKind(s string) (ExportKind, error) {
	k := ExportKind(s)
	if _, ok := exportColumns[k]; !ok {
		return "", fmt.Errorf("unknown export type %q", s)
	}
	return k, nil
}

// Columns returns the column order of k.
func (k ExportKind) Columns() []string {
	return exportColumns[k]
}

// OrderColumns returns the known columns of k present in row, followed by any
// unknown keys sorted by name.
func (k ExportKind) OrderColumns(row map[string]any) []string {
	seen := make(map[string]bool, len(row))
	var cols []string
	for _, c := range exportColumns[k] {
		if _, ok := row[c]; ok {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	var extra []string
	for c := range row {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}
