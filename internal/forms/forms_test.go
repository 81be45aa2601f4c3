// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/model"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *fault.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

// =============================================================================
// BIND TESTS
// =============================================================================

func TestBind_NormalizesUnlessRaw(t *testing.T) {
	var req ChangePassword
	Bind(map[string]string{
		"current_password": " secret ",
		"new_password":     "abcdef",
		"confirm_password": "abcdef",
	}, &req)
	require.Equal(t, " secret ", req.Current, "passwords are bound untouched")

	var s AddStudent
	Bind(map[string]string{"student_name": "  Ｊａｎｅ Doe ", "section": "A"}, &s)
	require.Equal(t, "Jane Doe", s.StudentName)
}

func TestBind_List(t *testing.T) {
	var req ClearData
	Bind(map[string]string{"type": "partial", "sections": "a, ,b ,"}, &req)
	require.Equal(t, []string{"A", "B"}, req.Sections)
}

// =============================================================================
// VALIDATE TESTS
// =============================================================================

func TestValidate_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		field   string
		message string
	}{
		{"missing current", map[string]string{"new_password": "abcdef", "confirm_password": "abcdef"},
			"current_password", "Current Password is required"},
		{"short", map[string]string{"current_password": "x", "new_password": "abc", "confirm_password": "abc"},
			"new_password", "New Password must be at least 6 characters"},
		{"mismatch", map[string]string{"current_password": "x", "new_password": "abcdef", "confirm_password": "abcdeg"},
			"confirm_password", "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BindAndValidate(tt.values, &ChangePassword{})
			require.Equal(t, tt.message, fields(t, err)[tt.field])
		})
	}

	require.NoError(t, BindAndValidate(map[string]string{
		"current_password": "x", "new_password": "abcdef", "confirm_password": "abcdef",
	}, &ChangePassword{}))
}

func TestValidate_AddAcademic(t *testing.T) {
	err := BindAndValidate(map[string]string{
		"name": "Dr. Rao", "department": "CS", "qualification": "PhD",
		"experience": "99", "email": "rao@", "phone": "12ab",
	}, &AddAcademic{})
	got := fields(t, err)
	require.Equal(t, "Experience must be a number between 0 and 60", got["experience"])
	require.Equal(t, "Invalid email format", got["email"])
	require.Equal(t, "Invalid phone number format", got["phone"])
	require.NotContains(t, got, "name")

	require.NoError(t, BindAndValidate(map[string]string{
		"name": "Dr. Rao", "department": "CS", "qualification": "PhD",
		"experience": "12", "email": "rao@uni.edu", "phone": "+91 98765 43210",
	}, &AddAcademic{}))
}

func TestValidate_TimetableEndAfterStart(t *testing.T) {
	base := map[string]string{
		"day": "Monday", "class_name": "BSc A", "faculty_name": "Dr. Rao",
		"subject": "Algebra", "section": "A",
	}
	with := func(start, end string) map[string]string {
		m := map[string]string{"start_time": start, "end_time": end}
		for k, v := range base {
			m[k] = v
		}
		return m
	}

	err := BindAndValidate(with("10:00", "09:00"), &AddTimetable{})
	require.Equal(t, "End time must be after start time", fields(t, err)["end_time"])

	require.NoError(t, BindAndValidate(with("9:00 am", "10:30 AM"), &AddTimetable{}))

	err = BindAndValidate(with("25:00", "10:00"), &AddTimetable{})
	require.Equal(t, "Start Time must be a time (HH:MM)", fields(t, err)["start_time"])
}

func TestValidate_ClearData(t *testing.T) {
	err := BindAndValidate(map[string]string{"type": "partial"}, &ClearData{})
	require.Equal(t, "Sections is required", fields(t, err)["sections"])

	require.NoError(t, BindAndValidate(map[string]string{"type": "all"}, &ClearData{}))
	require.NoError(t, BindAndValidate(map[string]string{"type": "partial", "sections": "A"}, &ClearData{}))
}

func TestValidateProfile(t *testing.T) {
	p := &model.Profile{
		FirstName: "Jane", LastName: "Doe", DOB: "2003-02-30", Gender: "Male",
		MaritalStatus: "Single", FatherName: "J", MotherName: "M", Email: "jane@uni.edu",
	}
	got := fields(t, ValidateProfile(p))
	require.Equal(t, map[string]string{"dob": "Dob must be a date (YYYY-MM-DD)"}, got)

	p.DOB = "2003-02-28"
	require.NoError(t, ValidateProfile(p))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:30", 570, true},
		{"9:30 pm", 1290, true},
		{"12:00 AM", 0, true},
		{"noon", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestLabel(t *testing.T) {
	require.Equal(t, "First Name", Label("first_name"))
}
