// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// TimestampLayout is the server's timestamp format.
const TimestampLayout = "2006-01-02T15:04:05Z"

// =============================================================================
// ENTITIES
// =============================================================================

// Academic is a faculty member.
type Academic struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Department     string `json:"department"`
	Qualification  string `json:"qualification"`
	Experience     Number `json:"experience"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	RegistrationID string `json:"registration_id"`
}

// Student is an enrolled student.
type Student struct {
	ID             string `json:"id"`
	StudentName    string `json:"student_name"`
	LoginID        string `json:"login_id"`
	Section        string `json:"section"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DOB            string `json:"dob"`
	Gender         string `json:"gender"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	RegistrationID string `json:"registration_id"`
}

// Event is a campus event.
type Event struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Time12          string `json:"time_12"`
	OrganizerName   string `json:"organizer_name"`
	ClubName        string `json:"club_name"`
	ChiefGuest      string `json:"chief_guest"`
	Description     string `json:"description"`
	Capacity        Number `json:"capacity"`
	RegisteredCount Number `json:"registered_count"`
	Venue           string `json:"venue"`
	Status          string `json:"status"`
}

// Full reports whether every seat is taken.
func (e Event) Full() bool {
	return e.Capacity > 0 && e.RegisteredCount >= e.Capacity
}

// Seats renders "registered/capacity".
func (e Event) Seats() string {
	return strconv.Itoa(int(e.RegisteredCount)) + "/" + strconv.Itoa(int(e.Capacity))
}

// Registration is one student's sign-up for an event.
type Registration struct {
	Username     string `json:"username"`
	StudentName  string `json:"student_name"`
	Section      string `json:"section"`
	RegisteredAt string `json:"registered_at"`
}

// =============================================================================
// TIMETABLE
// =============================================================================

// Days are the teaching days in week order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TimetableEntry is one scheduled class.
type TimetableEntry struct {
	ID          string `json:"id"`
	Day         string `json:"day"`
	Section     string `json:"section"`
	StartTime   string `json:"start_time"`
	StartTime12 string `json:"start_time_12"`
	EndTime     string `json:"end_time"`
	EndTime12   string `json:"end_time_12"`
	ClassName   string `json:"class_name"`
	FacultyName string `json:"faculty_name"`
	Subject     string `json:"subject"`
	Classroom   string `json:"classroom"`
	Building    string `json:"building"`
}

// Timetable maps a day name to its classes.
type Timetable map[string][]TimetableEntry

// Flatten returns every entry ordered by day, then start time.
func (t Timetable) Flatten() []TimetableEntry {
	var out []TimetableEntry
	for _, day := range Days {
		entries := append([]TimetableEntry(nil), t[day]...)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].StartTime < entries[j].StartTime
		})
		out = append(out, entries...)
	}
	return out
}

// On returns the classes scheduled for day.
func (t Timetable) On(day string) []TimetableEntry {
	return t[day]
}

// =============================================================================
// USERS AND AUDIT
// =============================================================================

// UserRecord is an account as listed by administrators.
type UserRecord struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	Email            string `json:"email"`
	LastLogin        string `json:"last_login"`
	RegistrationID   string `json:"registration_id"`
	ProfileCompleted bool   `json:"profile_completed"`
	ProfileStatus    string `json:"profile_status"`
	DefaultPassword  string `json:"default_password,omitempty"`
}

// Active reports whether the account may sign in.
func (u UserRecord) Active() bool {
	return strings.EqualFold(u.Status, "active")
}

// Activity is one audit log entry.
type Activity struct {
	Timestamp   string `json:"timestamp"`
	User        string `json:"user"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Status      string `json:"status"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalAcademics int `json:"total_academics"`
	TotalStudents  int `json:"total_students"`
	TotalEvents    int `json:"total_events"`
	ActiveSessions int `json:"active_sessions"`
	TodayClasses   int `json:"today_classes"`
}

// Profile holds the personal details a user completes after first login.
type Profile struct {
	FirstName     string `json:"first_name" validate:"required,max=50"`
	LastName      string `json:"last_name" validate:"required,max=50"`
	DOB           string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required,oneof=Male Female Other"`
	MaritalStatus string `json:"marital_status" validate:"required,oneof=Single Married Divorced Widowed"`
	FatherName    string `json:"father_name" validate:"required,max=100"`
	MotherName    string `json:"mother_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,e164|numeric"`
	Address       string `json:"address,omitempty" validate:"max=250"`
}

// =============================================================================
// HELPERS
// =============================================================================

// Number accepts a JSON number or a numeric string. The server stores some
// counters as strings.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = 0
		return nil
	}
	var i int
	if err := json.Unmarshal(b, &i); err == nil {
		*n = Number(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = Number(i)
	return nil
}

// String returns the decimal form.
func (n Number) String() string { return strconv.Itoa(int(n)) }

// ParseTimestamp parses a server timestamp. ok is false for empty or
// malformed input.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}

// Ago renders a server timestamp relative to now ("3 hours ago"). Unparsable
// values come back unchanged and empty ones as "never".
func Ago(s string, now time.Time) string {
	if s == "" {
		return "never"
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
