// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPortal(t *testing.T, opts ...Option) (*Portal, *httptest.Server) {
	t.Helper()
	p := New(opts...)
	ts := httptest.NewServer(p.Handler())
	t.Cleanup(ts.Close)
	return p, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any, http.Header) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(data, &out))
	} else {
		out = map[string]any{"raw": string(data)}
	}
	return resp.StatusCode, out, resp.Header
}

func adminToken(t *testing.T, p *Portal) string {
	t.Helper()
	tok, err := p.IssueToken(AdminUsername)
	require.NoError(t, err)
	return tok
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestLogin(t *testing.T) {
	p, ts := newTestPortal(t)
	p.AddAccount(Account{Username: "jane", Password: DefaultStudentPassword, Role: "Student"})
	p.AddAccount(Account{Username: "old", Password: "secret1", Role: "Student", Status: "inactive"})

	tests := []struct {
		name     string
		user     string
		password string
		status   int
		message  string
	}{
		{"missing fields", "", "", 400, "Username and password are required"},
		{"unknown user", "nobody", "x", 401, "Invalid credentials"},
		{"wrong password", "jane", "nope", 401, "Invalid credentials"},
		{"inactive", "old", "secret1", 403, "Account is inactive. Please contact administrator."},
		{"ok", "JANE", DefaultStudentPassword, 200, "Login successful"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := call(t, ts, "POST", "/api/auth/login", "",
				map[string]string{"username": tt.user, "password": tt.password})
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.message, body["message"])
		})
	}

	_, body, _ := call(t, ts, "POST", "/api/auth/login", "",
		map[string]string{"username": "jane", "password": DefaultStudentPassword})
	user := body["user"].(map[string]any)
	require.Equal(t, true, user["is_default_password"])
	require.NotEmpty(t, body["session_token"])
}

func TestSessionStatus_Controls(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	p, ts := newTestPortal(t, WithClock(func() time.Time { return now }))
	tok := adminToken(t, p)

	status, body, _ := call(t, ts, "GET", "/api/auth/session-status", tok, nil)
	require.Equal(t, 200, status)
	require.EqualValues(t, 900, body["remaining_seconds"])

	p.ForceRemaining(42)
	_, body, _ = call(t, ts, "GET", "/api/auth/session-status", tok, nil)
	require.EqualValues(t, 42, body["remaining_seconds"])

	p.FailSessionStatus(true)
	status, body, _ = call(t, ts, "GET", "/api/auth/session-status", tok, nil)
	require.Equal(t, 200, status)
	require.Equal(t, false, body["success"])

	p.ExpireSessions()
	status, _, _ = call(t, ts, "GET", "/api/auth/session-status", tok, nil)
	require.Equal(t, 401, status)
}

func TestRequireRole(t *testing.T) {
	p, ts := newTestPortal(t)
	p.AddAccount(Account{Username: "stu", Password: "x", Role: "Student"})
	tok, err := p.IssueToken("stu")
	require.NoError(t, err)

	status, body, _ := call(t, ts, "GET", "/api/users/list", tok, nil)
	require.Equal(t, 403, status)
	require.Equal(t, "Unauthorized", body["message"])
}

// =============================================================================
// ENTITY TESTS
// =============================================================================

func TestTimetableClash(t *testing.T) {
	p, ts := newTestPortal(t)
	tok := adminToken(t, p)

	entry := map[string]string{
		"day": "Monday", "start_time": "09:00", "end_time": "10:00",
		"class_name": "BSc A", "faculty_name": "Dr. Rao", "subject": "Algebra", "section": "a",
	}
	status, body, _ := call(t, ts, "POST", "/api/timetable/add", tok, entry)
	require.Equal(t, 201, status, body["message"])

	entry["start_time"] = "09:30"
	entry["end_time"] = "10:30"
	status, body, _ = call(t, ts, "POST", "/api/timetable/add", tok, entry)
	require.Equal(t, 409, status)
	require.Equal(t, ClashCode, body["error_code"])

	entry["section"] = "B"
	status, _, _ = call(t, ts, "POST", "/api/timetable/add", tok, entry)
	require.Equal(t, 201, status, "other sections never clash")
}

func TestEntityUpdates(t *testing.T) {
	p, ts := newTestPortal(t)
	tok := adminToken(t, p)

	academic := map[string]string{
		"name": "Dr. Rao", "department": "Maths", "qualification": "PhD",
		"experience": "10", "email": "rao@campus.edu", "phone": "9876543210",
	}
	status, body, _ := call(t, ts, "POST", "/api/academics/add", tok, academic)
	require.Equal(t, 201, status, body["message"])
	acadID := body["academic"].(map[string]any)["id"].(string)

	academic["department"] = "Physics"
	academic["experience"] = "12"
	status, body, _ = call(t, ts, "PUT", "/api/academics/"+acadID, tok, academic)
	require.Equal(t, 200, status, body["message"])
	require.Equal(t, "Academic updated successfully", body["message"])
	_, body, _ = call(t, ts, "GET", "/api/academics/"+acadID+"/view", tok, nil)
	require.Equal(t, "Physics", body["academic"].(map[string]any)["department"])

	academic["experience"] = "99"
	status, body, _ = call(t, ts, "PUT", "/api/academics/"+acadID, tok, academic)
	require.Equal(t, 400, status)
	require.Equal(t, "Experience must be between 0 and 60 years", body["message"])

	status, _, _ = call(t, ts, "PUT", "/api/academics/ACM-none", tok, academic)
	require.Equal(t, 404, status)

	status, body, _ = call(t, ts, "POST", "/api/students/add", tok,
		map[string]string{"student_name": "Asha", "section": "a"})
	require.Equal(t, 201, status, body["message"])
	stuID := body["student"].(map[string]any)["id"].(string)

	status, body, _ = call(t, ts, "PUT", "/api/students/"+stuID, tok,
		map[string]string{"student_name": "Asha K", "section": "b"})
	require.Equal(t, 200, status, body["message"])
	student := body["student"].(map[string]any)
	require.Equal(t, "Asha K", student["student_name"])
	require.Equal(t, "B", student["section"])

	entry := map[string]string{
		"day": "Monday", "start_time": "09:00", "end_time": "10:00",
		"class_name": "BSc A", "faculty_name": "Dr. Rao", "subject": "Algebra", "section": "A",
	}
	status, body, _ = call(t, ts, "POST", "/api/timetable/add", tok, entry)
	require.Equal(t, 201, status, body["message"])
	firstID := body["timetable_entry"].(map[string]any)["id"].(string)
	entry["start_time"], entry["end_time"] = "11:00", "12:00"
	status, body, _ = call(t, ts, "POST", "/api/timetable/add", tok, entry)
	require.Equal(t, 201, status, body["message"])

	// Moving within its own slot never clashes with itself.
	entry["start_time"], entry["end_time"] = "09:15", "10:15"
	status, body, _ = call(t, ts, "PUT", "/api/timetable/"+firstID, tok, entry)
	require.Equal(t, 200, status, body["message"])

	entry["start_time"], entry["end_time"] = "10:30", "11:30"
	status, body, _ = call(t, ts, "PUT", "/api/timetable/"+firstID, tok, entry)
	require.Equal(t, 409, status)
	require.Equal(t, ClashCode, body["error_code"])

	entry["day"] = "Tuesday"
	status, body, _ = call(t, ts, "PUT", "/api/timetable/"+firstID, tok, entry)
	require.Equal(t, 200, status, body["message"])
	_, body, _ = call(t, ts, "GET", "/api/timetable/list", tok, nil)
	days := body["data"].(map[string]any)
	require.Len(t, days["Monday"], 1)
	require.Len(t, days["Tuesday"], 1)
	require.Equal(t, firstID, days["Tuesday"].([]any)[0].(map[string]any)["id"])
}

func TestEventRegistration(t *testing.T) {
	p, ts := newTestPortal(t)
	tok := adminToken(t, p)

	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	status, body, _ := call(t, ts, "POST", "/api/events/add", tok, map[string]string{
		"title": "Hackathon", "date": date, "time": "10:00", "organizer_name": "Ana",
		"club_name": "Coding Club", "capacity": "1",
	})
	require.Equal(t, 201, status, body["message"])
	id := body["event"].(map[string]any)["id"].(string)

	p.AddAccount(Account{Username: "s1", Password: "x", Role: "Student"})
	p.AddAccount(Account{Username: "s2", Password: "x", Role: "Student"})
	t1, _ := p.IssueToken("s1")
	t2, _ := p.IssueToken("s2")

	status, _, _ = call(t, ts, "POST", "/api/events/"+id+"/register", tok, nil)
	require.Equal(t, 403, status, "admins cannot register")

	status, _, _ = call(t, ts, "POST", "/api/events/"+id+"/register", t1, nil)
	require.Equal(t, 200, status)
	_, body, _ = call(t, ts, "POST", "/api/events/"+id+"/register", t1, nil)
	require.Equal(t, "Already registered for this event", body["message"])
	_, body, _ = call(t, ts, "POST", "/api/events/"+id+"/register", t2, nil)
	require.Equal(t, "Event is full", body["message"])
}

func TestClearPartialRequiresSections(t *testing.T) {
	p, ts := newTestPortal(t)
	tok := adminToken(t, p)

	status, body, _ := call(t, ts, "POST", "/api/data/clear", tok, map[string]any{"type": "partial"})
	require.Equal(t, 400, status)
	require.Equal(t, "Sections required for partial clear", body["message"])

	p.Seed(2, 7)
	status, body, _ = call(t, ts, "POST", "/api/data/clear", tok, map[string]any{"type": "all"})
	require.Equal(t, 200, status)
	require.Len(t, body["cleared"], 6)

	_, ok := p.Account(AdminUsername)
	require.True(t, ok, "administrator survives a full clear")
}

func TestExport(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	p, ts := newTestPortal(t, WithClock(func() time.Time { return now }))
	p.Seed(1, 1)
	tok := adminToken(t, p)

	status, body, header := call(t, ts, "GET", "/api/export/academics?format=csv", tok, nil)
	require.Equal(t, 200, status)
	require.Contains(t, header.Get("Content-Disposition"), "academics_20250303.csv")
	require.True(t, strings.HasPrefix(body["raw"].(string), "ID,Name,Username"))

	_, body, _ = call(t, ts, "GET", "/api/export/users?format=pdf", tok, nil)
	require.Equal(t, "pdf", body["format"])
	require.NotEmpty(t, body["data"])

	status, _, _ = call(t, ts, "GET", "/api/export/grades", tok, nil)
	require.Equal(t, 400, status)
}

func TestSeedIsDeterministic(t *testing.T) {
	a, b := New(), New()
	a.Seed(3, 99)
	b.Seed(3, 99)

	require.Len(t, a.academics, 3)
	require.Len(t, a.students, 6)
	for i := range a.academics {
		require.Equal(t, a.academics[i].Name, b.academics[i].Name)
	}
}

func TestRequestsAreRecorded(t *testing.T) {
	p, ts := newTestPortal(t)
	tok := adminToken(t, p)
	p.Override("GET", "/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, fail("boom"))
	})

	status, _, _ := call(t, ts, "GET", "/api/dashboard/stats", tok, nil)
	require.Equal(t, 500, status)

	reqs := p.RequestsTo("/api/dashboard/stats")
	require.Len(t, reqs, 1)
	require.Equal(t, tok, reqs[0].Token)
}
