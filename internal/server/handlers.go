// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/eduportal-tui/internal/model"
)

// routes builds the chi router.
func (p *Portal) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(p.recoverPanics, p.logRequests, p.record)

	r.Post("/api/auth/login", p.handleLogin)
	r.Post("/api/auth/forgot-password", p.handleForgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(p.requireAuth)

		r.Post("/api/auth/logout", p.handleLogout)
		r.Get("/api/auth/session-status", p.handleSessionStatus)
		r.Get("/api/user/theme", p.handleGetTheme)
		r.Put("/api/user/theme", p.handlePutTheme)
		r.Get("/api/dashboard/stats", p.handleStats)
		r.Put("/api/users/change-password", p.handleChangePassword)
		r.Get("/api/profile/get", p.handleGetProfile)
		r.Put("/api/profile/update", p.handleUpdateProfile)

		r.Get("/api/academics/list", p.handleListAcademics)
		r.Get("/api/academics/{id}/view", p.handleViewAcademic)
		r.Get("/api/students/list", p.handleListStudents)
		r.Get("/api/students/{id}/view", p.handleViewStudent)
		r.Get("/api/events/list", p.handleListEvents)
		r.Post("/api/events/{id}/register", p.handleRegisterEvent)
		r.Get("/api/events/{id}/registrations", p.handleRegistrations)
		r.Get("/api/timetable/list", p.handleListTimetable)

		r.Group(func(r chi.Router) {
			r.Use(requireRole("Admin", "Faculty"))
			r.Get("/api/users/{username}/details", p.handleUserDetails)
			r.Post("/api/students/add", p.handleAddStudent)
			r.Put("/api/students/{id}", p.handleUpdateStudent)
			r.Delete("/api/students/{id}", p.handleDeleteStudent)
			r.Post("/api/events/add", p.handleAddEvent)
			r.Post("/api/timetable/add", p.handleAddTimetable)
			r.Put("/api/timetable/{id}", p.handleUpdateTimetable)
			r.Delete("/api/timetable/{id}", p.handleDeleteTimetable)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole("Admin"))
			r.Post("/api/academics/add", p.handleAddAcademic)
			r.Put("/api/academics/{id}", p.handleUpdateAcademic)
			r.Delete("/api/academics/{id}", p.handleDeleteAcademic)
			r.Get("/api/users/list", p.handleListUsers)
			r.Post("/api/users/add", p.handleAddUser)
			r.Put("/api/users/{username}/status", p.handleUserStatus)
			r.Get("/api/activities/list", p.handleListActivities)
			r.Post("/api/data/clear", p.handleClear)
			r.Post("/api/backup/create", p.handleBackup)
			r.Get("/api/export/{type}", p.handleExport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, fail("Resource not found"))
	})
	return r
}

// ============================================================================
// AUTH
// ============================================================================

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, fail("Username and password are required"))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a := p.resolveAccount(req.Username)
	if a == nil {
		writeJSON(w, http.StatusUnauthorized, fail("Invalid credentials"))
		return
	}
	if a.Status != "active" {
		writeJSON(w, http.StatusForbidden, fail("Account is inactive. Please contact administrator."))
		return
	}
	if a.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, fail("Invalid credentials"))
		return
	}

	isDefault := a.defaultPassword()
	if !isDefault {
		a.PasswordChanged = true
	}
	a.LastLogin = p.timestamp()
	a.LoginCount++

	token, err := p.openSession(a)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, fail("Could not create session"))
		return
	}
	writeJSON(w, http.StatusOK, object{
		"success": true,
		"message": "Login successful",
		"user": object{
			"username":            a.Username,
			"role":                a.Role,
			"profile_completed":   a.ProfileCompleted,
			"password_changed":    a.PasswordChanged,
			"is_default_password": isDefault,
		},
		"session_token": token,
	})
}

// resolveAccount matches username case-insensitively. Callers hold p.mu.
func (p *Portal) resolveAccount(username string) *Account {
	if a, ok := p.accounts[username]; ok {
		return a
	}
	for name, a := range p.accounts {
		if strings.EqualFold(name, username) {
			return a
		}
	}
	return nil
}

func (p *Portal) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DOBYear     string `json:"dob_year"`
		NewPassword string `json:"new_password"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if req.Username == "" || req.DOBYear == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, fail("Username, year of birth, and new password are required."))
		return
	}
	if _, err := strconv.Atoi(req.DOBYear); err != nil || len(req.DOBYear) != 4 {
		writeJSON(w, http.StatusBadRequest, fail("Enter a valid 4-digit year of birth."))
		return
	}
	if len(req.NewPassword) < MinPasswordLength {
		writeJSON(w, http.StatusBadRequest, fail(fmt.Sprintf("New password must be at least %d characters.", MinPasswordLength)))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	a := p.resolveAccount(req.Username)
	if a == nil {
		writeJSON(w, http.StatusNotFound, fail("Unable to verify the provided details."))
		return
	}
	if a.Profile.DOB == "" {
		writeJSON(w, http.StatusBadRequest, fail("DOB is not available. Please contact the administrator."))
		return
	}
	if !strings.HasPrefix(a.Profile.DOB, req.DOBYear+"-") {
		writeJSON(w, http.StatusForbidden, fail("The provided details do not match our records."))
		return
	}
	a.Password = req.NewPassword
	a.PasswordChanged = true
	p.logActivity(a.Username, "PASSWORD_RESET", "User", a.Username, "Password reset via DOB verification")
	writeJSON(w, http.StatusOK, ok("Password reset successfully. You can now log in with your new password."))
}

func (p *Portal) handleLogout(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	delete(p.sessions, bearerToken(r))
	p.mu.Unlock()
	writeJSON(w, http.StatusOK, ok("Logout successful"))
}

func (p *Portal) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusFails {
		writeJSON(w, http.StatusOK, fail("Session expired"))
		return
	}
	remaining := int(s.expires.Sub(p.now()).Seconds())
	if p.forcedRemaining != nil {
		remaining = *p.forcedRemaining
	}
	if remaining < 0 {
		remaining = 0
	}
	writeJSON(w, http.StatusOK, object{
		"success":           true,
		"remaining_seconds": remaining,
		"total_seconds":     int(p.timeout.Seconds()),
		"user":              object{"username": s.username, "role": s.role},
	})
}

// ============================================================================
// THEME, DASHBOARD, PASSWORD, PROFILE
// ============================================================================

func (p *Portal) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[sessionFrom(r).username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, object{"success": true, "theme": a.Theme})
}

func (p *Portal) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		writeJSON(w, http.StatusBadRequest, fail(`Invalid theme. Use "light" or "dark"`))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[sessionFrom(r).username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	a.Theme = req.Theme
	writeJSON(w, http.StatusOK, object{"success": true, "message": "Theme updated successfully", "theme": req.Theme})
}

func (p *Portal) handleStats(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := model.Stats{
		TotalUsers:     len(p.accounts),
		ActiveSessions: len(p.sessions),
		TodayClasses:   len(p.timetable[p.now().Weekday().String()]),
	}
	for _, a := range p.academics {
		if a.Status == "active" {
			stats.TotalAcademics++
		}
	}
	for _, s := range p.students {
		if s.Status == "active" {
			stats.TotalStudents++
		}
	}
	for _, e := range p.events {
		if e.Status == "active" {
			stats.TotalEvents++
		}
	}
	writeJSON(w, http.StatusOK, object{"success": true, "stats": stats})
}

func (p *Portal) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if req.Current == "" || req.New == "" {
		writeJSON(w, http.StatusBadRequest, fail("Current and new passwords are required"))
		return
	}
	if len(req.New) < MinPasswordLength {
		writeJSON(w, http.StatusBadRequest, fail("New password must be at least 6 characters"))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[sessionFrom(r).username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	if a.Password != req.Current {
		writeJSON(w, http.StatusUnauthorized, fail("Current password is incorrect"))
		return
	}
	a.Password = req.New
	a.PasswordChanged = true
	p.logActivity(a.Username, "PASSWORD_CHANGED", "User", a.Username, "Password changed")
	writeJSON(w, http.StatusOK, object{"success": true, "message": "Password changed successfully", "password_changed": true})
}

func (p *Portal) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[sessionFrom(r).username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, object{
		"success":           true,
		"profile":           a.Profile,
		"registration_id":   a.RegistrationID,
		"profile_completed": a.ProfileCompleted,
		"username":          a.Username,
		"role":              a.Role,
	})
}

func (p *Portal) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	required := []string{"first_name", "last_name", "dob", "gender", "marital_status", "father_name", "mother_name"}
	for _, field := range required {
		if strings.TrimSpace(req[field]) == "" {
			label := strings.ReplaceAll(field, "_", " ")
			writeJSON(w, http.StatusBadRequest, fail(strings.ToUpper(label[:1])+label[1:]+" is required"))
			return
		}
	}

	s := sessionFrom(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[s.username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req["email"]))
	if a.Role == "Faculty" && a.Profile.Email != "" {
		email = a.Profile.Email
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid email format"))
		return
	}
	a.Profile = model.Profile{
		FirstName:     req["first_name"],
		LastName:      req["last_name"],
		DOB:           req["dob"],
		Gender:        req["gender"],
		MaritalStatus: req["marital_status"],
		FatherName:    req["father_name"],
		MotherName:    req["mother_name"],
		Email:         email,
		Phone:         req["phone"],
		Address:       req["address"],
	}
	a.ProfileCompleted = true
	for i := range p.students {
		if p.students[i].LoginID == a.Username {
			p.students[i].FirstName = a.Profile.FirstName
			p.students[i].LastName = a.Profile.LastName
			p.students[i].DOB = a.Profile.DOB
			p.students[i].Gender = a.Profile.Gender
			p.students[i].Email = email
		}
	}
	p.logActivity(a.Username, "PROFILE_UPDATED", "User", a.Username, "Profile updated")
	writeJSON(w, http.StatusOK, ok("Profile updated successfully"))
}

// ============================================================================
// ACADEMICS
// ============================================================================

func (p *Portal) handleListAcademics(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, object{"success": true, "data": nonNil(p.academics), "total": len(p.academics)})
}

func (p *Portal) handleViewAcademic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.academics {
		if a.ID == id {
			writeJSON(w, http.StatusOK, object{"success": true, "academic": a})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Academic not found"))
}

// AcademicInput is the body of POST /api/academics/add and
// PUT /api/academics/{id}.
type AcademicInput struct {
	Name          string `json:"name"`
	Department    string `json:"department"`
	Qualification string `json:"qualification"`
	Experience    string `json:"experience"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

func (p *Portal) handleAddAcademic(w http.ResponseWriter, r *http.Request) {
	var in AcademicInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	a, status, msg := p.addAcademic(sessionFrom(r).username, in)
	if status != http.StatusCreated {
		writeJSON(w, status, fail(msg))
		return
	}
	writeJSON(w, status, object{
		"success": true,
		"message": "Academic added successfully",
		"academic": object{
			"id":               a.ID,
			"name":             a.Name,
			"username":         a.Username,
			"registration_id":  a.RegistrationID,
			"default_password": DefaultAcademicPassword,
		},
	})
}

// checkAcademic normalises and validates in and returns the experience in
// years. The academic exceptID is skipped in the duplicate email check.
// Callers hold p.mu.
func (p *Portal) checkAcademic(in *AcademicInput, exceptID string) (int, string) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Department == "" || in.Qualification == "" || in.Experience == "" || in.Email == "" || in.Phone == "" {
		return 0, "All fields are required"
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return 0, "Invalid email format"
	}
	exp, err := strconv.Atoi(strings.TrimSpace(in.Experience))
	if err != nil {
		return 0, "Experience must be a number"
	}
	if exp < 0 || exp > 60 {
		return 0, "Experience must be between 0 and 60 years"
	}
	for _, a := range p.academics {
		if a.ID != exceptID && strings.EqualFold(a.Email, in.Email) {
			return 0, "Email already exists"
		}
	}
	return exp, ""
}

// addAcademic validates and stores in. Callers hold p.mu.
func (p *Portal) addAcademic(by string, in AcademicInput) (model.Academic, int, string) {
	exp, msg := p.checkAcademic(&in, "")
	if msg != "" {
		return model.Academic{}, http.StatusBadRequest, msg
	}

	a := model.Academic{
		ID:             p.newID("ACM"),
		Name:           in.Name,
		Username:       p.username(in.Name),
		Department:     in.Department,
		Qualification:  in.Qualification,
		Experience:     model.Number(exp),
		Email:          in.Email,
		Phone:          in.Phone,
		Status:         "active",
		RegistrationID: p.registrationID(),
	}
	p.academics = append(p.academics, a)
	p.accounts[a.Username] = &Account{
		ID:             a.ID,
		Username:       a.Username,
		Password:       DefaultAcademicPassword,
		Role:           "Faculty",
		Status:         "active",
		RegistrationID: a.RegistrationID,
		Profile:        model.Profile{Email: a.Email},
		Theme:          "light",
		CreatedAt:      p.timestamp(),
	}
	p.logActivity(by, "ACADEMIC_ADDED", "Academic", a.ID, "Academic "+a.Name+" added")
	return a, http.StatusCreated, ""
}

func (p *Portal) handleUpdateAcademic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in AcademicInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.academics {
		a := &p.academics[i]
		if a.ID != id {
			continue
		}
		exp, msg := p.checkAcademic(&in, id)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, fail(msg))
			return
		}
		a.Name = in.Name
		a.Department = strings.TrimSpace(in.Department)
		a.Qualification = strings.TrimSpace(in.Qualification)
		a.Experience = model.Number(exp)
		a.Email = in.Email
		a.Phone = strings.TrimSpace(in.Phone)
		if acc := p.accounts[a.Username]; acc != nil {
			acc.Profile.Email = a.Email
		}
		p.logActivity(sessionFrom(r).username, "ACADEMIC_UPDATED", "Academic", id, "Academic "+a.Name+" updated")
		writeJSON(w, http.StatusOK, object{"success": true, "message": "Academic updated successfully", "academic": *a})
		return
	}
	writeJSON(w, http.StatusNotFound, fail("Academic not found"))
}

func (p *Portal) handleDeleteAcademic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, a := range p.academics {
		if a.ID == id {
			p.academics = append(p.academics[:i], p.academics[i+1:]...)
			delete(p.accounts, a.Username)
			p.logActivity(sessionFrom(r).username, "ACADEMIC_DELETED", "Academic", id, "Academic "+a.Name+" deleted")
			writeJSON(w, http.StatusOK, ok("Academic deleted successfully"))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Academic not found"))
}

// ============================================================================
// STUDENTS
// ============================================================================

func (p *Portal) handleListStudents(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeJSON(w, http.StatusOK, object{"success": true, "data": nonNil(p.students), "total": len(p.students)})
}

func (p *Portal) handleViewStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.students {
		if s.ID == id {
			writeJSON(w, http.StatusOK, object{"success": true, "student": s})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Student not found"))
}

func (p *Portal) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentName string `json:"student_name"`
		Section     string `json:"section"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.addStudent(sessionFrom(r).username, req.StudentName, req.Section)
	if err != "" {
		writeJSON(w, http.StatusBadRequest, fail(err))
		return
	}
	writeJSON(w, http.StatusCreated, object{
		"success": true,
		"message": "Student added successfully",
		"student": object{
			"id":               s.ID,
			"student_name":     s.StudentName,
			"login_id":         s.LoginID,
			"section":          s.Section,
			"registration_id":  s.RegistrationID,
			"default_password": DefaultStudentPassword,
		},
	})
}

// addStudent stores a student and its account. Callers hold p.mu.
func (p *Portal) addStudent(by, name, section string) (model.Student, string) {
	name = strings.TrimSpace(name)
	section = strings.ToUpper(strings.TrimSpace(section))
	if name == "" || section == "" {
		return model.Student{}, "Student name and section are required"
	}
	s := model.Student{
		ID:             p.newID("STU"),
		StudentName:    name,
		LoginID:        p.username(name),
		Section:        section,
		Status:         "active",
		RegistrationID: p.registrationID(),
	}
	p.students = append(p.students, s)
	p.accounts[s.LoginID] = &Account{
		ID:             s.ID,
		Username:       s.LoginID,
		Password:       DefaultStudentPassword,
		Role:           "Student",
		Status:         "active",
		RegistrationID: s.RegistrationID,
		Theme:          "light",
		CreatedAt:      p.timestamp(),
	}
	p.logActivity(by, "STUDENT_ADDED", "Student", s.ID, "Student "+name+" added")
	return s, ""
}

func (p *Portal) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		StudentName string `json:"student_name"`
		Section     string `json:"section"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.students {
		s := &p.students[i]
		if s.ID != id {
			continue
		}
		name := strings.TrimSpace(req.StudentName)
		section := strings.ToUpper(strings.TrimSpace(req.Section))
		if name == "" || section == "" {
			writeJSON(w, http.StatusBadRequest, fail("Student name and section are required"))
			return
		}
		s.StudentName = name
		s.Section = section
		p.logActivity(sessionFrom(r).username, "STUDENT_UPDATED", "Student", id, "Student "+name+" updated")
		writeJSON(w, http.StatusOK, object{"success": true, "message": "Student updated successfully", "student": *s})
		return
	}
	writeJSON(w, http.StatusNotFound, fail("Student not found"))
}

func (p *Portal) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.students {
		if s.ID == id {
			p.students = append(p.students[:i], p.students[i+1:]...)
			delete(p.accounts, s.LoginID)
			p.logActivity(sessionFrom(r).username, "STUDENT_DELETED", "Student", id, "Student "+s.StudentName+" deleted")
			writeJSON(w, http.StatusOK, ok("Student deleted successfully"))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Student not found"))
}

// ============================================================================
// EVENTS
// ============================================================================

func (p *Portal) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := append([]model.Event(nil), p.events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	writeJSON(w, http.StatusOK, object{"success": true, "data": nonNil(events), "total": len(events)})
}

// EventInput is the body of POST /api/events/add.
type EventInput struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	OrganizerName string `json:"organizer_name"`
	ClubName      string `json:"club_name"`
	Capacity      string `json:"capacity"`
	ChiefGuest    string `json:"chief_guest"`
	Description   string `json:"description"`
	Venue         string `json:"venue"`
}

func (p *Portal) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in EventInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, msg := p.addEvent(sessionFrom(r).username, in)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, fail(msg))
		return
	}
	writeJSON(w, http.StatusCreated, object{
		"success": true,
		"message": "Event created successfully",
		"event":   object{"id": e.ID, "title": e.Title, "time_12": e.Time12},
	})
}

// addEvent validates and stores in. Callers hold p.mu.
func (p *Portal) addEvent(by string, in EventInput) (model.Event, string) {
	if in.Title == "" || in.Date == "" || in.Time == "" || in.OrganizerName == "" || in.ClubName == "" || in.Capacity == "" {
		return model.Event{}, "All required fields must be provided"
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(in.Capacity))
	if err != nil {
		return model.Event{}, "Capacity must be a number"
	}
	if capacity < 1 || capacity > 10000 {
		return model.Event{}, "Capacity must be between 1 and 10000"
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return model.Event{}, "Invalid date format"
	}
	y, m, d := p.now().Date()
	if date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return model.Event{}, "Event date must be today or in the future"
	}
	clock, err := parseClock(in.Time)
	if err != nil {
		return model.Event{}, "Invalid time format"
	}
	e := model.Event{
		ID:            p.newID("EVT"),
		Title:         in.Title,
		Date:          in.Date,
		Time:          clock.canonical,
		Time12:        clock.display,
		OrganizerName: in.OrganizerName,
		ClubName:      in.ClubName,
		ChiefGuest:    in.ChiefGuest,
		Description:   in.Description,
		Capacity:      model.Number(capacity),
		Venue:         in.Venue,
		Status:        "active",
	}
	p.events = append(p.events, e)
	p.logActivity(by, "EVENT_ADDED", "Event", e.ID, "Event "+e.Title+" added")
	return e, ""
}

func (p *Portal) handleRegisterEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := sessionFrom(r)

	p.mu.Lock()
	defer p.mu.Unlock()
	idx := -1
	for i, e := range p.events {
		if e.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, fail("Event not found"))
		return
	}
	if s.role != "Student" {
		writeJSON(w, http.StatusForbidden, fail("Only students can register for events"))
		return
	}
	for _, reg := range p.registrations[id] {
		if reg.Username == s.username {
			writeJSON(w, http.StatusBadRequest, fail("Already registered for this event"))
			return
		}
	}
	event := &p.events[idx]
	if len(p.registrations[id]) >= int(event.Capacity) {
		writeJSON(w, http.StatusBadRequest, fail("Event is full"))
		return
	}
	reg := model.Registration{Username: s.username, StudentName: s.username, RegisteredAt: p.timestamp()}
	for _, st := range p.students {
		if st.LoginID == s.username {
			reg.StudentName, reg.Section = st.StudentName, st.Section
		}
	}
	p.registrations[id] = append(p.registrations[id], reg)
	event.RegisteredCount = model.Number(len(p.registrations[id]))
	p.logActivity(s.username, "EVENT_REGISTERED", "Event", id, "Registered for event "+event.Title)
	writeJSON(w, http.StatusOK, ok("Successfully registered for event"))
}

func (p *Portal) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.ID == id {
			regs := nonNil(p.registrations[id])
			writeJSON(w, http.StatusOK, object{
				"success":       true,
				"event":         e,
				"registrations": regs,
				"total":         len(regs),
				"capacity":      int(e.Capacity),
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Event not found"))
}

// ============================================================================
// TIMETABLE
// ============================================================================

func (p *Portal) handleListTimetable(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(model.Timetable, len(model.Days))
	for _, day := range model.Days {
		out[day] = nonNil(p.timetable[day])
	}
	writeJSON(w, http.StatusOK, object{"success": true, "data": out})
}

// TimetableInput is the body of POST /api/timetable/add and
// PUT /api/timetable/{id}.
type TimetableInput struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ClassName   string `json:"class_name"`
	FacultyName string `json:"faculty_name"`
	Subject     string `json:"subject"`
	Section     string `json:"section"`
	Classroom   string `json:"classroom"`
	Building    string `json:"building"`
}

// ClashCode is the error code of a timetable clash.
const ClashCode = "TT_CLASH_001"

func (p *Portal) handleAddTimetable(w http.ResponseWriter, r *http.Request) {
	var in TimetableInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, clash, msg := p.addTimetable(sessionFrom(r).username, in)
	writeTimetable(w, http.StatusCreated, "Class added successfully", entry, clash, msg)
}

// writeTimetable answers an add or update of a timetable entry.
func writeTimetable(w http.ResponseWriter, status int, message string, entry model.TimetableEntry, clash *model.TimetableEntry, msg string) {
	switch {
	case clash != nil:
		writeJSON(w, http.StatusConflict, object{
			"success":           false,
			"message":           fmt.Sprintf("Time clash detected! %s is scheduled from %s - %s", clash.ClassName, clash.StartTime12, clash.EndTime12),
			"error_code":        ClashCode,
			"conflicting_class": clash.ClassName,
			"conflicting_time":  clash.StartTime12 + " - " + clash.EndTime12,
		})
	case msg != "":
		writeJSON(w, http.StatusBadRequest, fail(msg))
	default:
		writeJSON(w, status, object{
			"success":         true,
			"message":         message,
			"timetable_entry": entry,
		})
	}
}

// checkTimetable normalises and validates in, returning the parsed times or
// the class it overlaps in the same section. The entry exceptID never clashes
// with itself. Callers hold p.mu.
func (p *Portal) checkTimetable(in *TimetableInput, exceptID string) (clockTime, clockTime, *model.TimetableEntry, string) {
	in.Section = strings.ToUpper(strings.TrimSpace(in.Section))
	if in.Day == "" || in.StartTime == "" || in.EndTime == "" || in.ClassName == "" ||
		in.FacultyName == "" || in.Subject == "" || in.Section == "" {
		return clockTime{}, clockTime{}, nil, "All required fields including section must be provided"
	}
	if _, known := p.timetable[in.Day]; !known {
		return clockTime{}, clockTime{}, nil, "Invalid day"
	}
	start, err1 := parseClock(in.StartTime)
	end, err2 := parseClock(in.EndTime)
	if err1 != nil || err2 != nil {
		return clockTime{}, clockTime{}, nil, "Invalid time format"
	}
	if end.minutes <= start.minutes {
		return clockTime{}, clockTime{}, nil, "End time must be after start time"
	}
	for _, other := range p.timetable[in.Day] {
		if other.ID == exceptID || !strings.EqualFold(other.Section, in.Section) {
			continue
		}
		otherStart, _ := parseClock(other.StartTime)
		otherEnd, _ := parseClock(other.EndTime)
		if start.minutes < otherEnd.minutes && otherStart.minutes < end.minutes {
			clash := other
			return clockTime{}, clockTime{}, &clash, ""
		}
	}
	return start, end, nil, ""
}

// addTimetable validates and stores in. Callers hold p.mu.
func (p *Portal) addTimetable(by string, in TimetableInput) (model.TimetableEntry, *model.TimetableEntry, string) {
	start, end, clash, msg := p.checkTimetable(&in, "")
	if clash != nil || msg != "" {
		return model.TimetableEntry{}, clash, msg
	}
	entry := model.TimetableEntry{
		ID:          p.newID("TT"),
		Day:         in.Day,
		Section:     in.Section,
		StartTime:   start.canonical,
		StartTime12: start.display,
		EndTime:     end.canonical,
		EndTime12:   end.display,
		ClassName:   in.ClassName,
		FacultyName: in.FacultyName,
		Subject:     in.Subject,
		Classroom:   in.Classroom,
		Building:    in.Building,
	}
	p.timetable[in.Day] = append(p.timetable[in.Day], entry)
	p.logActivity(by, "TIMETABLE_ADDED", "Timetable", entry.ID,
		fmt.Sprintf("Class %s added to %s for section %s", in.ClassName, in.Day, in.Section))
	return entry, nil, ""
}

func (p *Portal) handleUpdateTimetable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in TimetableInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, found, clash, msg := p.updateTimetable(sessionFrom(r).username, id, in)
	if !found {
		writeJSON(w, http.StatusNotFound, fail("Timetable entry not found"))
		return
	}
	writeTimetable(w, http.StatusOK, "Class updated successfully", entry, clash, msg)
}

// updateTimetable replaces entry id with in, moving it when the day changes.
// Callers hold p.mu.
func (p *Portal) updateTimetable(by, id string, in TimetableInput) (model.TimetableEntry, bool, *model.TimetableEntry, string) {
	oldDay, idx := "", -1
	for day, entries := range p.timetable {
		for i, e := range entries {
			if e.ID == id {
				oldDay, idx = day, i
			}
		}
	}
	if idx < 0 {
		return model.TimetableEntry{}, false, nil, ""
	}
	start, end, clash, msg := p.checkTimetable(&in, id)
	if clash != nil || msg != "" {
		return model.TimetableEntry{}, true, clash, msg
	}
	entry := model.TimetableEntry{
		ID:          id,
		Day:         in.Day,
		Section:     in.Section,
		StartTime:   start.canonical,
		StartTime12: start.display,
		EndTime:     end.canonical,
		EndTime12:   end.display,
		ClassName:   in.ClassName,
		FacultyName: in.FacultyName,
		Subject:     in.Subject,
		Classroom:   in.Classroom,
		Building:    in.Building,
	}
	if oldDay == in.Day {
		p.timetable[oldDay][idx] = entry
	} else {
		old := p.timetable[oldDay]
		p.timetable[oldDay] = append(old[:idx:idx], old[idx+1:]...)
		p.timetable[in.Day] = append(p.timetable[in.Day], entry)
	}
	p.logActivity(by, "TIMETABLE_UPDATED", "Timetable", id,
		fmt.Sprintf("Class %s updated on %s for section %s", in.ClassName, in.Day, in.Section))
	return entry, true, nil, ""
}

func (p *Portal) handleDeleteTimetable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	for day, entries := range p.timetable {
		for i, e := range entries {
			if e.ID == id {
				p.timetable[day] = append(entries[:i], entries[i+1:]...)
				p.logActivity(sessionFrom(r).username, "TIMETABLE_DELETED", "Timetable", id, "Class "+e.ClassName+" deleted")
				writeJSON(w, http.StatusOK, ok("Class deleted successfully"))
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, fail("Timetable entry not found"))
}

type clockTime struct {
	minutes   int
	canonical string // 15:04
	display   string // 03:04 PM
}

func parseClock(s string) (clockTime, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{"15:04", "3:04 PM", "03:04 PM", "3:04PM"} {
		if t, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return clockTime{}, err
	}
	return clockTime{
		minutes:   t.Hour()*60 + t.Minute(),
		canonical: t.Format("15:04"),
		display:   t.Format("03:04 PM"),
	}, nil
}

// ============================================================================
// USERS AND ACTIVITIES
// ============================================================================

func (p *Portal) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	users := make([]model.UserRecord, 0, len(p.accounts))
	for _, a := range p.accounts {
		users = append(users, a.record())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	writeJSON(w, http.StatusOK, object{"success": true, "data": users, "total": len(users)})
}

func (p *Portal) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, fail("Name and role are required"))
		return
	}
	password := DefaultStudentPassword
	if req.Role == "Faculty" {
		password = DefaultAcademicPassword
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	a := &Account{
		ID:             p.newID("USR"),
		Username:       p.username(req.Name),
		Password:       password,
		Role:           req.Role,
		Status:         "active",
		RegistrationID: p.registrationID(),
		Theme:          "light",
		CreatedAt:      p.timestamp(),
	}
	p.accounts[a.Username] = a
	p.logActivity(sessionFrom(r).username, "USER_ADDED", "User", a.Username, "User "+a.Username+" created")
	rec := a.record()
	rec.DefaultPassword = password
	writeJSON(w, http.StatusCreated, object{"success": true, "message": "User created successfully", "user": rec})
}

func (p *Portal) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, object{"success": true, "user": object{
		"username":          a.Username,
		"role":              a.Role,
		"status":            a.Status,
		"registration_id":   a.RegistrationID,
		"profile_completed": a.ProfileCompleted,
		"profile":           a.Profile,
		"created_at":        a.CreatedAt,
		"last_login":        a.LastLogin,
		"login_count":       a.LoginCount,
	}})
}

func (p *Portal) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if req.Status != "active" && req.Status != "inactive" {
		writeJSON(w, http.StatusBadRequest, fail("Invalid status"))
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	a, found := p.accounts[username]
	if !found {
		writeJSON(w, http.StatusNotFound, fail("User not found"))
		return
	}
	old := a.Status
	a.Status = req.Status
	p.logActivity(sessionFrom(r).username, "USER_STATUS_CHANGED", "User", username,
		fmt.Sprintf("Status changed from %s to %s", old, req.Status))
	writeJSON(w, http.StatusOK, object{
		"success": true,
		"message": "User status updated",
		"user":    object{"username": username, "status": req.Status},
	})
}

func (p *Portal) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Activity, 0, limit)
	for i := len(p.activities) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, p.activities[i])
	}
	writeJSON(w, http.StatusOK, object{"success": true, "data": out, "total": len(out)})
}

// ============================================================================
// DATA MANAGEMENT
// ============================================================================

func (p *Portal) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string   `json:"type"`
		Sections []string `json:"sections"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	if req.Type == "" {
		req.Type = "partial"
	}
	by := sessionFrom(r).username

	p.mu.Lock()
	defer p.mu.Unlock()
	var cleared []string
	switch req.Type {
	case "all":
		p.academics, p.students, p.events = nil, nil, nil
		p.registrations = make(map[string][]model.Registration)
		for _, day := range model.Days {
			p.timetable[day] = nil
		}
		p.activities = nil
		for name := range p.accounts {
			if name != AdminUsername {
				delete(p.accounts, name)
			}
		}
		cleared = []string{"academics", "students", "events", "timetable", "activities", "users"}
		p.logActivity(by, "DATA_CLEARED", "System", "", "All data cleared")
	case "partial":
		if len(req.Sections) == 0 {
			writeJSON(w, http.StatusBadRequest, fail("Sections required for partial clear"))
			return
		}
		match := make(map[string]bool, len(req.Sections))
		for _, s := range req.Sections {
			match[strings.ToUpper(strings.TrimSpace(s))] = true
		}
		kept := p.students[:0]
		removed := 0
		for _, s := range p.students {
			if match[strings.ToUpper(s.Section)] {
				delete(p.accounts, s.LoginID)
				removed++
				continue
			}
			kept = append(kept, s)
		}
		p.students = kept
		joined := strings.Join(req.Sections, ", ")
		if removed > 0 {
			cleared = append(cleared, "students (sections: "+joined+")")
		}
		for day, entries := range p.timetable {
			var keep []model.TimetableEntry
			for _, e := range entries {
				if !match[strings.ToUpper(e.Section)] {
					keep = append(keep, e)
				}
			}
			p.timetable[day] = keep
		}
		cleared = append(cleared, "timetable (sections: "+joined+")")
		p.logActivity(by, "DATA_CLEARED", "System", "", "Partial data cleared for sections: "+joined)
	default:
		writeJSON(w, http.StatusBadRequest, fail("Invalid clear type"))
		return
	}
	writeJSON(w, http.StatusOK, object{"success": true, "message": "Data cleared successfully", "cleared": cleared})
}

func (p *Portal) handleBackup(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	folder := "backup_" + p.now().Format("20060102_150405")
	p.logActivity(sessionFrom(r).username, "BACKUP_CREATED", "System", "", "Backup created: "+folder)
	writeJSON(w, http.StatusOK, object{
		"success":       true,
		"message":       "Backup created successfully",
		"backup_folder": folder,
		"files":         []string{"users.json", "academics.json", "students.json", "events.json", "timetable.json", "activities.json"},
	})
}

func (p *Portal) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseExportKind(chi.URLParam(r, "type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fail("Invalid data type"))
		return
	}
	format := model.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = model.FormatCSV
	}

	p.mu.Lock()
	rows := p.exportRows(kind)
	stamp := p.now().Format("20060102")
	p.mu.Unlock()

	switch format {
	case model.FormatCSV:
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		if len(rows) > 0 {
			cols := kind.Columns()
			_ = cw.Write(cols)
			for _, row := range rows {
				record := make([]string, len(cols))
				for i, c := range cols {
					record[i] = row[c]
				}
				_ = cw.Write(record)
			}
		}
		cw.Flush()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.csv", kind, stamp))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	case model.FormatPDF:
		writeJSON(w, http.StatusOK, object{"success": true, "data": nonNil(rows), "filename": string(kind), "format": "pdf"})
	default:
		writeJSON(w, http.StatusBadRequest, fail("Invalid format"))
	}
}

// exportRows flattens kind into column maps. Callers hold p.mu.
func (p *Portal) exportRows(kind model.ExportKind) []map[string]string {
	var rows []map[string]string
	switch kind {
	case model.ExportAcademics:
		for _, a := range p.academics {
			rows = append(rows, map[string]string{
				"ID": a.ID, "Name": a.Name, "Username": a.Username, "Department": a.Department,
				"Qualification": a.Qualification, "Experience": a.Experience.String(), "Email": a.Email,
				"Phone": a.Phone, "Status": a.Status, "Registration ID": a.RegistrationID,
			})
		}
	case model.ExportStudents:
		for _, s := range p.students {
			rows = append(rows, map[string]string{
				"ID": s.ID, "Student Name": s.StudentName, "Username": s.LoginID, "Section": s.Section,
				"First Name": s.FirstName, "Last Name": s.LastName, "DOB": s.DOB, "Gender": s.Gender,
				"Email": s.Email, "Status": s.Status, "Registration ID": s.RegistrationID,
			})
		}
	case model.ExportTimetable:
		for _, e := range p.timetable.Flatten() {
			rows = append(rows, map[string]string{
				"Day": e.Day, "Section": e.Section, "Start Time": e.StartTime12, "End Time": e.EndTime12,
				"Class Name": e.ClassName, "Faculty": e.FacultyName, "Subject": e.Subject,
				"Classroom": e.Classroom, "Building": e.Building,
			})
		}
	case model.ExportActivities:
		for _, a := range p.activities {
			rows = append(rows, map[string]string{
				"Timestamp": a.Timestamp, "User": a.User, "Action": a.Action, "Description": a.Description,
				"Status": a.Status, "Entity Type": a.EntityType, "Entity ID": a.EntityID,
			})
		}
	case model.ExportUsers:
		names := make([]string, 0, len(p.accounts))
		for name := range p.accounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a := p.accounts[name]
			completed := "No"
			if a.ProfileCompleted {
				completed = "Yes"
			}
			rows = append(rows, map[string]string{
				"Username": a.Username, "Role": a.Role, "Status": a.Status, "Email": a.Profile.Email,
				"Profile Completed": completed, "Registration ID": a.RegistrationID, "Last Login": a.LastLogin,
			})
		}
	}
	return rows
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
