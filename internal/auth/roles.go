// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "strings"

// Role is a portal user role.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleFaculty Role = "Faculty"
	RoleStudent Role = "Student"
)

// ParseRole maps a server role string to a Role. Matching ignores case.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "faculty":
		return RoleFaculty, true
	case "student":
		return RoleStudent, true
	}
	return "", false
}

// Page identifies a navigable portal page.
type Page string

const (
	PageDashboard      Page = "dashboard"
	PageAcademics      Page = "academics"
	PageStudents       Page = "students"
	PageEvents         Page = "events"
	PageTimetable      Page = "timetable"
	PageProfile        Page = "profile"
	PageChangePassword Page = "change-password"
	PageUsers          Page = "users"
	PageActivities     Page = "activities"
	PageDataManagement Page = "data-management"
)

// DefaultPage is the fallback for unknown page ids.
const DefaultPage = PageDashboard

// pageOrder is the menu order.
var pageOrder = []Page{
	PageDashboard,
	PageAcademics,
	PageStudents,
	PageEvents,
	PageTimetable,
	PageProfile,
	PageUsers,
	PageActivities,
	PageDataManagement,
	PageChangePassword,
}

var pageLabels = map[Page]string{
	PageDashboard:      "Dashboard",
	PageAcademics:      "Academics",
	PageStudents:       "Students",
	PageEvents:         "Events",
	PageTimetable:      "Timetable",
	PageProfile:        "Profile",
	PageChangePassword: "Change Password",
	PageUsers:          "Users",
	PageActivities:     "Activities",
	PageDataManagement: "Data Management",
}

// LookupPage returns the Page for id and whether it is known.
func LookupPage(id string) (Page, bool) {
	p := Page(strings.ToLower(strings.TrimSpace(id)))
	_, ok := pageLabels[p]
	return p, ok
}

// Label returns the menu label of p.
func (p Page) Label() string {
	if l, ok := pageLabels[p]; ok {
		return l
	}
	return string(p)
}

// Capability is an action a role may perform beyond visiting a page.
type Capability string

const (
	CapExportData      Capability = "data:export"
	CapClearData       Capability = "data:clear"
	CapBackup          Capability = "data:backup"
	CapManageAcademics Capability = "academics:manage"
	CapManageStudents  Capability = "students:manage"
	CapManageEvents    Capability = "events:manage"
	CapCreateEvents    Capability = "events:create"
	CapRegisterEvents  Capability = "events:register"
	CapManageTimetable Capability = "timetable:manage"
	CapManageUsers     Capability = "users:manage"
)

// =============================================================================
// ROLE CAPABILITY TABLE
// =============================================================================

type capabilitySet struct {
	pages map[Page]bool
	caps  map[Capability]bool
}

func newCapabilitySet(pages []Page, caps []Capability) capabilitySet {
	s := capabilitySet{pages: make(map[Page]bool), caps: make(map[Capability]bool)}
	for _, p := range pages {
		s.pages[p] = true
	}
	for _, c := range caps {
		s.caps[c] = true
	}
	return s
}

// roleCapabilities is the only place role gating is decided.
var roleCapabilities = map[Role]capabilitySet{
	RoleAdmin: newCapabilitySet(pageOrder, []Capability{
		CapExportData,
		CapClearData,
		CapBackup,
		CapManageAcademics,
		CapManageStudents,
		CapManageEvents,
		CapCreateEvents,
		CapManageTimetable,
		CapManageUsers,
	}),
	RoleFaculty: newCapabilitySet([]Page{
		PageDashboard,
		PageStudents,
		PageEvents,
		PageTimetable,
		PageProfile,
		PageChangePassword,
	}, []Capability{
		CapManageStudents,
		CapManageEvents,
		CapManageTimetable,
	}),
	RoleStudent: newCapabilitySet([]Page{
		PageDashboard,
		PageEvents,
		PageTimetable,
		PageProfile,
		PageChangePassword,
	}, []Capability{
		CapRegisterEvents,
	}),
}

// Allows reports whether r may visit p.
func (r Role) Allows(p Page) bool {
	return roleCapabilities[r].pages[p]
}

// Can reports whether r holds c.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r].caps[c]
}

// AllowedPages returns the pages r may visit in menu order.
func (r Role) AllowedPages() []Page {
	var out []Page
	for _, p := range pageOrder {
		if r.Allows(p) {
			out = append(out, p)
		}
	}
	return out
}

// Known reports whether r is one of the portal roles.
func (r Role) Known() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// UnmarshalText normalizes the server's role spelling. Unknown roles are kept
// verbatim so Establish can refuse them.
func (r *Role) UnmarshalText(b []byte) error {
	if parsed, ok := ParseRole(string(b)); ok {
		*r = parsed
		return nil
	}
	*r = Role(b)
	return nil
}
