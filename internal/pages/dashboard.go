// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// recentActivities is how many audit entries the admin dashboard lists.
const recentActivities = 5

type dashboardData struct {
	stats      model.Stats
	today      []model.TimetableEntry
	activities []model.Activity
}

// Dashboard shows the counters, today's classes and quick actions. The
// requests run in parallel; any failure fails the page.
func (s *Set) Dashboard(id auth.Identity) {
	show := s.begin(auth.PageDashboard)
	ctx := s.d.Ctx
	weekday := s.now().Weekday().String()

	loop.Await(s.d.Runtime, func() (dashboardData, error) {
		var data dashboardData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.fetch(gctx, "/api/dashboard/stats", "stats", &data.stats)
		})
		g.Go(func() error {
			var tt model.Timetable
			if err := s.fetch(gctx, "/api/timetable/list", "data", &tt); err != nil {
				return err
			}
			data.today = tt.On(weekday)
			return nil
		})
		if id.Role == auth.RoleAdmin {
			g.Go(func() error {
				return s.fetch(gctx, "/api/activities/list", "data", &data.activities)
			})
		}
		return data, g.Wait()
	}, func(data dashboardData, err error) {
		if err != nil {
			s.failed("load dashboard stats", err)
			return
		}
		show(s.dashboardPage(id, data))
	})
}

// fetch GETs endpoint and decodes key into v. It runs off-loop.
func (s *Set) fetch(ctx context.Context, endpoint, key string, v any) error {
	res, err := s.d.Gateway.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	return res.Decode(key, v)
}

func (s *Set) dashboardPage(id auth.Identity, data dashboardData) view.Page {
	st := data.stats
	var stats []view.Stat
	if id.Role == auth.RoleAdmin {
		stats = []view.Stat{
			{Label: "Total Users", Value: strconv.Itoa(st.TotalUsers)},
			{Label: "Total Academics", Value: strconv.Itoa(st.TotalAcademics)},
			{Label: "Total Students", Value: strconv.Itoa(st.TotalStudents)},
			{Label: "Total Events", Value: strconv.Itoa(st.TotalEvents)},
			{Label: "Today's Classes", Value: strconv.Itoa(st.TodayClasses)},
			{Label: "Active Sessions", Value: strconv.Itoa(st.ActiveSessions)},
		}
	} else {
		stats = []view.Stat{
			{Label: "Today's Classes", Value: strconv.Itoa(st.TodayClasses)},
			{Label: "Upcoming Events", Value: strconv.Itoa(st.TotalEvents)},
		}
	}

	page := view.Page{Sections: []view.Section{
		{Heading: "Welcome, " + id.Username, Stats: stats},
		{Heading: "Quick Actions", Actions: s.quickActions(id)},
		{Heading: "Today's Classes", Table: classesTable(data.today, "No classes scheduled today.")},
	}}

	if id.Role == auth.RoleAdmin {
		acts := data.activities
		if len(acts) > recentActivities {
			acts = acts[:recentActivities]
		}
		page.Sections = append(page.Sections, view.Section{
			Heading: "Recent Activity",
			Table:   s.activityTable(acts),
		})
	}
	if !id.ProfileCompleted {
		page.Sections = append([]view.Section{{
			Text: "Your profile is incomplete. Open Profile to fill in your details.",
		}}, page.Sections...)
	}
	return page
}

// quickActions jumps to a page and, for managers, opens its create dialog.
func (s *Set) quickActions(id auth.Identity) []view.Action {
	jump := func(page auth.Page, open func()) func() {
		return func() {
			if err := s.d.Navigate(string(page)); err != nil {
				return
			}
			if open != nil {
				open()
			}
		}
	}

	if id.Role == auth.RoleAdmin {
		return []view.Action{
			{ID: "add-academic", Label: "Add Academic", Run: jump(auth.PageAcademics, s.openAddAcademic)},
			{ID: "add-student", Label: "Add Student", Run: jump(auth.PageStudents, s.openAddStudent)},
			{ID: "add-event", Label: "Create Event", Run: jump(auth.PageEvents, s.openAddEvent)},
			{ID: "add-class", Label: "Add Class", Run: jump(auth.PageTimetable, s.openAddClass)},
		}
	}
	return []view.Action{
		{ID: "view-timetable", Label: "My Timetable", Run: jump(auth.PageTimetable, nil)},
		{ID: "view-events", Label: "Events", Run: jump(auth.PageEvents, nil)},
		{ID: "view-profile", Label: "My Profile", Run: jump(auth.PageProfile, nil)},
	}
}
