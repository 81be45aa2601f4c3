// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// clashCode marks a rejected class that overlaps another in its section.
const clashCode = "TT_CLASH_001"

// Timetable shows the weekly schedule.
func (s *Set) Timetable(id auth.Identity) {
	show := s.begin(auth.PageTimetable)
	get(s, "/api/timetable/list", "data", "load timetable", func(tt model.Timetable) {
		entries := tt.Flatten()
		var rows []view.RowAction
		if id.Can(auth.CapManageTimetable) {
			byID := make(map[string]model.TimetableEntry, len(entries))
			for _, e := range entries {
				byID[e.ID] = e
			}
			rows = append(rows,
				view.RowAction{ID: "edit", Label: "Edit", Run: func(entryID string) {
					if e, ok := byID[entryID]; ok {
						s.openEditClass(e)
					}
				}},
				view.RowAction{ID: "delete", Label: "Delete", Run: s.deleteClass},
			)
		}
		show(view.Page{Sections: []view.Section{{
			Table:      classesTable(entries, "No classes scheduled."),
			Actions:    append(action(id.Can(auth.CapManageTimetable), "add", "Add Class", s.openAddClass), s.exportActions(id, model.ExportTimetable)...),
			RowActions: rows,
		}}})
	})
}

// classesTable renders timetable entries in the given order.
func classesTable(entries []model.TimetableEntry, empty string) *view.Table {
	table := &view.Table{
		Columns: []string{"Day", "Time", "Class", "Subject", "Faculty", "Section", "Room"},
		Empty:   empty,
	}
	for _, e := range entries {
		room := e.Classroom
		if e.Building != "" {
			room = util.FirstNonEmpty(room, "-") + ", " + e.Building
		}
		table.Rows = append(table.Rows, view.Row{ID: e.ID, Cells: []string{
			e.Day,
			util.FirstNonEmpty(e.StartTime12, e.StartTime) + " - " + util.FirstNonEmpty(e.EndTime12, e.EndTime),
			e.ClassName, e.Subject, e.FacultyName, e.Section, util.FirstNonEmpty(room, "-"),
		}})
	}
	return table
}

var timetableForm = view.Form{Fields: []view.Field{
	{Name: "day", Label: "Day", Kind: view.FieldSelect, Required: true, Options: model.Days},
	{Name: "start_time", Label: "Start Time", Required: true, Placeholder: "09:00"},
	{Name: "end_time", Label: "End Time", Required: true, Placeholder: "10:00"},
	{Name: "class_name", Label: "Class Name", Required: true},
	{Name: "subject", Label: "Subject", Required: true},
	{Name: "faculty_name", Label: "Faculty", Required: true},
	{Name: "section", Label: "Section", Required: true},
	{Name: "classroom", Label: "Classroom"},
	{Name: "building", Label: "Building"},
}}

func (s *Set) openAddClass() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Add Class",
		Body:  timetableForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Add", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				s.saveClass(dlg, timetableForm, "add class", http.MethodPost, "/api/timetable/add")
			})},
		},
	})
}

// openEditClass reopens the add-class form with the values of e.
func (s *Set) openEditClass(e model.TimetableEntry) {
	form := prefill(timetableForm, map[string]string{
		"day":          e.Day,
		"start_time":   e.StartTime,
		"end_time":     e.EndTime,
		"class_name":   e.ClassName,
		"subject":      e.Subject,
		"faculty_name": e.FacultyName,
		"section":      e.Section,
		"classroom":    e.Classroom,
		"building":     e.Building,
	})
	endpoint := "/api/timetable/" + url.PathEscape(e.ID)
	s.d.Modals.Open(modal.Descriptor{
		Title: "Edit Class",
		Body:  form,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Save", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				s.saveClass(dlg, form, "update class", http.MethodPut, endpoint)
			})},
		},
	})
}

// saveClass submits a class dialog with method. A clash marks the time fields.
func (s *Set) saveClass(dlg *modal.Dialog, form view.Form, what, method, endpoint string) {
	var req forms.AddTimetable
	if err := forms.BindAndValidate(dlg.Values(), &req); err != nil {
		s.invalid(dlg, form, err)
		return
	}
	s.call(func(ctx context.Context) (*gateway.Result, error) {
		return s.d.Gateway.Call(ctx, method, endpoint, req)
	}, func(res *gateway.Result, err error) {
		if err != nil {
			if res != nil && res.String("error_code") == clashCode {
				ve := fault.NewValidationError("start_time", "Clashes with "+res.String("conflicting_class")+" ("+res.String("conflicting_time")+")")
				ve.Add("end_time", "Choose a free slot")
				dlg.Update(withErrors(form, ve))
			}
			s.failed(what, err)
			return
		}
		s.d.Sink.Notify(view.Success(res.Message))
		dlg.Close()
		s.reload(auth.PageTimetable)
	})
}

func (s *Set) deleteClass(entryID string) {
	s.remove("Delete Class", "Are you sure you want to delete this class?",
		"/api/timetable/"+url.PathEscape(entryID), "delete class", auth.PageTimetable)
}
