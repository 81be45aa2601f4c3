// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/url"
	"strings"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Students lists students.
func (s *Set) Students(id auth.Identity) {
	show := s.begin(auth.PageStudents)
	get(s, "/api/students/list", "data", "load students", func(list []model.Student) {
		table := &view.Table{
			Columns: []string{"ID", "Name", "Login ID", "Section", "Email", "Status"},
			Empty:   "No students found.",
		}
		for _, st := range list {
			table.Rows = append(table.Rows, view.Row{ID: st.ID, Cells: []string{
				st.ID, studentName(st), st.LoginID, st.Section, util.FirstNonEmpty(st.Email, "-"), st.Status,
			}})
		}

		rows := []view.RowAction{{ID: "view", Label: "View", Run: s.viewStudent}}
		if id.Can(auth.CapManageStudents) {
			rows = append(rows,
				view.RowAction{ID: "edit", Label: "Edit", Run: s.editStudent},
				view.RowAction{ID: "delete", Label: "Delete", Run: s.deleteStudent},
			)
		}
		show(view.Page{Sections: []view.Section{{
			Table:      table,
			Actions:    append(action(id.Can(auth.CapManageStudents), "add", "Add Student", s.openAddStudent), s.exportActions(id, model.ExportStudents)...),
			RowActions: rows,
		}}})
	})
}

// studentName prefers the name from the completed profile.
func studentName(st model.Student) string {
	if full := strings.TrimSpace(st.FirstName + " " + st.LastName); full != "" {
		return full
	}
	return st.StudentName
}

var studentForm = view.Form{
	Intro: "A login is created with the default student password.",
	Fields: []view.Field{
		{Name: "student_name", Label: "Student Name", Required: true},
		{Name: "section", Label: "Section", Required: true, Placeholder: "A"},
	},
}

func (s *Set) openAddStudent() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Add Student",
		Body:  studentForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Add", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var req forms.AddStudent
				s.submit(dlg, studentForm, &req, "add student", func(ctx context.Context) (*gateway.Result, error) {
					req.Section = strings.ToUpper(req.Section)
					return s.d.Gateway.Post(ctx, "/api/students/add", req)
				}, func(res *gateway.Result) {
					var acc createdAccount
					_ = res.Decode("student", &acc)
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					s.reload(auth.PageStudents)
					s.credentials("Student Created", acc.login(), acc.DefaultPassword, acc.RegistrationID)
				})
			})},
		},
	})
}

func (s *Set) viewStudent(studentID string) {
	get(s, "/api/students/"+url.PathEscape(studentID)+"/view", "student", "load student", func(st model.Student) {
		s.details("Student Details", view.Details{Pairs: [][2]string{
			{"ID", st.ID},
			{"Name", studentName(st)},
			{"Login ID", st.LoginID},
			{"Section", st.Section},
			{"Date of Birth", util.FirstNonEmpty(st.DOB, "-")},
			{"Gender", util.FirstNonEmpty(st.Gender, "-")},
			{"Email", util.FirstNonEmpty(st.Email, "-")},
			{"Status", st.Status},
			{"Registration ID", st.RegistrationID},
		}})
	})
}

func (s *Set) editStudent(studentID string) {
	get(s, "/api/students/"+url.PathEscape(studentID)+"/view", "student", "load student", func(st model.Student) {
		form := prefill(view.Form{Fields: studentForm.Fields}, map[string]string{
			"student_name": st.StudentName,
			"section":      st.Section,
		})
		endpoint := "/api/students/" + url.PathEscape(st.ID)
		s.d.Modals.Open(modal.Descriptor{
			Title: "Edit Student",
			Body:  form,
			Buttons: []modal.Button{
				{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
				{Label: "Save", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
					var req forms.AddStudent
					s.submit(dlg, form, &req, "update student", func(ctx context.Context) (*gateway.Result, error) {
						req.Section = strings.ToUpper(req.Section)
						return s.d.Gateway.Put(ctx, endpoint, req)
					}, s.updated(dlg, auth.PageStudents))
				})},
			},
		})
	})
}

func (s *Set) deleteStudent(studentID string) {
	s.remove("Delete Student", "Are you sure you want to delete this student? Their login is removed too.",
		"/api/students/"+url.PathEscape(studentID), "delete student", auth.PageStudents)
}
