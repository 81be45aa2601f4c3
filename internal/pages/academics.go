// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/url"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// createdAccount is the account part of a create response.
type createdAccount struct {
	Username        string `json:"username"`
	LoginID         string `json:"login_id"`
	RegistrationID  string `json:"registration_id"`
	DefaultPassword string `json:"default_password"`
}

func (c createdAccount) login() string {
	if c.LoginID != "" {
		return c.LoginID
	}
	return c.Username
}

// Academics lists faculty members.
func (s *Set) Academics(id auth.Identity) {
	show := s.begin(auth.PageAcademics)
	get(s, "/api/academics/list", "data", "load academics", func(list []model.Academic) {
		table := &view.Table{
			Columns: []string{"ID", "Name", "Department", "Qualification", "Experience", "Email", "Status"},
			Empty:   "No academics found.",
		}
		for _, a := range list {
			table.Rows = append(table.Rows, view.Row{ID: a.ID, Cells: []string{
				a.ID, a.Name, a.Department, a.Qualification, a.Experience.String() + " yrs", a.Email, a.Status,
			}})
		}

		var rows []view.RowAction
		rows = append(rows, view.RowAction{ID: "view", Label: "View", Run: s.viewAcademic})
		if id.Can(auth.CapManageAcademics) {
			rows = append(rows,
				view.RowAction{ID: "edit", Label: "Edit", Run: s.editAcademic},
				view.RowAction{ID: "delete", Label: "Delete", Run: s.deleteAcademic},
			)
		}

		show(view.Page{Sections: []view.Section{{
			Table:      table,
			Actions:    append(action(id.Can(auth.CapManageAcademics), "add", "Add Academic", s.openAddAcademic), s.exportActions(id, model.ExportAcademics)...),
			RowActions: rows,
		}}})
	})
}

var academicForm = view.Form{Fields: []view.Field{
	{Name: "name", Label: "Name", Required: true},
	{Name: "department", Label: "Department", Required: true},
	{Name: "qualification", Label: "Qualification", Required: true},
	{Name: "experience", Label: "Experience (years)", Kind: view.FieldNumber, Required: true, Hint: "0 to 60"},
	{Name: "email", Label: "Email", Required: true},
	{Name: "phone", Label: "Phone", Required: true, Placeholder: "10 digits"},
}}

func (s *Set) openAddAcademic() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Add Academic",
		Body:  academicForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Add", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var req forms.AddAcademic
				s.submit(dlg, academicForm, &req, "add academic", func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Post(ctx, "/api/academics/add", req)
				}, func(res *gateway.Result) {
					var acc createdAccount
					_ = res.Decode("academic", &acc)
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					s.reload(auth.PageAcademics)
					s.credentials("Academic Created", acc.login(), acc.DefaultPassword, acc.RegistrationID)
				})
			})},
		},
	})
}

func (s *Set) viewAcademic(academicID string) {
	get(s, "/api/academics/"+url.PathEscape(academicID)+"/view", "academic", "load academic", func(a model.Academic) {
		s.details("Academic Details", view.Details{Pairs: [][2]string{
			{"ID", a.ID},
			{"Name", a.Name},
			{"Username", a.Username},
			{"Department", a.Department},
			{"Qualification", a.Qualification},
			{"Experience", a.Experience.String() + " years"},
			{"Email", a.Email},
			{"Phone", a.Phone},
			{"Status", a.Status},
			{"Registration ID", a.RegistrationID},
		}})
	})
}

// editAcademic loads the academic and reopens the add form with its values.
func (s *Set) editAcademic(academicID string) {
	get(s, "/api/academics/"+url.PathEscape(academicID)+"/view", "academic", "load academic", func(a model.Academic) {
		form := prefill(academicForm, map[string]string{
			"name":          a.Name,
			"department":    a.Department,
			"qualification": a.Qualification,
			"experience":    a.Experience.String(),
			"email":         a.Email,
			"phone":         a.Phone,
		})
		endpoint := "/api/academics/" + url.PathEscape(a.ID)
		s.d.Modals.Open(modal.Descriptor{
			Title: "Edit Academic",
			Body:  form,
			Buttons: []modal.Button{
				{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
				{Label: "Save", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
					var req forms.AddAcademic
					s.submit(dlg, form, &req, "update academic", func(ctx context.Context) (*gateway.Result, error) {
						return s.d.Gateway.Put(ctx, endpoint, req)
					}, s.updated(dlg, auth.PageAcademics))
				})},
			},
		})
	})
}

func (s *Set) deleteAcademic(academicID string) {
	s.remove("Delete Academic", "Are you sure you want to delete this academic? Their login is removed too.",
		"/api/academics/"+url.PathEscape(academicID), "delete academic", auth.PageAcademics)
}

// remove confirms and sends a DELETE, then reloads page.
func (s *Set) remove(title, question, endpoint, what string, page auth.Page) {
	s.confirm(title, question, "Delete", func(dlg *modal.Dialog) {
		s.call(func(ctx context.Context) (*gateway.Result, error) {
			return s.d.Gateway.Delete(ctx, endpoint)
		}, func(res *gateway.Result, err error) {
			if err != nil {
				s.failed(what, err)
				return
			}
			s.d.Sink.Notify(view.Success(res.Message))
			dlg.Close()
			s.reload(page)
		})
	})
}
