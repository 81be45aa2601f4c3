// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

type profileData struct {
	Profile          model.Profile `json:"profile"`
	RegistrationID   string        `json:"registration_id"`
	ProfileCompleted bool          `json:"profile_completed"`
	Username         string        `json:"username"`
	Role             string        `json:"role"`
}

// Profile shows the signed-in user's personal details.
func (s *Set) Profile(id auth.Identity) {
	show := s.begin(auth.PageProfile)
	s.call(func(ctx context.Context) (*gateway.Result, error) {
		return s.d.Gateway.Get(ctx, "/api/profile/get")
	}, func(res *gateway.Result, err error) {
		if err != nil {
			s.failed("load profile", err)
			return
		}
		var data profileData
		if err := res.Decode("profile", &data.Profile); err != nil {
			s.failed("load profile", err)
			return
		}
		_ = res.Decode("registration_id", &data.RegistrationID)
		_ = res.Decode("profile_completed", &data.ProfileCompleted)

		p := data.Profile
		dash := func(v string) string { return util.FirstNonEmpty(v, "-") }
		status := "Incomplete"
		if data.ProfileCompleted {
			status = "Completed"
		}
		show(view.Page{Sections: []view.Section{
			{
				Heading: id.Username + " (" + string(id.Role) + ")",
				Stats: []view.Stat{
					{Label: "Registration ID", Value: dash(data.RegistrationID)},
					{Label: "Profile", Value: status},
				},
			},
			{
				Heading: "Personal Details",
				Table: &view.Table{
					Columns: []string{"Field", "Value"},
					Rows: []view.Row{
						{ID: "first_name", Cells: []string{"First Name", dash(p.FirstName)}},
						{ID: "last_name", Cells: []string{"Last Name", dash(p.LastName)}},
						{ID: "dob", Cells: []string{"Date of Birth", dash(p.DOB)}},
						{ID: "gender", Cells: []string{"Gender", dash(p.Gender)}},
						{ID: "marital_status", Cells: []string{"Marital Status", dash(p.MaritalStatus)}},
						{ID: "father_name", Cells: []string{"Father's Name", dash(p.FatherName)}},
						{ID: "mother_name", Cells: []string{"Mother's Name", dash(p.MotherName)}},
						{ID: "email", Cells: []string{"Email", dash(p.Email)}},
						{ID: "phone", Cells: []string{"Phone", dash(p.Phone)}},
						{ID: "address", Cells: []string{"Address", dash(p.Address)}},
					},
				},
				Actions: []view.Action{{ID: "edit", Label: "Edit Profile", Run: func() { s.openEditProfile(p) }}},
			},
		}})
	})
}

func profileForm(p model.Profile) view.Form {
	return view.Form{
		Intro: "Fields marked * are required.",
		Fields: []view.Field{
			{Name: "first_name", Label: "First Name", Required: true, Value: p.FirstName},
			{Name: "last_name", Label: "Last Name", Required: true, Value: p.LastName},
			{Name: "dob", Label: "Date of Birth", Kind: view.FieldDate, Required: true, Placeholder: "YYYY-MM-DD", Value: p.DOB},
			{Name: "gender", Label: "Gender", Kind: view.FieldSelect, Required: true, Options: []string{"Male", "Female", "Other"}, Value: p.Gender},
			{Name: "marital_status", Label: "Marital Status", Kind: view.FieldSelect, Required: true, Options: []string{"Single", "Married", "Divorced", "Widowed"}, Value: p.MaritalStatus},
			{Name: "father_name", Label: "Father's Name", Required: true, Value: p.FatherName},
			{Name: "mother_name", Label: "Mother's Name", Required: true, Value: p.MotherName},
			{Name: "email", Label: "Email", Required: true, Value: p.Email},
			{Name: "phone", Label: "Phone", Value: p.Phone},
			{Name: "address", Label: "Address", Value: p.Address},
		},
	}
}

func (s *Set) openEditProfile(current model.Profile) {
	form := profileForm(current)
	s.d.Modals.Open(modal.Descriptor{
		Title: "Edit Profile",
		Body:  form,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Save", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var p model.Profile
				s.submit(dlg, form, &p, "update profile", func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Put(ctx, "/api/profile/update", p)
				}, func(res *gateway.Result) {
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					if s.d.OnProfileCompleted != nil {
						s.d.OnProfileCompleted()
					}
					s.reload(auth.PageProfile)
				})
			})},
		},
	})
}

// =============================================================================
// PASSWORD
// =============================================================================

var passwordForm = view.Form{Fields: []view.Field{
	{Name: "current_password", Label: "Current Password", Kind: view.FieldPassword, Required: true},
	{Name: "new_password", Label: "New Password", Kind: view.FieldPassword, Required: true, Hint: "At least 6 characters"},
	{Name: "confirm_password", Label: "Confirm New Password", Kind: view.FieldPassword, Required: true},
}}

// ChangePassword shows the password page. After signing in with a default
// password the dialog opens at once and cannot be dismissed.
func (s *Set) ChangePassword(id auth.Identity) {
	show := s.begin(auth.PageChangePassword)
	if id.MustChangePassword {
		show(view.Page{
			Title: "Create New Password",
			Sections: []view.Section{{
				Text:    "First Time Login: you must change your default password before continuing.",
				Actions: []view.Action{{ID: "change", Label: "Change Password", Run: func() { s.openChangePassword(true) }}},
			}},
		})
		s.openChangePassword(true)
		return
	}
	show(view.Page{Sections: []view.Section{{
		Text:    "Choose a password of at least 6 characters that you do not use elsewhere.",
		Actions: []view.Action{{ID: "change", Label: "Change Password", Run: func() { s.openChangePassword(false) }}},
	}}})
}

func (s *Set) openChangePassword(first bool) {
	form := passwordForm
	if first {
		form.Intro = "Enter your default password as the current password."
	}
	save := modal.Button{Label: "Change Password", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
		var req forms.ChangePassword
		s.submit(dlg, form, &req, "change password", func(ctx context.Context) (*gateway.Result, error) {
			return s.d.Gateway.Put(ctx, "/api/users/change-password", req)
		}, func(res *gateway.Result) {
			if first {
				s.d.Sink.Notify(view.Success("Password changed successfully! Please login again."))
			} else {
				s.d.Sink.Notify(view.Success(res.Message))
			}
			dlg.Close()
			if s.d.OnPasswordChanged != nil {
				s.d.OnPasswordChanged(first)
			}
		})
	})}

	buttons := []modal.Button{save}
	if !first {
		buttons = []modal.Button{{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()}, save}
	}
	s.d.Modals.Open(modal.Descriptor{Title: "Change Password", Body: form, Buttons: buttons})
}
