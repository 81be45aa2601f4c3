// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Users lists every account.
func (s *Set) Users(id auth.Identity) {
	show := s.begin(auth.PageUsers)
	get(s, "/api/users/list", "data", "load users", func(list []model.UserRecord) {
		byName := make(map[string]model.UserRecord, len(list))
		now := s.now()
		table := &view.Table{
			Columns: []string{"Username", "Role", "Status", "Email", "Profile", "Last Login"},
			Empty:   "No users found.",
		}
		for _, u := range list {
			byName[u.Username] = u
			table.Rows = append(table.Rows, view.Row{ID: u.Username, Cells: []string{
				u.Username, u.Role, u.Status, util.FirstNonEmpty(u.Email, "-"), u.ProfileStatus, model.Ago(u.LastLogin, now),
			}})
		}

		rows := []view.RowAction{{ID: "details", Label: "Details", Run: s.userDetails}}
		if id.Can(auth.CapManageUsers) {
			rows = append(rows, view.RowAction{ID: "status", Label: "Activate/Deactivate", Run: func(username string) {
				if u, ok := byName[username]; ok {
					s.toggleUserStatus(id, u)
				}
			}})
		}
		show(view.Page{Sections: []view.Section{{
			Table:      table,
			Actions:    append(action(id.Can(auth.CapManageUsers), "add", "Add User", s.openAddUser), s.exportActions(id, model.ExportUsers)...),
			RowActions: rows,
		}}})
	})
}

type userDetails struct {
	Username         string        `json:"username"`
	Role             string        `json:"role"`
	Status           string        `json:"status"`
	RegistrationID   string        `json:"registration_id"`
	ProfileCompleted bool          `json:"profile_completed"`
	Profile          model.Profile `json:"profile"`
	CreatedAt        string        `json:"created_at"`
	LastLogin        string        `json:"last_login"`
	LoginCount       int           `json:"login_count"`
}

func (s *Set) userDetails(username string) {
	get(s, "/api/users/"+url.PathEscape(username)+"/details", "user", "load user details", func(u userDetails) {
		now := s.now()
		profile := "Incomplete"
		if u.ProfileCompleted {
			profile = "Completed"
		}
		s.details("User Details", view.Details{Pairs: [][2]string{
			{"Username", u.Username},
			{"Role", u.Role},
			{"Status", u.Status},
			{"Registration ID", util.FirstNonEmpty(u.RegistrationID, "-")},
			{"Profile", profile},
			{"Name", util.FirstNonEmpty(strings.TrimSpace(u.Profile.FirstName+" "+u.Profile.LastName), "-")},
			{"Email", util.FirstNonEmpty(u.Profile.Email, "-")},
			{"Created", model.Ago(u.CreatedAt, now)},
			{"Last Login", model.Ago(u.LastLogin, now)},
			{"Logins", strconv.Itoa(u.LoginCount)},
		}})
	})
}

// toggleUserStatus flips an account between active and inactive. The signed-in
// user cannot lock themselves out.
func (s *Set) toggleUserStatus(id auth.Identity, u model.UserRecord) {
	if u.Username == id.Username {
		s.d.Sink.Notify(view.Warning("You cannot deactivate your own account"))
		return
	}
	status := "active"
	if u.Active() {
		status = "inactive"
	}
	s.call(func(ctx context.Context) (*gateway.Result, error) {
		return s.d.Gateway.Put(ctx, "/api/users/"+url.PathEscape(u.Username)+"/status", map[string]string{"status": status})
	}, func(res *gateway.Result, err error) {
		if err != nil {
			s.failed("update user status", err)
			return
		}
		s.d.Sink.Notify(view.Success(res.Message))
		s.reload(auth.PageUsers)
	})
}

var userForm = view.Form{
	Intro: "The username is generated from the name.",
	Fields: []view.Field{
		{Name: "name", Label: "Full Name", Required: true},
		{Name: "role", Label: "Role", Kind: view.FieldSelect, Required: true, Options: []string{"Faculty", "Student"}},
	},
}

func (s *Set) openAddUser() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Add User",
		Body:  userForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Create", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var req forms.AddUser
				s.submit(dlg, userForm, &req, "create user", func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Post(ctx, "/api/users/add", req)
				}, func(res *gateway.Result) {
					var u model.UserRecord
					_ = res.Decode("user", &u)
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					s.reload(auth.PageUsers)
					s.credentials("User Created", u.Username, u.DefaultPassword, u.RegistrationID)
				})
			})},
		},
	})
}
