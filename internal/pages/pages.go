// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pages renders the portal's pages and dialogs.
//
// Each page is a nav.Loader: it shows a loading placeholder, fetches its data
// through the gateway off-loop and replaces the placeholder on the loop. Create,
// view and confirm flows run in modal dialogs. Failures that end the session are
// left to the controller; everything else is reported here.
package pages

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/nav"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Deps are the services pages use.
type Deps struct {
	Runtime  loop.Runtime
	Gateway  *gateway.Client
	Modals   *modal.Manager
	Sink     view.Sink
	Log      zerolog.Logger
	Ctx      context.Context
	Navigate func(page string) error
	Current  func() auth.Page

	// ExportDir receives exported files.
	ExportDir string
	// ReportFormat is the extension of locally rendered reports ("txt").
	ReportFormat string

	// OnPasswordChanged runs after a password change. first is true for the
	// forced change after signing in with a default password.
	OnPasswordChanged func(first bool)
	// OnProfileCompleted runs after the profile is saved.
	OnProfileCompleted func()
	// Copy puts text on the system clipboard.
	Copy func(text string) error
}

// Set holds the page loaders of one session.
type Set struct {
	d   Deps
	log zerolog.Logger
	gen int
}

// New creates the page set.
func New(d Deps) *Set {
	if d.Ctx == nil {
		d.Ctx = context.Background()
	}
	if d.Copy == nil {
		d.Copy = clipboard.WriteAll
	}
	if d.Navigate == nil {
		d.Navigate = func(string) error { return nil }
	}
	if d.ExportDir == "" {
		d.ExportDir = "."
	}
	return &Set{d: d, log: d.Log.With().Str("component", "pages").Logger()}
}

// Register binds every page loader.
func (s *Set) Register(n *nav.Controller) {
	n.Register(auth.PageDashboard, s.Dashboard)
	n.Register(auth.PageAcademics, s.Academics)
	n.Register(auth.PageStudents, s.Students)
	n.Register(auth.PageEvents, s.Events)
	n.Register(auth.PageTimetable, s.Timetable)
	n.Register(auth.PageProfile, s.Profile)
	n.Register(auth.PageChangePassword, s.ChangePassword)
	n.Register(auth.PageUsers, s.Users)
	n.Register(auth.PageActivities, s.Activities)
	n.Register(auth.PageDataManagement, s.DataManagement)
}

// =============================================================================
// HELPERS
// =============================================================================

// begin shows page as loading and returns the function that replaces it. The
// replacement is dropped when another page was loaded in the meantime.
func (s *Set) begin(page auth.Page) func(view.Page) {
	s.gen++
	gen := s.gen
	s.d.Sink.ShowPage(view.Page{ID: string(page), Title: page.Label(), Loading: true})
	return func(p view.Page) {
		if gen != s.gen {
			s.log.Debug().Str("page", string(page)).Msg("stale page result dropped")
			return
		}
		p.ID = string(page)
		if p.Title == "" {
			p.Title = page.Label()
		}
		s.d.Sink.ShowPage(p)
	}
}

// call runs fn off-loop and hands the result to then on the loop.
func (s *Set) call(fn func(ctx context.Context) (*gateway.Result, error), then func(*gateway.Result, error)) {
	ctx := s.d.Ctx
	loop.Await(s.d.Runtime, func() (*gateway.Result, error) {
		return fn(ctx)
	}, then)
}

// get fetches endpoint and decodes key into v before calling done.
func get[T any](s *Set, endpoint, key, what string, done func(T)) {
	s.call(func(ctx context.Context) (*gateway.Result, error) {
		return s.d.Gateway.Get(ctx, endpoint)
	}, func(res *gateway.Result, err error) {
		if err != nil {
			s.failed(what, err)
			return
		}
		var v T
		if err := res.Decode(key, &v); err != nil {
			s.failed(what, err)
			return
		}
		done(v)
	})
}

// failed reports err unless it ends the session, which the controller
// handles, or the session context was cancelled.
func (s *Set) failed(what string, err error) {
	if err == nil || fault.EndsSession(err) || errors.Is(err, context.Canceled) {
		return
	}
	s.log.Warn().Err(err).Str("kind", fault.KindOf(err).String()).Msg("failed to " + what)
	if fault.KindOf(err) == fault.KindUnknown {
		s.d.Sink.Notify(view.Error("Failed to " + what))
		return
	}
	s.d.Sink.Notify(view.Error(fault.Message(err)))
}

// submit binds the dialog's values into req and validates them. Field errors
// re-render form in place. Valid input is sent; success runs done, a server
// rejection is reported and leaves the dialog open.
func (s *Set) submit(dlg *modal.Dialog, form view.Form, req any, what string,
	send func(ctx context.Context) (*gateway.Result, error), done func(*gateway.Result)) {
	if err := forms.BindAndValidate(dlg.Values(), req); err != nil {
		s.invalid(dlg, form, err)
		return
	}
	s.call(send, func(res *gateway.Result, err error) {
		if err != nil {
			s.failed(what, err)
			return
		}
		done(res)
	})
}

// invalid shows validation feedback on the form.
func (s *Set) invalid(dlg *modal.Dialog, form view.Form, err error) {
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		s.failed("validate input", err)
		return
	}
	dlg.Update(withErrors(form, ve))
}

// withErrors returns a copy of form carrying the field messages of ve.
func withErrors(form view.Form, ve *fault.ValidationError) view.Form {
	fields := make([]view.Field, len(form.Fields))
	copy(fields, form.Fields)
	for i := range fields {
		fields[i].Error = ve.Fields[fields[i].Name]
	}
	form.Fields = fields
	return form
}

// prefill returns a copy of form with the given starting values, used when a
// create form is reopened to edit an existing record.
func prefill(form view.Form, values map[string]string) view.Form {
	fields := make([]view.Field, len(form.Fields))
	copy(fields, form.Fields)
	for i := range fields {
		if v, ok := values[fields[i].Name]; ok {
			fields[i].Value = v
		}
	}
	form.Fields = fields
	return form
}

// updated is the success step of an edit dialog.
func (s *Set) updated(dlg *modal.Dialog, page auth.Page) func(*gateway.Result) {
	return func(res *gateway.Result) {
		s.d.Sink.Notify(view.Success(res.Message))
		dlg.Close()
		s.reload(page)
	}
}

// confirm opens a yes/no dialog. yes runs with the dialog so it can close it
// once its request completes.
func (s *Set) confirm(title, question, yesLabel string, yes func(*modal.Dialog)) *modal.Dialog {
	return s.d.Modals.Open(modal.Descriptor{
		Title: title,
		Body:  question,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: yesLabel, Style: view.ButtonDanger, Action: modal.Invoke(yes)},
		},
	})
}

// details opens a read-only dialog.
func (s *Set) details(title string, body any, extra ...modal.Button) *modal.Dialog {
	buttons := append(extra, modal.Button{Label: "Close", Style: view.ButtonSecondary, Action: modal.Close()})
	return s.d.Modals.Open(modal.Descriptor{Title: title, Body: body, Buttons: buttons})
}

// credentials shows the login of a newly created account with a button that
// copies the default password.
func (s *Set) credentials(title, username, password, registrationID string) {
	body := view.Details{Pairs: [][2]string{
		{"Username", username},
		{"Default Password", password},
	}}
	if registrationID != "" {
		body.Pairs = append(body.Pairs, [2]string{"Registration ID", registrationID})
	}
	body.Pairs = append(body.Pairs, [2]string{"Note", "The user must change this password at first login."})

	s.details(title, body, modal.Button{
		Label: "Copy Password",
		Style: view.ButtonPrimary,
		Action: modal.Invoke(func(*modal.Dialog) {
			if err := s.d.Copy(password); err != nil {
				s.log.Debug().Err(err).Msg("clipboard unavailable")
				s.d.Sink.Notify(view.Warning("Clipboard unavailable"))
				return
			}
			s.d.Sink.Notify(view.Info("Password copied to clipboard"))
		}),
	})
}

// reload shows page again when it is still on screen.
func (s *Set) reload(page auth.Page) {
	if s.d.Current != nil && s.d.Current() != page {
		return
	}
	if err := s.d.Navigate(string(page)); err != nil {
		s.log.Debug().Err(err).Str("page", string(page)).Msg("reload skipped")
	}
}

// now returns the loop's clock.
func (s *Set) now() time.Time {
	return s.d.Runtime.Now()
}

// action builds a page action when allowed.
func action(allowed bool, id, label string, run func()) []view.Action {
	if !allowed {
		return nil
	}
	return []view.Action{{ID: id, Label: label, Run: run}}
}
