// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Events lists upcoming events. Students register from here; managers see
// the registrations.
func (s *Set) Events(id auth.Identity) {
	show := s.begin(auth.PageEvents)
	get(s, "/api/events/list", "data", "load events", func(list []model.Event) {
		byID := make(map[string]model.Event, len(list))
		table := &view.Table{
			Columns: []string{"Title", "Date", "Time", "Club", "Venue", "Seats"},
			Empty:   "No upcoming events.",
		}
		for _, e := range list {
			byID[e.ID] = e
			seats := e.Seats()
			if e.Full() {
				seats += " (full)"
			}
			table.Rows = append(table.Rows, view.Row{ID: e.ID, Cells: []string{
				e.Title, e.Date, util.FirstNonEmpty(e.Time12, e.Time), e.ClubName, util.FirstNonEmpty(e.Venue, "-"), seats,
			}})
		}

		rows := []view.RowAction{{ID: "view", Label: "Details", Run: func(eventID string) {
			if e, ok := byID[eventID]; ok {
				s.eventDetails(e)
			}
		}}}
		if id.Can(auth.CapRegisterEvents) {
			rows = append(rows, view.RowAction{ID: "register", Label: "Register", Run: func(eventID string) {
				if e, ok := byID[eventID]; ok {
					s.registerEvent(e)
				}
			}})
		}
		if id.Can(auth.CapManageEvents) {
			rows = append(rows, view.RowAction{ID: "registrations", Label: "Registrations", Run: s.eventRegistrations})
		}

		show(view.Page{Sections: []view.Section{{
			Table:      table,
			Actions:    action(id.Can(auth.CapCreateEvents), "add", "Create Event", s.openAddEvent),
			RowActions: rows,
		}}})
	})
}

func (s *Set) eventDetails(e model.Event) {
	s.details(e.Title, view.Details{Pairs: [][2]string{
		{"Date", e.Date},
		{"Time", util.FirstNonEmpty(e.Time12, e.Time)},
		{"Organizer", e.OrganizerName},
		{"Club", e.ClubName},
		{"Chief Guest", util.FirstNonEmpty(e.ChiefGuest, "-")},
		{"Venue", util.FirstNonEmpty(e.Venue, "-")},
		{"Seats", e.Seats()},
		{"Description", util.FirstNonEmpty(e.Description, "-")},
	}})
}

func (s *Set) registerEvent(e model.Event) {
	if e.Full() {
		s.d.Sink.Notify(view.Warning("Event is full"))
		return
	}
	s.d.Modals.Open(modal.Descriptor{
		Title: "Register for Event",
		Body:  "Register for " + e.Title + " on " + e.Date + "?",
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Register", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				s.call(func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Post(ctx, "/api/events/"+url.PathEscape(e.ID)+"/register", nil)
				}, func(res *gateway.Result, err error) {
					if err != nil {
						s.failed("register for event", err)
						return
					}
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					s.reload(auth.PageEvents)
				})
			})},
		},
	})
}

func (s *Set) eventRegistrations(eventID string) {
	s.call(func(ctx context.Context) (*gateway.Result, error) {
		return s.d.Gateway.Get(ctx, "/api/events/"+url.PathEscape(eventID)+"/registrations")
	}, func(res *gateway.Result, err error) {
		if err != nil {
			s.failed("load registrations", err)
			return
		}
		var (
			e    model.Event
			regs []model.Registration
		)
		if err := res.Decode("event", &e); err != nil {
			s.failed("load registrations", err)
			return
		}
		if err := res.Decode("registrations", &regs); err != nil {
			s.failed("load registrations", err)
			return
		}

		table := &view.Table{
			Columns: []string{"#", "Username", "Name", "Section", "Registered"},
			Empty:   "No registrations yet.",
		}
		now := s.now()
		for i, r := range regs {
			table.Rows = append(table.Rows, view.Row{ID: r.Username, Cells: []string{
				strconv.Itoa(i + 1), r.Username, r.StudentName, util.FirstNonEmpty(r.Section, "-"), model.Ago(r.RegisteredAt, now),
			}})
		}
		s.details(e.Title+" Registrations ("+e.Seats()+")", table)
	})
}

var eventForm = view.Form{Fields: []view.Field{
	{Name: "title", Label: "Title", Required: true},
	{Name: "date", Label: "Date", Kind: view.FieldDate, Required: true, Placeholder: "YYYY-MM-DD"},
	{Name: "time", Label: "Time", Required: true, Placeholder: "HH:MM"},
	{Name: "organizer_name", Label: "Organizer", Required: true},
	{Name: "club_name", Label: "Club", Required: true},
	{Name: "capacity", Label: "Capacity", Kind: view.FieldNumber, Required: true},
	{Name: "venue", Label: "Venue"},
	{Name: "chief_guest", Label: "Chief Guest"},
	{Name: "description", Label: "Description"},
}}

func (s *Set) openAddEvent() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Create Event",
		Body:  eventForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Create", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var req forms.AddEvent
				s.submit(dlg, eventForm, &req, "create event", func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Post(ctx, "/api/events/add", req)
				}, func(res *gateway.Result) {
					s.d.Sink.Notify(view.Success(res.Message))
					dlg.Close()
					s.reload(auth.PageEvents)
				})
			})},
		},
	})
}
