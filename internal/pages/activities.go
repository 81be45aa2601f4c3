// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"strconv"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/util"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Activities shows the audit log, newest first.
func (s *Set) Activities(id auth.Identity) {
	show := s.begin(auth.PageActivities)
	get(s, "/api/activities/list?limit=100", "data", "load activities", func(list []model.Activity) {
		show(view.Page{Sections: []view.Section{{
			Table:   s.activityTable(list),
			Actions: s.exportActions(id, model.ExportActivities),
		}}})
	})
}

func (s *Set) activityTable(list []model.Activity) *view.Table {
	now := s.now()
	table := &view.Table{
		Columns: []string{"When", "User", "Action", "Description", "Status"},
		Empty:   "No activity recorded.",
	}
	for i, a := range list {
		table.Rows = append(table.Rows, view.Row{ID: util.FirstNonEmpty(a.EntityID, a.Timestamp) + "#" + strconv.Itoa(i), Cells: []string{
			model.Ago(a.Timestamp, now), a.User, a.Action, a.Description, util.FirstNonEmpty(a.Status, "-"),
		}})
	}
	return table
}
