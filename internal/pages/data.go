// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pages

import (
	"context"
	"net/url"
	"strings"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/export"
	"github.com/jeranaias/eduportal-tui/internal/forms"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/model"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// EXPORT
// =============================================================================

// exportActions returns the export buttons for kind when id may export.
func (s *Set) exportActions(id auth.Identity, kind model.ExportKind) []view.Action {
	if !id.Can(auth.CapExportData) {
		return nil
	}
	return []view.Action{
		{ID: "export-csv-" + string(kind), Label: "Export CSV", Run: func() { s.export(kind, model.FormatCSV) }},
		{ID: "export-report-" + string(kind), Label: "Export Report", Run: func() { s.export(kind, model.FormatPDF) }},
	}
}

// export downloads kind and writes it under ExportDir. CSV is saved as sent;
// report rows are rendered locally in ReportFormat.
func (s *Set) export(kind model.ExportKind, format model.ExportFormat) {
	s.d.Sink.Notify(view.Info("Exporting " + string(kind) + "..."))
	ctx := s.d.Ctx
	generated := s.now()
	opts := &export.Options{OutputDir: s.d.ExportDir}
	endpoint := "/api/export/" + url.PathEscape(string(kind)) + "?format=" + string(format)
	reportFormat := s.d.ReportFormat

	loop.Await(s.d.Runtime, func() (string, error) {
		d, err := s.d.Gateway.Download(ctx, endpoint)
		if err != nil {
			return "", err
		}
		if format == model.FormatCSV {
			return export.SaveDownload(d.Filename, string(kind)+".csv", d.Data, opts)
		}
		r, err := export.DecodeReport(kind, d.Data, generated)
		if err != nil {
			return "", err
		}
		return export.ToFile(r, export.ForFormat(reportFormat), opts)
	}, func(path string, err error) {
		if err != nil {
			s.failed("export "+string(kind), err)
			return
		}
		s.log.Info().Str("kind", string(kind)).Str("path", path).Msg("export saved")
		s.d.Sink.Notify(view.Success("Saved to " + path))
	})
}

// =============================================================================
// DATA MANAGEMENT
// =============================================================================

// DataManagement offers backups, exports and destructive clearing.
func (s *Set) DataManagement(id auth.Identity) {
	show := s.begin(auth.PageDataManagement)

	var exports []view.Action
	kinds := []model.ExportKind{model.ExportAcademics, model.ExportStudents, model.ExportTimetable, model.ExportUsers, model.ExportActivities}
	for _, k := range kinds {
		for _, a := range s.exportActions(id, k) {
			a.Label = a.Label + " (" + string(k) + ")"
			exports = append(exports, a)
		}
	}

	show(view.Page{Sections: []view.Section{
		{
			Heading: "Backup",
			Text:    "Write a snapshot of all records to a backup folder on the server.",
			Actions: action(id.Can(auth.CapBackup), "backup", "Create Backup", s.confirmBackup),
		},
		{
			Heading: "Export",
			Text:    "CSV files are saved as sent by the server. Reports are rendered locally.",
			Actions: exports,
		},
		{
			Heading: "Clear Data",
			Text:    "Remove all records, or only the students and classes of some sections.",
			Actions: action(id.Can(auth.CapClearData), "clear", "Clear Data", s.openClearData),
		},
	}})
}

func (s *Set) confirmBackup() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Create Backup",
		Body:  "Create a backup of all data now?",
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Create Backup", Style: view.ButtonPrimary, Action: modal.Invoke(func(dlg *modal.Dialog) {
				s.call(func(ctx context.Context) (*gateway.Result, error) {
					return s.d.Gateway.Post(ctx, "/api/backup/create", nil)
				}, func(res *gateway.Result, err error) {
					if err != nil {
						s.failed("create backup", err)
						return
					}
					var files []string
					_ = res.Decode("files", &files)
					dlg.Close()
					s.d.Sink.Notify(view.Success(res.Message))
					s.details("Backup Created", view.Details{Pairs: [][2]string{
						{"Folder", res.String("backup_folder")},
						{"Files", strings.Join(files, ", ")},
					}})
				})
			})},
		},
	})
}

var clearForm = view.Form{
	Intro: "This cannot be undone. Create a backup first.",
	Fields: []view.Field{
		{Name: "type", Label: "Clear", Kind: view.FieldSelect, Required: true, Options: []string{"partial", "all"}, Value: "partial"},
		{Name: "sections", Label: "Sections", Placeholder: "A, B", Hint: "Comma separated; used for a partial clear"},
	},
}

func (s *Set) openClearData() {
	s.d.Modals.Open(modal.Descriptor{
		Title: "Clear Data",
		Body:  clearForm,
		Buttons: []modal.Button{
			{Label: "Cancel", Style: view.ButtonSecondary, Action: modal.Close()},
			{Label: "Continue", Style: view.ButtonDanger, Action: modal.Invoke(func(dlg *modal.Dialog) {
				var req forms.ClearData
				if err := forms.BindAndValidate(dlg.Values(), &req); err != nil {
					s.invalid(dlg, clearForm, err)
					return
				}
				dlg.Close()
				s.confirmClear(req)
			})},
		},
	})
}

// confirmClear asks once more before sending the clear request.
func (s *Set) confirmClear(req forms.ClearData) {
	question := "Remove students and classes in sections " + strings.Join(req.Sections, ", ") + "?"
	if req.Type == "all" {
		req.Sections = nil
		question = "This is your last chance. ALL academics, students, events, classes and non-admin users will be deleted. Continue?"
	}
	s.confirm("Confirm Clear", question, "Clear Data", func(dlg *modal.Dialog) {
		s.call(func(ctx context.Context) (*gateway.Result, error) {
			return s.d.Gateway.Post(ctx, "/api/data/clear", req)
		}, func(res *gateway.Result, err error) {
			if err != nil {
				s.failed("clear data", err)
				return
			}
			var cleared []string
			_ = res.Decode("cleared", &cleared)
			msg := "Data cleared successfully"
			if len(cleared) > 0 {
				msg += ": " + strings.Join(cleared, ", ")
			}
			dlg.Close()
			s.d.Sink.Notify(view.Success(msg))
		})
	})
}
