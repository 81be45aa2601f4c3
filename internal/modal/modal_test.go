// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modal

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/view"
)

func newManager() (*Manager, *view.Recorder) {
	sink := view.NewRecorder()
	return NewManager(sink, zerolog.Nop()), sink
}

func TestOpenReplacesLiveDialog(t *testing.T) {
	m, sink := newManager()

	releasedA := 0
	a := m.Open(Descriptor{Title: "A", Body: "first"})
	a.OnRelease(func() { releasedA++ })

	b := m.Open(Descriptor{Title: "B", Body: "second"})

	require.False(t, a.Live())
	require.True(t, b.Live())
	require.Equal(t, 1, releasedA)
	require.Same(t, b, m.Live())

	live := sink.LiveModals()
	require.Len(t, live, 1)
	require.Equal(t, "B", live[0].Title)
	require.Equal(t, []string{a.ID()}, sink.Hidden)
}

func TestCloseWithoutDialogIsNoop(t *testing.T) {
	m, sink := newManager()
	m.Close()
	m.Backdrop()
	require.Empty(t, sink.Hidden)
}

func TestBackdropCloses(t *testing.T) {
	m, sink := newManager()
	m.Open(Descriptor{Title: "Details"})
	m.Backdrop()
	require.Nil(t, m.Live())
	require.Empty(t, sink.LiveModals())
}

func TestPressCloseAndInvoke(t *testing.T) {
	m, _ := newManager()

	var got string
	d := m.Open(Descriptor{
		Title: "Add Event",
		Body:  view.Form{Fields: []view.Field{{Name: "title"}}},
		Buttons: []Button{
			{Label: "Cancel", Action: Close()},
			{Label: "Save", Style: view.ButtonPrimary, Action: Invoke(func(d *Dialog) {
				got = d.Value("title")
			})},
		},
	})

	require.True(t, m.Press(d.ID(), 1, map[string]string{"title": "Sports Day"}))
	require.Equal(t, "Sports Day", got)
	require.True(t, d.Live(), "invoke leaves closing to the callback")

	require.False(t, m.Press(d.ID(), 7, nil))
	require.True(t, m.Press(d.ID(), 0, nil))
	require.False(t, d.Live())
}

func TestStalePressAndCloseAreIgnored(t *testing.T) {
	m, _ := newManager()

	invoked := false
	a := m.Open(Descriptor{Title: "A", Buttons: []Button{{Label: "Go", Action: Invoke(func(*Dialog) { invoked = true })}}})
	b := m.Open(Descriptor{Title: "B"})

	require.False(t, m.Press(a.ID(), 0, nil))
	require.False(t, invoked)

	// A late async completion for A must not close B.
	a.Close()
	require.True(t, b.Live())
	require.Same(t, b, m.Live())
}

func TestUpdateKeepsValuesExceptPasswords(t *testing.T) {
	m, sink := newManager()
	d := m.Open(Descriptor{Title: "Change Password", Buttons: []Button{{Label: "Save", Action: Invoke(func(*Dialog) {})}}})
	m.Press(d.ID(), 0, map[string]string{"username": "amy", "new_password": "abc"})

	d.Update(view.Form{Fields: []view.Field{
		{Name: "username", Kind: view.FieldText},
		{Name: "new_password", Kind: view.FieldPassword, Error: "must be at least 6 characters"},
	}})

	last := sink.Modals[len(sink.Modals)-1]
	require.Equal(t, d.ID(), last.ID)
	form := last.Body.(view.Form)
	require.Equal(t, "amy", form.Fields[0].Value)
	require.Equal(t, "", form.Fields[1].Value)
	require.Equal(t, "must be at least 6 characters", form.Fields[1].Error)

	d.Close()
	n := len(sink.Modals)
	d.Update("ignored")
	require.Len(t, sink.Modals, n)
}

func TestReleaseOrderIsLIFO(t *testing.T) {
	m, _ := newManager()
	var order []int
	d := m.Open(Descriptor{Title: "x"})
	d.OnRelease(func() { order = append(order, 1) })
	d.OnRelease(func() { order = append(order, 2) })
	m.Close()
	require.Equal(t, []int{2, 1}, order)
}
