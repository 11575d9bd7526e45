package designer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/poslabel/internal/label"
)

func newTemplate() *label.Template {
	return &label.Template{
		ID:     "t1",
		Name:   "Test",
		Width:  80,
		Height: 40,
		Elements: []label.Element{
			{ID: "a", Type: label.ElementText, X: -10, Y: 5, Width: 20, Height: 6, Content: "A"},
			{ID: "b", Type: label.ElementBarcode, X: -20, Y: 15, Width: 40, Height: 15},
		},
	}
}

func TestDragAccumulatesDeltas(t *testing.T) {
	renders := 0
	s := NewSession(newTemplate(), func(*label.Template) { renders++ })

	require.NoError(t, s.PointerDown("a", 100, 50))
	require.Equal(t, ModeDragging, s.State().Mode())

	deltas := [][2]float64{{10, 0}, {5, -3}, {-2, 20}, {37.5, 1.25}}
	px, py := 100.0, 50.0
	var sumX, sumY float64
	for _, d := range deltas {
		px += d[0]
		py += d[1]
		sumX += d[0]
		sumY += d[1]
		require.NoError(t, s.PointerMove(px, py))
	}
	s.PointerUp()

	el, ok := s.Template.Element("a")
	require.True(t, ok)
	assert.InDelta(t, -10+label.PixelsToMm(sumX), el.X, 1e-9)
	assert.InDelta(t, 5+label.PixelsToMm(sumY), el.Y, 1e-9)
	assert.Equal(t, ModeIdle, s.State().Mode())
	assert.Equal(t, len(deltas), renders)
	assert.True(t, s.Dirty())
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.PointerDown("b", 0, 0))
	s.PointerLeave()
	assert.Equal(t, ModeIdle, s.State().Mode())

	require.NoError(t, s.PointerMove(500, 500), "moves outside a drag are ignored")
	el, _ := s.Template.Element("b")
	assert.Equal(t, -20.0, el.X)
}

func TestPointerDownUnknownElement(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	assert.ErrorIs(t, s.PointerDown("zzz", 0, 0), ErrUnknownElement)
	assert.Equal(t, ModeIdle, s.State().Mode())
}

func TestAddElementDefaults(t *testing.T) {
	s := NewSession(newTemplate(), nil)

	text, err := s.AddElement(label.ElementText)
	require.NoError(t, err)
	assert.Equal(t, 30.0, text.Width)
	assert.Equal(t, 8.0, text.Height)
	assert.Equal(t, "New Text", text.Content)
	assert.Len(t, s.Template.Elements, 3)

	ed, ok := s.State().(Editing)
	require.True(t, ok)
	assert.True(t, ed.IsNew)
	assert.Equal(t, text.ID, ed.Draft.ID)
	require.NoError(t, s.Cancel())

	for _, kind := range []label.ElementType{label.ElementBarcode, label.ElementQRCode, label.ElementLine, label.ElementRectangle} {
		el, err := s.AddElement(kind)
		require.NoError(t, err)
		assert.Equal(t, 20.0, el.Width, kind)
		assert.Equal(t, 20.0, el.Height, kind)
		assert.Empty(t, el.Content, kind)
		require.NoError(t, s.Cancel())
	}

	_, err = s.AddElement("circle")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditSaveReplacesByID(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Select("a", true))

	ed := s.State().(Editing)
	draft := ed.Draft
	draft.Content = "Edited"
	draft.FontSize = 18
	draft.ID = "ignored"
	require.NoError(t, s.Save(draft))

	el, ok := s.Template.Element("a")
	require.True(t, ok)
	assert.Equal(t, "Edited", el.Content)
	assert.Equal(t, 18.0, el.FontSize)
	assert.Len(t, s.Template.Elements, 2)
	assert.Equal(t, ModeIdle, s.State().Mode())
}

func TestSaveRejectsInvalidDraft(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Select("a", true))

	draft := s.State().(Editing).Draft
	draft.Width = -5
	assert.ErrorIs(t, s.Save(draft), label.ErrInvalidElement)
	assert.Equal(t, ModeEditing, s.State().Mode(), "editor stays open")
	el, _ := s.Template.Element("a")
	assert.Equal(t, 20.0, el.Width)
	assert.False(t, s.Dirty())
	require.NoError(t, s.Template.Validate())

	draft.Width = 25
	draft.Type = "circle"
	assert.ErrorIs(t, s.Save(draft), label.ErrInvalidElement)

	draft.Type = ""
	require.NoError(t, s.Save(draft), "an empty type keeps the element's kind")
	el, _ = s.Template.Element("a")
	assert.Equal(t, label.ElementText, el.Type)
	assert.Equal(t, 25.0, el.Width)
}

func TestEditCancelDiscardsDraft(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Select("a", true))
	require.NoError(t, s.Cancel())

	el, _ := s.Template.Element("a")
	assert.Equal(t, "A", el.Content)
	assert.False(t, s.Dirty())
}

func TestSelectWithoutEditor(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Select("b", false))
	assert.Equal(t, Selected{ElementID: "b"}, s.State())
	assert.Equal(t, "b", s.SelectedID())

	s.Deselect()
	assert.Equal(t, ModeIdle, s.State().Mode())
}

func TestDeleteClearsSelection(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Select("a", false))
	require.NoError(t, s.Delete("a"))

	assert.Equal(t, ModeIdle, s.State().Mode())
	assert.Equal(t, -1, s.Template.ElementIndex("a"))
	assert.ErrorIs(t, s.Delete("a"), ErrUnknownElement)
}

func TestInvalidTransitions(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	assert.ErrorIs(t, s.Save(label.Element{}), ErrInvalidTransition)
	assert.ErrorIs(t, s.Cancel(), ErrInvalidTransition)

	require.NoError(t, s.Select("a", true))
	assert.ErrorIs(t, s.PointerDown("a", 0, 0), ErrInvalidTransition, "no dragging while editing")
	assert.ErrorIs(t, s.Delete("b"), ErrInvalidTransition)
	_, err := s.AddElement(label.ElementText)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, s.Cancel())

	require.NoError(t, s.PointerDown("a", 0, 0))
	assert.ErrorIs(t, s.Select("b", true), ErrInvalidTransition, "no editing while dragging")
}

func TestUpdateTemplateValidates(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	zero := 0.0
	assert.ErrorIs(t, s.UpdateTemplate(TemplateProps{Width: &zero}), label.ErrInvalidTemplate)
	assert.Equal(t, 80.0, s.Template.Width)

	name, width := "Wide", 100.0
	require.NoError(t, s.UpdateTemplate(TemplateProps{Name: &name, Width: &width}))
	assert.Equal(t, "Wide", s.Template.Name)
	assert.Equal(t, 100.0, s.Template.Width)
}

func TestApplyDispatches(t *testing.T) {
	s := NewSession(newTemplate(), nil)
	require.NoError(t, s.Apply(Event{Type: EventPointerDown, ElementID: "a", X: 0, Y: 0}))
	require.NoError(t, s.Apply(Event{Type: EventPointerMove, X: label.MmToPixels(5), Y: 0}))
	require.NoError(t, s.Apply(Event{Type: EventPointerUp}))

	el, _ := s.Template.Element("a")
	assert.InDelta(t, -5.0, el.X, 1e-9)

	require.NoError(t, s.Apply(Event{Type: EventAdd, Kind: label.ElementQRCode}))
	draft := s.State().(Editing).Draft
	draft.DataField = "sku"
	require.NoError(t, s.Apply(Event{Type: EventSave, Element: &draft}))
	added, ok := s.Template.Element(draft.ID)
	require.True(t, ok)
	assert.Equal(t, "sku", added.DataField)

	assert.ErrorIs(t, s.Apply(Event{Type: "wiggle"}), ErrUnknownEvent)
}

func TestManagerIsolatesSessions(t *testing.T) {
	m := NewManager()
	tmpl := newTemplate()
	s := m.Open(tmpl, nil)
	require.NotEmpty(t, s.ID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Do(s.ID, func(s *Session) error {
				if err := s.PointerDown("a", 0, 0); err != nil {
					return err
				}
				if err := s.PointerMove(float64(i), 0); err != nil {
					return err
				}
				s.PointerUp()
				return nil
			})
		}(i)
	}
	wg.Wait()

	el, _ := tmpl.Element("a")
	assert.Equal(t, -10.0, el.X, "the caller's template is not shared with the session")

	assert.ElementsMatch(t, []string{s.ID}, m.IDs())
	assert.True(t, m.Close(s.ID))
	assert.False(t, m.Close(s.ID))
	assert.ErrorIs(t, m.Do(s.ID, func(*Session) error { return nil }), ErrSessionNotFound)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestManagerSweepsIdleSessions(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager()
	m.now = clock.now

	stale := m.Open(newTemplate(), nil)
	clock.t = clock.t.Add(20 * time.Minute)
	active := m.Open(newTemplate(), nil)
	clock.t = clock.t.Add(15 * time.Minute)
	require.NoError(t, m.Do(active.ID, func(*Session) error { return nil }))

	assert.Equal(t, []string{stale.ID}, m.Sweep(30*time.Minute))
	assert.ErrorIs(t, m.Do(stale.ID, func(*Session) error { return nil }), ErrSessionNotFound)
	assert.ElementsMatch(t, []string{active.ID}, m.IDs())
}

func TestManagerEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager()
	m.now = clock.now
	m.MaxSessions = 2

	first := m.Open(newTemplate(), nil)
	clock.t = clock.t.Add(time.Minute)
	second := m.Open(newTemplate(), nil)
	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, m.Do(first.ID, func(*Session) error { return nil }))
	clock.t = clock.t.Add(time.Minute)
	third := m.Open(newTemplate(), nil)

	assert.ElementsMatch(t, []string{first.ID, third.ID}, m.IDs())
	assert.ErrorIs(t, m.Do(second.ID, func(*Session) error { return nil }), ErrSessionNotFound)
}
