package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/designer"
	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/models"
	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/websocket"
)

// sessionView is what designer clients see after every call.
type sessionView struct {
	ID         string                `json:"id"`
	Mode       designer.Mode         `json:"mode"`
	State      designer.State        `json:"state"`
	SelectedID string                `json:"selectedId,omitempty"`
	Dirty      bool                  `json:"dirty"`
	Changed    bool                  `json:"changed"`
	Template   *label.Template       `json:"template"`
	Preview    string                `json:"preview,omitempty"`
	Failures   []label.RenderFailure `json:"failures,omitempty"`
}

func viewOf(s *designer.Session) sessionView {
	return sessionView{
		ID:         s.ID,
		Mode:       s.State().Mode(),
		State:      s.State(),
		SelectedID: s.SelectedID(),
		Dirty:      s.Dirty(),
		Template:   s.Template,
	}
}

// renderSession draws the session's template for one sample product.
func (r *Router) renderSession(ctx context.Context, v *sessionView, s *designer.Session, productID string) error {
	var product *models.Product
	if productID != "" {
		p, err := r.deps.Products.Get(ctx, productID)
		if err != nil {
			return err
		}
		product = p
	}
	opts := r.deps.Preview
	opts.Resolver = r.resolver(ctx)
	var buf bytes.Buffer
	rep, err := label.RenderPreview(&buf, s.Template, label.Expand([]label.PrintRequest{{Product: product, Copies: 1}}), opts)
	if err != nil {
		return err
	}
	v.Preview = buf.String()
	v.Failures = rep.Failures
	return nil
}

// openSession starts designing a stored template, or an inline one
func (r *Router) openSession(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var body struct {
		TemplateID string          `json:"templateId"`
		Template   *label.Template `json:"template"`
		ProductID  string          `json:"productId"`
	}
	if err := decodeJSON(w, req, &body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defaults, err := settings.Load(ctx, r.deps.Settings, settings.KeyLabels, settings.DefaultLabelSettings())
	if err != nil {
		fail(w, err)
		return
	}
	t, err := r.templateFor(ctx, renderRequest{TemplateID: body.TemplateID, Template: body.Template}, defaults)
	if err != nil {
		fail(w, err)
		return
	}

	s := r.deps.Sessions.Open(t, nil)
	v := viewOf(s)
	if err := r.renderSession(ctx, &v, s, body.ProductID); err != nil {
		r.deps.Sessions.Close(s.ID)
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

func (r *Router) getSession(w http.ResponseWriter, req *http.Request) {
	var v sessionView
	err := r.deps.Sessions.Do(mux.Vars(req)["id"], func(s *designer.Session) error {
		v = viewOf(s)
		return r.renderSession(req.Context(), &v, s, req.URL.Query().Get("productId"))
	})
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// sessionEvent applies one interaction. The preview is redrawn only when the
// interaction changed the template.
func (r *Router) sessionEvent(w http.ResponseWriter, req *http.Request) {
	var ev designer.Event
	if err := decodeJSON(w, req, &ev); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var v sessionView
	err := r.deps.Sessions.Do(mux.Vars(req)["id"], func(s *designer.Session) error {
		changed := false
		s.OnChange = func(*label.Template) { changed = true }
		defer func() { s.OnChange = nil }()

		if err := s.Apply(ev); err != nil {
			return err
		}
		v = viewOf(s)
		v.Changed = changed
		if changed {
			return r.renderSession(req.Context(), &v, s, req.URL.Query().Get("productId"))
		}
		return nil
	})
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// commitSession persists the session's template and tells previews to refresh
func (r *Router) commitSession(w http.ResponseWriter, req *http.Request) {
	var v sessionView
	err := r.deps.Sessions.Do(mux.Vars(req)["id"], func(s *designer.Session) error {
		saved, err := r.deps.Templates.Save(req.Context(), s.Template)
		if err != nil {
			return err
		}
		s.Template = saved
		s.MarkSaved()
		v = viewOf(s)
		return nil
	})
	if err != nil {
		fail(w, err)
		return
	}
	r.notify(websocket.Event{Type: websocket.EventTemplateUpdated, TemplateID: v.Template.ID})
	respondJSON(w, http.StatusOK, v)
}

func (r *Router) closeSession(w http.ResponseWriter, req *http.Request) {
	if !r.deps.Sessions.Close(mux.Vars(req)["id"]) {
		fail(w, designer.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
