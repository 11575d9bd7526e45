package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/store"
	"github.com/xelth-com/poslabel/internal/websocket"
)

// listTemplates returns every template, seeding the built-in ones on first use
func (r *Router) listTemplates(w http.ResponseWriter, req *http.Request) {
	list, err := store.EnsureDefaults(req.Context(), r.deps.Templates)
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getTemplate(w http.ResponseWriter, req *http.Request) {
	t, err := r.deps.Templates.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// createTemplate stores a new template; temporary or missing ids become durable
func (r *Router) createTemplate(w http.ResponseWriter, req *http.Request) {
	var t label.Template
	if err := decodeJSON(w, req, &t); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	r.saveTemplate(w, req, &t, http.StatusCreated)
}

func (r *Router) updateTemplate(w http.ResponseWriter, req *http.Request) {
	var t label.Template
	if err := decodeJSON(w, req, &t); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = mux.Vars(req)["id"]
	r.saveTemplate(w, req, &t, http.StatusOK)
}

func (r *Router) saveTemplate(w http.ResponseWriter, req *http.Request, t *label.Template, status int) {
	saved, err := r.deps.Templates.Save(req.Context(), t)
	if err != nil {
		fail(w, err)
		return
	}
	r.notify(websocket.Event{Type: websocket.EventTemplateUpdated, TemplateID: saved.ID})
	respondJSON(w, status, saved)
}

func (r *Router) deleteTemplate(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	if err := r.deps.Templates.Delete(req.Context(), id); err != nil {
		fail(w, err)
		return
	}
	r.notify(websocket.Event{Type: websocket.EventTemplateDeleted, TemplateID: id})
	w.WriteHeader(http.StatusNoContent)
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// exportFilename derives a download name from the template name.
func exportFilename(t *label.Template) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(t.Name), "-"), "-")
	if name == "" {
		name = "label-template"
	}
	return name + ".json"
}

// exportTemplate downloads a template in the portable JSON format
func (r *Router) exportTemplate(w http.ResponseWriter, req *http.Request) {
	t, err := r.deps.Templates.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		fail(w, err)
		return
	}
	data, err := label.ExportTemplate(t)
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(t)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// importTemplate parses an exported file and stores it as a new template.
// Malformed files are rejected before anything is written.
func (r *Router) importTemplate(w http.ResponseWriter, req *http.Request) {
	data, err := readBody(w, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read template file")
		return
	}
	t, err := label.ImportTemplate(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	r.saveTemplate(w, req, t, http.StatusCreated)
}
