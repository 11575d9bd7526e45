package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/websocket"
)

// downloadBackup returns every template and settings document as one file
func (r *Router) downloadBackup(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	templates, err := r.deps.Templates.List(ctx)
	if err != nil {
		fail(w, err)
		return
	}
	docs, err := settings.Snapshot(ctx, r.deps.Settings)
	if err != nil {
		fail(w, err)
		return
	}
	now := r.deps.Now().UTC()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"poslabel-backup-%s.json\"", now.Format("20060102-150405")))
	respondJSON(w, http.StatusOK, settings.Bundle{
		Version:   settings.BundleVersion,
		CreatedAt: now,
		Templates: templates,
		Settings:  docs,
	})
}

// restoreBackup validates a backup file completely before writing any of it
func (r *Router) restoreBackup(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	data, err := readBody(w, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read backup file")
		return
	}
	bundle, err := settings.ParseBundle(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	for i := range bundle.Templates {
		if _, err := r.deps.Templates.Save(ctx, &bundle.Templates[i]); err != nil {
			fail(w, fmt.Errorf("restore template %q: %w", bundle.Templates[i].Name, err))
			return
		}
	}
	if err := settings.RestoreSettings(ctx, r.deps.Settings, bundle.Settings); err != nil {
		fail(w, err)
		return
	}
	log.Printf("♻️ Restored backup from %s: %d templates, %d settings", bundle.CreatedAt.Format(time.RFC3339), len(bundle.Templates), len(bundle.Settings))
	r.notify(websocket.Event{Type: websocket.EventTemplateUpdated})
	respondJSON(w, http.StatusOK, map[string]int{
		"templates": len(bundle.Templates),
		"settings":  len(bundle.Settings),
	})
}
