package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/settings"
)

// settingsKind knows the shape and default of one settings document.
type settingsKind struct {
	load   func(ctx context.Context, repo settings.Repository, key string, store label.StoreInfo) (interface{}, error)
	decode func(raw []byte) (interface{}, error)
}

func kindOf[T any](def func(label.StoreInfo) T, validate func(T) error) settingsKind {
	return settingsKind{
		load: func(ctx context.Context, repo settings.Repository, key string, store label.StoreInfo) (interface{}, error) {
			return settings.Load(ctx, repo, key, def(store))
		},
		decode: func(raw []byte) (interface{}, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, badRequest("invalid settings document: %v", err)
			}
			if validate != nil {
				if err := validate(v); err != nil {
					return nil, badRequest("%v", err)
				}
			}
			return v, nil
		},
	}
}

var settingsKinds = map[string]settingsKind{
	settings.KeyPrinter: kindOf(func(label.StoreInfo) settings.PrinterProfile { return settings.DefaultPrinterProfile() },
		settings.PrinterProfile.Validate),
	settings.KeyReceipt: kindOf(func(label.StoreInfo) settings.ReceiptSettings { return settings.DefaultReceiptSettings() }, nil),
	settings.KeyTax:     kindOf(func(label.StoreInfo) settings.TaxSettings { return settings.DefaultTaxSettings() }, nil),
	settings.KeyLabels: kindOf(func(label.StoreInfo) settings.LabelSettings { return settings.DefaultLabelSettings() },
		func(v settings.LabelSettings) error {
			if v.CopiesPerProduct < 1 {
				return fmt.Errorf("copiesPerProduct must be at least 1")
			}
			return nil
		}),
	settings.KeyStore: kindOf(func(s label.StoreInfo) label.StoreInfo { return s }, nil),
}

// getSettings returns the stored document for key, or its default
func (r *Router) getSettings(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]
	kind, ok := settingsKinds[key]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown settings key %q", key))
		return
	}
	v, err := kind.load(req.Context(), r.deps.Settings, key, r.deps.Store)
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// putSettings validates and stores the document for key
func (r *Router) putSettings(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]
	kind, ok := settingsKinds[key]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown settings key %q", key))
		return
	}
	raw, err := readBody(w, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read settings document")
		return
	}
	v, err := kind.decode(raw)
	if err != nil {
		fail(w, err)
		return
	}
	if err := settings.Save(req.Context(), r.deps.Settings, key, v); err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}
