package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/buildinfo"
	"github.com/xelth-com/poslabel/internal/designer"
	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/middleware"
	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/store"
	"github.com/xelth-com/poslabel/internal/websocket"
)

// maxBodySize caps request bodies; templates and backups are small.
const maxBodySize = 4 << 20

// Deps are the collaborators the HTTP layer works with.
type Deps struct {
	Templates store.TemplateStore
	Products  store.ProductStore
	PrintJobs store.PrintJobStore
	Settings  settings.Repository
	Sessions  *designer.Manager
	// Hub is optional; without it change events are not pushed.
	Hub *websocket.Hub

	// Store is the identity used until one is saved under settings key "store".
	Store   label.StoreInfo
	Preview label.PreviewOptions
	// PDFFontFile enables Unicode text in PDF output.
	PDFFontFile string
	JWTSecret   string
	PathPrefix  string
	// Now feeds the date and time fields; nil means the wall clock.
	Now func() time.Time
}

// Router wraps the mux router and the label service dependencies
type Router struct {
	*mux.Router
	deps Deps
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	if deps.Sessions == nil {
		deps.Sessions = designer.NewManager()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	r := &Router{Router: mux.NewRouter(), deps: deps}

	base := r.Router
	if deps.PathPrefix != "" {
		base = r.PathPrefix(deps.PathPrefix).Subrouter()
	}
	protect := middleware.Auth(deps.JWTSecret)
	write := func(h http.HandlerFunc) http.Handler { return protect(h) }

	base.HandleFunc("/health", r.healthCheck).Methods("GET")
	if deps.Hub != nil {
		base.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(deps.Hub, w, req)
		})
	}

	api := base.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")
	api.HandleFunc("/fields", r.getFields).Methods("GET")

	// Templates
	api.HandleFunc("/templates", r.listTemplates).Methods("GET")
	api.Handle("/templates", write(r.createTemplate)).Methods("POST")
	api.Handle("/templates/import", write(r.importTemplate)).Methods("POST")
	api.HandleFunc("/templates/{id}", r.getTemplate).Methods("GET")
	api.Handle("/templates/{id}", write(r.updateTemplate)).Methods("PUT")
	api.Handle("/templates/{id}", write(r.deleteTemplate)).Methods("DELETE")
	api.HandleFunc("/templates/{id}/export", r.exportTemplate).Methods("GET")

	// Rendering
	api.HandleFunc("/labels/preview", r.previewLabels).Methods("POST")
	api.Handle("/labels/print", write(r.printLabels)).Methods("POST")
	api.Handle("/labels/pdf", write(r.pdfLabels)).Methods("POST")

	// Print jobs
	api.HandleFunc("/print-jobs", r.listPrintJobs).Methods("GET")
	api.Handle("/print-jobs/{id}", write(r.updatePrintJob)).Methods("PATCH")

	// Products
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.Handle("/products", write(r.createProduct)).Methods("POST")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.Handle("/products/{id}", write(r.updateProduct)).Methods("PUT")
	api.Handle("/products/{id}", write(r.deleteProduct)).Methods("DELETE")

	// Designer sessions
	api.Handle("/designer/sessions", write(r.openSession)).Methods("POST")
	api.HandleFunc("/designer/sessions/{id}", r.getSession).Methods("GET")
	api.Handle("/designer/sessions/{id}/events", write(r.sessionEvent)).Methods("POST")
	api.Handle("/designer/sessions/{id}/commit", write(r.commitSession)).Methods("POST")
	api.Handle("/designer/sessions/{id}", write(r.closeSession)).Methods("DELETE")

	// Settings and backup
	api.HandleFunc("/settings/{key}", r.getSettings).Methods("GET")
	api.Handle("/settings/{key}", write(r.putSettings)).Methods("PUT")
	api.Handle("/backup", write(r.downloadBackup)).Methods("GET")
	api.Handle("/backup/restore", write(r.restoreBackup)).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus returns build metadata and live counters
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	status := map[string]interface{}{
		"status":   "running",
		"build":    buildinfo.Current(),
		"sessions": len(r.deps.Sessions.IDs()),
	}
	if r.deps.Hub != nil {
		status["listeners"] = r.deps.Hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, status)
}

// getFields returns the data-field vocabulary elements can bind to
func (r *Router) getFields(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"fields": label.Fields()})
}

// resolver builds the field resolver for a request from the stored store identity.
func (r *Router) resolver(ctx context.Context) *label.Resolver {
	info, err := settings.Load(ctx, r.deps.Settings, settings.KeyStore, r.deps.Store)
	if err != nil {
		log.Printf("⚠️ Store settings unreadable, using configured identity: %v", err)
		info = r.deps.Store
	}
	return &label.Resolver{Store: info, Now: r.deps.Now}
}

func (r *Router) notify(ev websocket.Event) {
	if r.deps.Hub != nil {
		r.deps.Hub.Broadcast(ev)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, req *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, req.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodySize))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, settings.ErrNotFound),
		errors.Is(err, designer.ErrSessionNotFound),
		errors.Is(err, designer.ErrUnknownElement):
		return http.StatusNotFound
	case errors.Is(err, designer.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, label.ErrInvalidTemplate),
		errors.Is(err, label.ErrInvalidElement),
		errors.Is(err, label.ErrMalformedTemplate),
		errors.Is(err, settings.ErrMalformedBundle),
		errors.Is(err, store.ErrInvalidProduct),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, designer.ErrUnknownEvent),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errBadRequest marks request validation failures raised by the handlers themselves.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// fail writes err with the status it maps to. Server errors are logged and
// their detail is not sent to the client.
func fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %v", err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
