package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/poslabel/internal/designer"
	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/models"
	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/store"
)

var fixedNow = time.Date(2024, 1, 15, 14, 30, 5, 0, time.UTC)

type testEnv struct {
	router    *Router
	templates *store.MemoryTemplates
	products  *store.MemoryProducts
	jobs      *store.MemoryPrintJobs
	settings  *settings.Memory
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	env := &testEnv{
		templates: store.NewMemoryTemplates(),
		products: store.NewMemoryProducts(models.Product{
			ID:      "rice",
			Name:    "Basmati Rice",
			SKU:     "RICE-1",
			Barcode: "8901234",
			Price:   decimal.NewNullDecimal(decimal.NewFromInt(36)),
			MRP:     decimal.NewNullDecimal(decimal.NewFromInt(48)),
		}),
		jobs:     store.NewMemoryPrintJobs(),
		settings: settings.NewMemory(),
	}
	env.router = NewRouter(Deps{
		Templates: env.templates,
		Products:  env.products,
		PrintJobs: env.jobs,
		Settings:  env.settings,
		Store:     label.StoreInfo{Name: label.DefaultStoreName, Address: label.DefaultStoreAddress},
		JWTSecret: secret,
		Now:       func() time.Time { return fixedNow },
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndFields(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/fields", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fields := decode[map[string][]string](t, rec)
	assert.Contains(t, fields["fields"], "storeAddress")

	rec = env.do(t, "GET", "/api/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTemplatesSeedAndSave(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, "GET", "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]label.Template](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "M MART Standard", list[0].Name)

	draft := label.Template{ID: label.NewTemporaryID(), Name: "Sale Tag", Width: 40, Height: 30, Elements: []label.Element{}}
	rec = env.do(t, "POST", "/api/templates", draft)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[label.Template](t, rec)
	assert.False(t, label.IsTemporaryID(saved.ID))

	saved.Name = "Sale Tag v2"
	rec = env.do(t, "PUT", "/api/templates/"+saved.ID, saved)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/templates/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sale Tag v2", decode[label.Template](t, rec).Name)

	rec = env.do(t, "POST", "/api/templates", label.Template{Name: "bad", Width: -1, Height: 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "DELETE", "/api/templates/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, "GET", "/api/templates/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, "GET", "/api/templates", nil)

	rec := env.do(t, "GET", "/api/templates/"+label.DefaultTemplateID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "m-mart-standard.json")
	exported := rec.Body.Bytes()

	rec = env.do(t, "POST", "/api/templates/import", exported)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	imported := decode[label.Template](t, rec)
	assert.NotEqual(t, label.DefaultTemplateID, imported.ID)
	assert.False(t, imported.IsDefault)

	orig, err := env.templates.Get(testContext(t), label.DefaultTemplateID)
	require.NoError(t, err)
	assert.Equal(t, orig.Elements, imported.Elements)
	assert.Equal(t, orig.Width, imported.Width)
}

func TestCorruptImportLeavesListUnchanged(t *testing.T) {
	env := newTestEnv(t, "")
	before := decode[[]label.Template](t, env.do(t, "GET", "/api/templates", nil))

	for _, body := range []string{`{"name": "x", "width": 10`, `{"name":"x","width":10,"height":10}`, `[]`} {
		rec := env.do(t, "POST", "/api/templates/import", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
	}

	after := decode[[]label.Template](t, env.do(t, "GET", "/api/templates", nil))
	assert.Equal(t, before, after)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, "POST", "/api/labels/preview", map[string]interface{}{
		"templateId": label.DefaultTemplateID,
		"items":      []map[string]interface{}{{"productId": "rice", "copies": 3}},
		"width":      500,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("X-Label-Count"))
	assert.Equal(t, "1", rec.Header().Get("X-Labels-Per-Row"))
	assert.Contains(t, rec.Body.String(), "36.00")
	assert.Contains(t, rec.Body.String(), "Basmati Rice")

	// Without items the designer sample label is drawn.
	rec = env.do(t, "POST", "/api/labels/preview", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Label-Count"))
	assert.Contains(t, rec.Body.String(), "0.00")

	rec = env.do(t, "POST", "/api/labels/preview", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "missing"}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewSurvivesMalformedElement(t *testing.T) {
	env := newTestEnv(t, "")
	tmpl := map[string]interface{}{
		"name": "mixed", "width": 50, "height": 30,
		"elements": []map[string]interface{}{
			{"id": "ok", "type": "text", "x": -20, "y": 2, "width": 40, "height": 6, "content": "hello"},
			{"id": "circle", "type": "circle", "x": 0, "y": 10, "width": 10, "height": 10},
		},
	}
	rec := env.do(t, "POST", "/api/labels/preview", map[string]interface{}{"template": tmpl})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), ">hello<")
	assert.Equal(t, "1", rec.Header().Get("X-Render-Failures"))

	rec = env.do(t, "POST", "/api/labels/print", map[string]interface{}{
		"template": tmpl,
		"items":    []map[string]interface{}{{"productId": "rice"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), ">hello<")

	tmpl["width"] = 0
	rec = env.do(t, "POST", "/api/labels/preview", map[string]interface{}{"template": tmpl})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintRecordsJob(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, settings.Save(testContext(t), env.settings, settings.KeyStore, label.StoreInfo{Name: "Corner & Co"}))

	rec := env.do(t, "POST", "/api/labels/print", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": "rice", "copies": 2},
			{"product": map[string]interface{}{"name": "Loose Dal", "price": "12.5"}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	html := rec.Body.String()
	assert.Contains(t, html, "@page { size: 210.00mm 297.00mm; margin: 5.00mm; }")
	assert.Contains(t, html, "Corner &amp; Co")
	assert.Contains(t, html, "48.00")
	assert.Contains(t, html, "12.50")
	assert.Contains(t, html, "window.print()")
	assert.Equal(t, 3, strings.Count(html, `<div class="label"`))

	jobID := rec.Header().Get("X-Print-Job-ID")
	require.NotEmpty(t, jobID)

	jobs := decode[[]models.PrintJob](t, env.do(t, "GET", "/api/print-jobs", nil))
	require.Len(t, jobs, 1)
	assert.Equal(t, models.PrintJobQueued, jobs[0].Status)
	assert.Equal(t, 3, jobs[0].LabelCount)
	assert.Equal(t, "html", jobs[0].Format)
	assert.Equal(t, label.DefaultTemplateID, jobs[0].TemplateID)
	assert.Equal(t, []string{"rice", ""}, []string(jobs[0].ProductIDs))
	assert.Equal(t, []int{2, 1}, []int(jobs[0].Copies), "per-item copies, not only the default")
	assert.Equal(t, 1, jobs[0].CopiesPerProduct)

	rec = env.do(t, "PATCH", "/api/print-jobs/"+jobID, map[string]string{"status": models.PrintJobCompleted})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PrintJobCompleted, decode[models.PrintJob](t, rec).Status)

	rec = env.do(t, "PATCH", "/api/print-jobs/"+jobID, map[string]string{"status": "shredded"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintRequiresLabels(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, "POST", "/api/labels/print", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "rice", "copies": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	jobs, _ := env.jobs.List(testContext(t), 0)
	assert.Empty(t, jobs)
}

func TestPDF(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, "POST", "/api/labels/pdf", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "rice", "copies": 4}},
		"paper": map[string]float64{"width": 100, "height": 100, "margin": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "4", rec.Header().Get("X-Label-Count"))
}

// sessionResponse mirrors sessionView without the state union, which only encodes.
type sessionResponse struct {
	ID       string          `json:"id"`
	Mode     designer.Mode   `json:"mode"`
	Dirty    bool            `json:"dirty"`
	Changed  bool            `json:"changed"`
	Template *label.Template `json:"template"`
	Preview  string          `json:"preview"`
}

func TestDesignerSession(t *testing.T) {
	env := newTestEnv(t, "")
	blank := label.Template{ID: label.NewTemporaryID(), Name: "Blank", Width: 60, Height: 30, Elements: []label.Element{}}

	rec := env.do(t, "POST", "/api/designer/sessions", map[string]interface{}{"template": blank})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[sessionResponse](t, rec)
	assert.Equal(t, designer.ModeIdle, view.Mode)
	assert.NotEmpty(t, view.Preview)
	base := "/api/designer/sessions/" + view.ID

	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventAdd, Kind: label.ElementText})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[sessionResponse](t, rec)
	assert.Equal(t, designer.ModeEditing, view.Mode)
	assert.True(t, view.Changed, "a new element is placed before its editor opens")
	assert.NotEmpty(t, view.Preview)

	// Dragging while the editor is open is not a valid transition.
	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventPointerDown, ElementID: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventCancel})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[sessionResponse](t, rec)
	require.Len(t, view.Template.Elements, 1)
	el := view.Template.Elements[0]

	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventPointerDown, ElementID: el.ID, X: 100, Y: 100})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventPointerMove, X: 100 + label.MmToPixels(5), Y: 100})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[sessionResponse](t, rec)
	assert.True(t, view.Changed)
	assert.NotEmpty(t, view.Preview)
	assert.InDelta(t, el.X+5, view.Template.Elements[0].X, 1e-9)
	require.Equal(t, http.StatusOK, env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventPointerUp}).Code)

	// A draft with a negative size is refused and the editor stays open.
	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventSelect, ElementID: el.ID, Open: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bad := el
	bad.Width = -5
	rec = env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventSave, Element: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, "GET", base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[sessionResponse](t, rec)
	assert.Equal(t, designer.ModeEditing, view.Mode)
	assert.NotEmpty(t, view.Preview)
	require.Equal(t, http.StatusOK, env.do(t, "POST", base+"/events", designer.Event{Type: designer.EventCancel}).Code)

	rec = env.do(t, "POST", base+"/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[sessionResponse](t, rec)
	assert.False(t, label.IsTemporaryID(view.Template.ID))
	assert.False(t, view.Dirty)

	stored, err := env.templates.Get(testContext(t), view.Template.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Elements, 1)

	assert.Equal(t, http.StatusNoContent, env.do(t, "DELETE", base, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", base, nil).Code)
}

func TestSettingsRoutes(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, "GET", "/api/settings/printer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.DefaultPrinterProfile(), decode[settings.PrinterProfile](t, rec))

	rec = env.do(t, "PUT", "/api/settings/printer", map[string]interface{}{"name": "TSC", "paperWidth": 50, "connection": "fax"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	profile := settings.PrinterProfile{Name: "TSC", PaperWidth: 100, PaperHeight: 150, Margin: 2, Connection: settings.ConnectionUSB}
	rec = env.do(t, "PUT", "/api/settings/printer", profile)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, "GET", "/api/settings/printer", nil)
	assert.Equal(t, profile, decode[settings.PrinterProfile](t, rec))

	rec = env.do(t, "GET", "/api/settings/store", nil)
	assert.Equal(t, label.DefaultStoreName, decode[label.StoreInfo](t, rec).Name)

	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/settings/payroll", nil).Code)
}

func TestBackupRestore(t *testing.T) {
	src := newTestEnv(t, "")
	src.do(t, "GET", "/api/templates", nil)
	require.NoError(t, settings.Save(testContext(t), src.settings, settings.KeyReceipt, settings.DefaultReceiptSettings()))

	rec := src.do(t, "GET", "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	backup := rec.Body.Bytes()

	dst := newTestEnv(t, "")
	assert.Equal(t, http.StatusBadRequest, dst.do(t, "POST", "/api/backup/restore", `{"version":1,"templates":[{"name":"x"}]}`).Code)
	list, _ := dst.templates.List(testContext(t))
	assert.Empty(t, list)

	rec = dst.do(t, "POST", "/api/backup/restore", backup)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]int{"templates": 3, "settings": 1}, decode[map[string]int](t, rec))

	list, _ = dst.templates.List(testContext(t))
	assert.Len(t, list, 3)
	_, err := dst.settings.Get(testContext(t), settings.KeyReceipt)
	assert.NoError(t, err)
}

func TestWriteRoutesRequireToken(t *testing.T) {
	const secret = "s3cret"
	env := newTestEnv(t, secret)

	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/templates", nil).Code)

	draft := label.Template{Name: "A", Width: 10, Height: 10}
	assert.Equal(t, http.StatusUnauthorized, env.do(t, "POST", "/api/templates", draft).Code)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte(secret))
	require.NoError(t, err)
	rec := env.do(t, "POST", "/api/templates", draft, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// testContext returns a context that is canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
