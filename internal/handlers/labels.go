package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/models"
	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/websocket"
)

// renderItem asks for labels of one product, referenced by id or sent inline.
// A nil Copies takes the configured copies per product.
type renderItem struct {
	ProductID string          `json:"productId,omitempty"`
	Product   *models.Product `json:"product,omitempty"`
	Copies    *int            `json:"copies,omitempty"`
}

// renderRequest is the body of the preview, print and pdf routes. The
// template is taken inline, by id, or from the label settings, in that order.
type renderRequest struct {
	TemplateID string          `json:"templateId,omitempty"`
	Template   *label.Template `json:"template,omitempty"`
	Items      []renderItem    `json:"items"`
	Width      float64         `json:"width,omitempty"`
	Margin     float64         `json:"margin,omitempty"`
	Paper      *label.Paper    `json:"paper,omitempty"`
	AutoPrint  *bool           `json:"autoPrint,omitempty"`
}

// renderJob is a resolved render request.
type renderJob struct {
	template  *label.Template
	instances []label.Instance
	copies    int
	products  []string
	counts    []int
}

func (r *Router) templateFor(ctx context.Context, body renderRequest, defaults settings.LabelSettings) (*label.Template, error) {
	if body.Template != nil {
		if err := body.Template.ValidatePage(); err != nil {
			return nil, err
		}
		return body.Template, nil
	}
	id := lo.CoalesceOrEmpty(body.TemplateID, defaults.SelectedTemplateID, label.DefaultTemplateID)
	t, err := r.deps.Templates.Get(ctx, id)
	if err != nil && id == label.DefaultTemplateID {
		// The built-in template renders even before the store was seeded.
		if def, ok := lo.Find(label.DefaultTemplates(), func(t label.Template) bool { return t.ID == id }); ok {
			return &def, nil
		}
	}
	return t, err
}

func (r *Router) resolveRender(ctx context.Context, body renderRequest, sample bool) (*renderJob, error) {
	defaults, err := settings.Load(ctx, r.deps.Settings, settings.KeyLabels, settings.DefaultLabelSettings())
	if err != nil {
		return nil, err
	}
	t, err := r.templateFor(ctx, body, defaults)
	if err != nil {
		return nil, err
	}

	job := &renderJob{template: t, copies: max(defaults.CopiesPerProduct, 1)}
	requests := make([]label.PrintRequest, 0, len(body.Items))
	for i, item := range body.Items {
		p := item.Product
		if p == nil {
			if item.ProductID == "" {
				return nil, badRequest("item %d names no product", i)
			}
			if p, err = r.deps.Products.Get(ctx, item.ProductID); err != nil {
				return nil, err
			}
		}
		copies := job.copies
		if item.Copies != nil {
			if *item.Copies < 0 {
				return nil, badRequest("item %d: copies must not be negative", i)
			}
			copies = *item.Copies
		}
		requests = append(requests, label.PrintRequest{Product: p, Copies: copies})
		job.products = append(job.products, p.ID)
		job.counts = append(job.counts, copies)
	}
	if len(requests) == 0 && sample {
		// The designer previews one label with every field at its fallback.
		requests = append(requests, label.PrintRequest{Copies: 1})
	}
	job.instances = label.Expand(requests)
	return job, nil
}

func setReportHeaders(w http.ResponseWriter, rep label.RenderReport) {
	w.Header().Set("X-Label-Count", strconv.Itoa(rep.Labels))
	w.Header().Set("X-Labels-Per-Row", strconv.Itoa(rep.LabelsPerRow))
	w.Header().Set("X-Label-Rows", strconv.Itoa(rep.Rows))
	w.Header().Set("X-Render-Failures", strconv.Itoa(len(rep.Failures)))
}

func logFailures(kind string, t *label.Template, rep label.RenderReport) {
	if n := len(rep.Failures); n > 0 {
		log.Printf("⚠️ %s of %q: %d element(s) left blank, first: %s", kind, t.Name, n, rep.Failures[0].Error)
	}
}

// previewLabels renders the on-screen preview as SVG
func (r *Router) previewLabels(w http.ResponseWriter, req *http.Request) {
	var body renderRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := r.resolveRender(req.Context(), body, true)
	if err != nil {
		fail(w, err)
		return
	}

	opts := r.deps.Preview
	opts.Resolver = r.resolver(req.Context())
	if body.Width > 0 {
		opts.Width = body.Width
	}
	if body.Margin > 0 {
		opts.Margin = body.Margin
	}
	var buf bytes.Buffer
	rep, err := label.RenderPreview(&buf, job.template, job.instances, opts)
	if err != nil {
		fail(w, err)
		return
	}
	logFailures("Preview", job.template, rep)
	setReportHeaders(w, rep)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// paperFor returns the page layout of a print request and the profile snapshot recorded with the job.
func (r *Router) paperFor(ctx context.Context, body renderRequest) (label.Paper, json.RawMessage, error) {
	profile, err := settings.Load(ctx, r.deps.Settings, settings.KeyPrinter, settings.DefaultPrinterProfile())
	if err != nil {
		return label.Paper{}, nil, err
	}
	paper := profile.Paper()
	if body.Paper != nil {
		paper = *body.Paper
		if paper.Width < 0 || paper.Height < 0 || paper.Margin < 0 {
			return label.Paper{}, nil, badRequest("paper size and margin must not be negative")
		}
	}
	snapshot, err := json.Marshal(map[string]interface{}{"profile": profile, "paper": paper})
	if err != nil {
		return label.Paper{}, nil, err
	}
	return paper, snapshot, nil
}

type printRenderer func(buf *bytes.Buffer, job *renderJob, paper label.Paper, resolver *label.Resolver, autoPrint bool) (label.RenderReport, error)

// printLabels renders the print document as HTML and records a print job
func (r *Router) printLabels(w http.ResponseWriter, req *http.Request) {
	r.print(w, req, "html", "text/html; charset=utf-8",
		func(buf *bytes.Buffer, job *renderJob, paper label.Paper, res *label.Resolver, autoPrint bool) (label.RenderReport, error) {
			return label.RenderPrintHTML(buf, job.template, job.instances, label.PrintOptions{
				Paper: paper, Resolver: res, AutoPrint: autoPrint,
			})
		})
}

// pdfLabels renders the print document as PDF and records a print job
func (r *Router) pdfLabels(w http.ResponseWriter, req *http.Request) {
	r.print(w, req, "pdf", "application/pdf",
		func(buf *bytes.Buffer, job *renderJob, paper label.Paper, res *label.Resolver, _ bool) (label.RenderReport, error) {
			return label.RenderPDF(buf, job.template, job.instances, label.PDFOptions{
				Paper: paper, Resolver: res, FontFile: r.deps.PDFFontFile,
			})
		})
}

func (r *Router) print(w http.ResponseWriter, req *http.Request, format, contentType string, render printRenderer) {
	ctx := req.Context()
	var body renderRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := r.resolveRender(ctx, body, false)
	if err != nil {
		fail(w, err)
		return
	}
	if len(job.instances) == 0 {
		respondError(w, http.StatusBadRequest, "nothing to print: add at least one product with copies")
		return
	}
	paper, snapshot, err := r.paperFor(ctx, body)
	if err != nil {
		fail(w, err)
		return
	}

	var buf bytes.Buffer
	rep, err := render(&buf, job, paper, r.resolver(ctx), body.AutoPrint == nil || *body.AutoPrint)
	if err != nil {
		fail(w, err)
		return
	}
	logFailures("Print", job.template, rep)

	pj := &models.PrintJob{
		TemplateID:       job.template.ID,
		ProductIDs:       job.products,
		Copies:           job.counts,
		CopiesPerProduct: job.copies,
		LabelCount:       rep.Labels,
		Format:           format,
		PaperLayout:      datatypes.JSON(snapshot),
	}
	if err := r.deps.PrintJobs.Create(ctx, pj); err != nil {
		fail(w, err)
		return
	}
	r.notify(websocket.Event{Type: websocket.EventPrintCreated, PrintJobID: pj.ID, TemplateID: pj.TemplateID, Status: pj.Status})

	setReportHeaders(w, rep)
	w.Header().Set("X-Print-Job-ID", pj.ID)
	w.Header().Set("Content-Type", contentType)
	if format == "pdf" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"labels_%s.pdf\"", pj.ID))
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
