// Package store is the persistence boundary for label templates, products and
// print jobs. Every store has an in-memory and a GORM implementation.
package store

import (
	"context"
	"errors"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// TemplateStore persists label templates. Save replaces temporary ids with
// durable ones and returns the stored copy.
type TemplateStore interface {
	List(ctx context.Context) ([]label.Template, error)
	Get(ctx context.Context, id string) (*label.Template, error)
	Save(ctx context.Context, t *label.Template) (*label.Template, error)
	Delete(ctx context.Context, id string) error
}

// ProductStore persists the catalogue records labels are printed for.
type ProductStore interface {
	List(ctx context.Context, search string, limit int) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// PrintJobStore records print requests. Status transitions after creation are
// reported from outside.
type PrintJobStore interface {
	Create(ctx context.Context, j *models.PrintJob) error
	List(ctx context.Context, limit int) ([]models.PrintJob, error)
	UpdateStatus(ctx context.Context, id, status, message string) (*models.PrintJob, error)
}

// DefaultListLimit caps list queries that do not ask for a limit.
const DefaultListLimit = 100

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultListLimit
	}
	return limit
}
