package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/models"
)

// prepareSave validates t and stamps id and timestamps onto a copy of it.
func prepareSave(t *label.Template, existing *label.Template, now time.Time) (*label.Template, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := t.Clone()
	if label.IsTemporaryID(out.ID) {
		out.ID = uuid.NewString()
	}
	if out.Elements == nil {
		out.Elements = []label.Element{}
	}
	created := now
	if existing != nil && existing.CreatedAt != nil {
		created = *existing.CreatedAt
	} else if out.CreatedAt != nil {
		created = *out.CreatedAt
	}
	out.CreatedAt = &created
	out.UpdatedAt = &now
	return out, nil
}

// sortTemplates orders defaults first, then by name.
func sortTemplates(list []label.Template) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsDefault != list[j].IsDefault {
			return list[i].IsDefault
		}
		return list[i].Name < list[j].Name
	})
}

// MemoryTemplates keeps templates in process memory.
type MemoryTemplates struct {
	mu        sync.RWMutex
	templates map[string]*label.Template
	now       func() time.Time
}

func NewMemoryTemplates() *MemoryTemplates {
	return &MemoryTemplates{templates: make(map[string]*label.Template), now: time.Now}
}

func (s *MemoryTemplates) List(_ context.Context) ([]label.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := lo.Map(lo.Values(s.templates), func(t *label.Template, _ int) label.Template {
		return *t.Clone()
	})
	sortTemplates(list)
	return list, nil
}

func (s *MemoryTemplates) Get(_ context.Context, id string) (*label.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

func (s *MemoryTemplates) Save(_ context.Context, t *label.Template) (*label.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing *label.Template
	if t != nil {
		existing = s.templates[t.ID]
	}
	out, err := prepareSave(t, existing, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.templates[out.ID] = out
	return out.Clone(), nil
}

func (s *MemoryTemplates) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	delete(s.templates, id)
	return nil
}

// GormTemplates stores templates in the label_templates table.
type GormTemplates struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormTemplates(db *gorm.DB) *GormTemplates {
	return &GormTemplates{db: db, now: time.Now}
}

func (s *GormTemplates) List(ctx context.Context) ([]label.Template, error) {
	var rows []models.LabelTemplate
	if err := s.db.WithContext(ctx).Order("is_default DESC, name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	list := make([]label.Template, 0, len(rows))
	for i := range rows {
		t, err := fromRow(&rows[i])
		if err != nil {
			// One corrupt row must not hide the others.
			log.Printf("⚠️ Skipping template %s: %v", rows[i].ID, err)
			continue
		}
		list = append(list, *t)
	}
	return list, nil
}

func (s *GormTemplates) Get(ctx context.Context, id string) (*label.Template, error) {
	var row models.LabelTemplate
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	return fromRow(&row)
}

func (s *GormTemplates) Save(ctx context.Context, t *label.Template) (*label.Template, error) {
	var existing *label.Template
	if t != nil && !label.IsTemporaryID(t.ID) {
		if cur, err := s.Get(ctx, t.ID); err == nil {
			existing = cur
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	out, err := prepareSave(t, existing, s.now().UTC())
	if err != nil {
		return nil, err
	}
	row, err := toRow(out)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, fmt.Errorf("save template %s: %w", out.ID, err)
	}
	return out, nil
}

func (s *GormTemplates) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LabelTemplate{})
	if res.Error != nil {
		return fmt.Errorf("delete template %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

func toRow(t *label.Template) (*models.LabelTemplate, error) {
	elements, err := json.Marshal(lo.Ternary(t.Elements == nil, []label.Element{}, t.Elements))
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}
	row := &models.LabelTemplate{
		ID:              t.ID,
		Name:            t.Name,
		Width:           t.Width,
		Height:          t.Height,
		BackgroundColor: t.BackgroundColor,
		BorderWidth:     t.BorderWidth,
		BorderColor:     t.BorderColor,
		Elements:        datatypes.JSON(elements),
		IsDefault:       t.IsDefault,
		IsActive:        t.IsActive,
	}
	if t.CreatedAt != nil {
		row.CreatedAt = *t.CreatedAt
	}
	if t.UpdatedAt != nil {
		row.UpdatedAt = *t.UpdatedAt
	}
	return row, nil
}

func fromRow(row *models.LabelTemplate) (*label.Template, error) {
	t := &label.Template{
		ID:              row.ID,
		Name:            row.Name,
		Width:           row.Width,
		Height:          row.Height,
		BackgroundColor: row.BackgroundColor,
		BorderWidth:     row.BorderWidth,
		BorderColor:     row.BorderColor,
		Elements:        []label.Element{},
		IsDefault:       row.IsDefault,
		IsActive:        row.IsActive,
	}
	if len(row.Elements) > 0 {
		if err := json.Unmarshal(row.Elements, &t.Elements); err != nil {
			return nil, fmt.Errorf("decode elements of %s: %w", row.ID, err)
		}
	}
	created, updated := row.CreatedAt, row.UpdatedAt
	t.CreatedAt, t.UpdatedAt = &created, &updated
	return t, nil
}

// EnsureDefaults seeds the built-in templates into an empty store and returns
// the current list.
func EnsureDefaults(ctx context.Context, s TemplateStore) ([]label.Template, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}
	for _, t := range label.DefaultTemplates() {
		if _, err := s.Save(ctx, &t); err != nil {
			return nil, fmt.Errorf("seed template %q: %w", t.Name, err)
		}
	}
	log.Printf("🏷️ Seeded %d default label templates", len(label.DefaultTemplates()))
	return s.List(ctx)
}
