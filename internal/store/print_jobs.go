package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xelth-com/poslabel/internal/models"
)

// ErrInvalidStatus is returned by UpdateStatus for unknown statuses.
var ErrInvalidStatus = errors.New("invalid print job status")

// MemoryPrintJobs keeps print jobs in process memory.
type MemoryPrintJobs struct {
	mu    sync.RWMutex
	jobs  map[string]models.PrintJob
	order []string
}

func NewMemoryPrintJobs() *MemoryPrintJobs {
	return &MemoryPrintJobs{jobs: make(map[string]models.PrintJob)}
}

func (s *MemoryPrintJobs) Create(_ context.Context, j *models.PrintJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.Status = models.PrintJobQueued
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	s.jobs[j.ID] = *j
	s.order = append(s.order, j.ID)
	return nil
}

func (s *MemoryPrintJobs) List(_ context.Context, limit int) ([]models.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := normalizeLimit(limit)
	list := make([]models.PrintJob, 0, min(n, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(list) < n; i-- {
		list = append(list, s.jobs[s.order[i]])
	}
	return list, nil
}

func (s *MemoryPrintJobs) UpdateStatus(_ context.Context, id, status, message string) (*models.PrintJob, error) {
	if !models.ValidPrintJobStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("print job %s: %w", id, ErrNotFound)
	}
	j.Status, j.Error, j.UpdatedAt = status, message, time.Now().UTC()
	s.jobs[id] = j
	return &j, nil
}

// GormPrintJobs stores print jobs in the print_jobs table.
type GormPrintJobs struct {
	db *gorm.DB
}

func NewGormPrintJobs(db *gorm.DB) *GormPrintJobs {
	return &GormPrintJobs{db: db}
}

func (s *GormPrintJobs) Create(ctx context.Context, j *models.PrintJob) error {
	j.Status = models.PrintJobQueued
	if err := s.db.WithContext(ctx).Create(j).Error; err != nil {
		return fmt.Errorf("create print job: %w", err)
	}
	return nil
}

func (s *GormPrintJobs) List(ctx context.Context, limit int) ([]models.PrintJob, error) {
	var list []models.PrintJob
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(normalizeLimit(limit)).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list print jobs: %w", err)
	}
	return list, nil
}

func (s *GormPrintJobs) UpdateStatus(ctx context.Context, id, status, message string) (*models.PrintJob, error) {
	if !models.ValidPrintJobStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res := s.db.WithContext(ctx).Model(&models.PrintJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": message, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("update print job %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("print job %s: %w", id, ErrNotFound)
	}
	var j models.PrintJob
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&j).Error; err != nil {
		return nil, fmt.Errorf("reload print job %s: %w", id, err)
	}
	return &j, nil
}
