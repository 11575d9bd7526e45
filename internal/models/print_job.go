package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Print job statuses. Only PrintJobQueued is set here; later transitions are
// reported by whatever drives the printer.
const (
	PrintJobQueued    = "queued"
	PrintJobPrinting  = "printing"
	PrintJobCompleted = "completed"
	PrintJobFailed    = "failed"
)

// PrintJob records the parameters of a rendering request.
type PrintJob struct {
	ID               string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TemplateID       string                      `gorm:"type:varchar(64);index" json:"templateId"`
	ProductIDs       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"productIds"`
	// Copies[i] is the number of labels printed for ProductIDs[i].
	Copies           datatypes.JSONSlice[int]    `gorm:"type:jsonb" json:"copies"`
	CopiesPerProduct int                         `json:"copiesPerProduct"`
	LabelCount       int                         `json:"labelCount"`
	Format           string                      `gorm:"type:varchar(8)" json:"format"`
	PaperLayout      datatypes.JSON              `gorm:"type:jsonb" json:"paperLayout"`
	Status           string                      `gorm:"type:varchar(16);default:'queued';index" json:"status"`
	Error            string                      `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PrintJob) TableName() string { return "print_jobs" }

func (j *PrintJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = PrintJobQueued
	}
	return nil
}

// ValidPrintJobStatus reports whether s is a known status.
func ValidPrintJobStatus(s string) bool {
	switch s {
	case PrintJobQueued, PrintJobPrinting, PrintJobCompleted, PrintJobFailed:
		return true
	}
	return false
}
