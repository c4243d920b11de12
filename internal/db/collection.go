package db

import (
	"context"

	"github.com/ukydev/fm-control/internal/models"
)

// StaffCollection defines the interface for staff account operations.
type StaffCollection interface {
	InsertStaff(ctx context.Context, staff models.Staff) error
	FindStaffByID(ctx context.Context, id string) (*models.Staff, error)
	FindStaffByUsername(ctx context.Context, username string) (*models.Staff, error)
	FindStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// TechnicianCollection persists the locally owned part of a technician:
// attendance, current zone and bonus points. Merit and demerit are always
// derived from tickets and never stored.
type TechnicianCollection interface {
	FindTechnicians(ctx context.Context) ([]models.Technician, error)
	SaveTechnician(ctx context.Context, tech models.Technician) error
}

// InventoryCollection persists gas stock levels.
type InventoryCollection interface {
	FindItems(ctx context.Context) ([]models.InventoryItem, error)
	SaveItem(ctx context.Context, item models.InventoryItem) error
}

// ChecklistJournal records checklist completions the remote store never
// acknowledged.
type ChecklistJournal interface {
	RecordPending(ctx context.Context, check models.PendingCheck) error
	FindPending(ctx context.Context) ([]models.PendingCheck, error)
	DeletePending(ctx context.Context, key string) error
}
