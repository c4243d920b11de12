package models

import (
	"fmt"
	"time"
)

// ChecklistCategory identifies a recurring inspection task.
type ChecklistCategory string

const (
	DailyRoutine     ChecklistCategory = "Daily Routine"
	MonthlyDeepClean ChecklistCategory = "Monthly Deep Clean"
	QuarterlyAudit   ChecklistCategory = "Quarterly Audit"
)

// ChecklistCategories lists the categories in schedule order.
var ChecklistCategories = []ChecklistCategory{DailyRoutine, MonthlyDeepClean, QuarterlyAudit}

// IsValidCategory checks if a category is known
func IsValidCategory(c ChecklistCategory) bool {
	switch c {
	case DailyRoutine, MonthlyDeepClean, QuarterlyAudit:
		return true
	default:
		return false
	}
}

// CheckKey builds the "{assetId}-{category}" key of the checked set.
func CheckKey(assetID int, category ChecklistCategory) string {
	return fmt.Sprintf("%d-%s", assetID, category)
}

// PendingCheck is a checklist completion that was recorded locally but
// never acknowledged by the remote sheet.
type PendingCheck struct {
	Key        string            `json:"key" bson:"_id"`
	AssetID    int               `json:"assetId" bson:"asset_id"`
	AssetTag   string            `json:"assetTag" bson:"asset_tag"`
	Technician string            `json:"technician" bson:"technician"`
	Category   ChecklistCategory `json:"category" bson:"category"`
	Error      string            `json:"error" bson:"error"`
	RecordedAt time.Time         `json:"recordedAt" bson:"recorded_at"`
}

// ChecklistResult is returned by a checklist submission.
type ChecklistResult struct {
	Key            string `json:"key"`
	Synced         bool   `json:"synced"`
	AlreadyChecked bool   `json:"alreadyChecked"`
}

// ZoneAssetChecks lists which categories are done for one asset of a zone.
type ZoneAssetChecks struct {
	Asset     Asset               `json:"asset"`
	Completed []ChecklistCategory `json:"completed"`
}
