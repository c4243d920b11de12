package control

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

// MarkChecklistOK records that technician completed category for an asset.
// A key that is already checked returns without a remote write. A failed
// remote write still marks the key and is kept in the pending journal.
func (c *Controller) MarkChecklistOK(ctx context.Context, assetID int, technician string, category models.ChecklistCategory) (models.ChecklistResult, error) {
	if category == "" {
		category = models.DailyRoutine
	}
	if !models.IsValidCategory(category) {
		return models.ChecklistResult{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	key := models.CheckKey(assetID, category)

	c.mu.RLock()
	asset, ok := c.findAssetLocked(assetID)
	already := c.checked[key]
	_, unsynced := c.pending[key]
	c.mu.RUnlock()

	if !ok {
		return models.ChecklistResult{}, fmt.Errorf("%w: %d", ErrAssetNotFound, assetID)
	}
	if already {
		return models.ChecklistResult{Key: key, Synced: !unsynced, AlreadyChecked: true}, nil
	}

	at := c.now()
	writeErr := c.remote.SubmitChecklist(ctx, sheet.ChecklistWrite{
		AssetTag:   asset.Tag,
		Technician: technician,
		Category:   category,
		At:         at,
	})

	result := models.ChecklistResult{Key: key, Synced: writeErr == nil}
	var pending *models.PendingCheck
	if writeErr != nil {
		pending = &models.PendingCheck{
			Key:        key,
			AssetID:    assetID,
			AssetTag:   asset.Tag,
			Technician: technician,
			Category:   category,
			Error:      writeErr.Error(),
			RecordedAt: at.UTC(),
		}
	}

	c.mu.Lock()
	c.checked[key] = true
	if pending != nil {
		c.pending[key] = *pending
	}
	c.mu.Unlock()

	if pending != nil {
		log.WithError(writeErr).WithFields(log.Fields{
			"asset":    asset.Tag,
			"category": category,
		}).Warn("Checklist write failed, kept locally")
		if err := c.stores.Checklists.RecordPending(ctx, *pending); err != nil {
			log.WithError(err).WithField("key", key).Error("Failed to journal pending check")
		}
	}

	c.publish(events.TopicChecklists, events.ChecklistLogged, map[string]any{
		"assetId":    assetID,
		"assetTag":   asset.Tag,
		"technician": technician,
		"category":   category,
		"synced":     result.Synced,
	})
	return result, nil
}

// ZoneChecklist lists the assets of a zone with the categories already
// completed for each.
func (c *Controller) ZoneChecklist(zone models.Zone) ([]models.ZoneAssetChecks, error) {
	if !models.IsValidZone(zone) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidZone, zone)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []models.ZoneAssetChecks{}
	for _, a := range c.assets {
		if a.Zone != zone {
			continue
		}
		done := []models.ChecklistCategory{}
		for _, cat := range models.ChecklistCategories {
			if c.checked[models.CheckKey(a.ID, cat)] {
				done = append(done, cat)
			}
		}
		out = append(out, models.ZoneAssetChecks{Asset: a, Completed: done})
	}
	return out, nil
}
