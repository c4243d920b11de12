package control

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/dispatch"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
	"golang.org/x/sync/errgroup"
)

// SyncReport summarises a completed refresh.
type SyncReport struct {
	Assets    int       `json:"assets"`
	Tickets   int       `json:"tickets"`
	Demerits  int       `json:"demerits"`
	Checked   int       `json:"checked"`
	Pending   int       `json:"pending"`
	Confirmed int       `json:"confirmed"`
	At        time.Time `json:"at"`
}

// Refresh pulls assets and stats from the remote store and replaces the
// in-memory state. On failure nothing changes and a *SyncError is returned.
func (c *Controller) Refresh(ctx context.Context) (SyncReport, error) {
	var (
		assets []models.Asset
		stats  *sheet.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assets, err = c.remote.FetchAssets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.remote.FetchStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.mu.Lock()
		c.insight = offlineInsight
		c.mu.Unlock()
		log.WithError(err).Warn("Sync failed, keeping previous state")
		return SyncReport{}, &SyncError{Err: err}
	}

	snap := sheet.BuildSnapshot(assets, stats)

	c.mu.Lock()
	checked := snap.Checked
	if !snap.HasHistory {
		checked = make(map[string]bool, len(c.checked))
		for k := range c.checked {
			checked[k] = true
		}
	}

	var confirmed []string
	for key := range c.pending {
		if snap.HasHistory && snap.Checked[key] {
			confirmed = append(confirmed, key)
			delete(c.pending, key)
			continue
		}
		checked[key] = true
	}

	c.assets = snap.Assets
	c.tickets = snap.Tickets
	c.demerits = snap.Demerits
	c.checked = checked
	c.techs = dispatch.ApplyPerformance(c.techs, c.tickets, c.demerits)
	c.lastSync = c.now()
	c.insight = syncedInsight

	report := SyncReport{
		Assets:    len(c.assets),
		Tickets:   len(c.tickets),
		Demerits:  len(c.demerits),
		Checked:   len(c.checked),
		Pending:   len(c.pending),
		Confirmed: len(confirmed),
		At:        c.lastSync,
	}
	c.mu.Unlock()

	for _, key := range confirmed {
		if err := c.stores.Checklists.DeletePending(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to clear confirmed pending check")
		}
	}

	log.WithFields(log.Fields{
		"assets":   report.Assets,
		"tickets":  report.Tickets,
		"demerits": report.Demerits,
		"checked":  report.Checked,
		"pending":  report.Pending,
	}).Info("Sync successful")
	return report, nil
}

// LastSync returns the time of the last successful refresh.
func (c *Controller) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}

func sortPending(p []models.PendingCheck) {
	sort.Slice(p, func(i, j int) bool {
		if p[i].RecordedAt.Equal(p[j].RecordedAt) {
			return p[i].Key < p[j].Key
		}
		return p[i].RecordedAt.Before(p[j].RecordedAt)
	})
}
