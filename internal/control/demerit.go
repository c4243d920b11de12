package control

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/dispatch"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

// IssueDemerit records a point deduction against a technician. The remote
// store has no audit channel, so the deduction is filed as an Admin Panel
// ticket and closed straight away.
func (c *Controller) IssueDemerit(ctx context.Context, technician string, points int, reason string) (models.Demerit, error) {
	if points <= 0 {
		return models.Demerit{}, fmt.Errorf("%w: points must be positive", ErrInvalidDemerit)
	}
	c.mu.RLock()
	known := c.findTechLocked(technician) >= 0
	c.mu.RUnlock()
	if !known {
		return models.Demerit{}, fmt.Errorf("%w: %q", ErrUnknownTechnician, technician)
	}

	details := sheet.FormatDemerit(points, reason)
	err := c.remote.Complain(ctx, sheet.Complaint{
		Location:     models.AdminPanelLocation,
		Details:      details,
		AssetTag:     sheet.AuditAssetTag,
		AssignedTech: technician,
	})
	if err != nil {
		return models.Demerit{}, &RemoteError{Op: "issue demerit", Err: err}
	}

	stats, err := c.remote.FetchStats(ctx)
	if err != nil {
		return models.Demerit{}, &RemoteError{Op: "issue demerit", Err: err}
	}

	audit, ok := findAuditEntry(stats.Tickets, technician, details)
	if !ok {
		log.WithFields(log.Fields{
			"technician": technician,
			"details":    details,
		}).Warn("Audit entry not found after write, leaving it open")
		demerit := models.Demerit{
			Technician: technician,
			Points:     points,
			Reason:     strings.TrimSpace(reason),
			Timestamp:  c.now().UTC().Format(time.RFC3339),
		}
		c.finishDemerit(ctx, demerit)
		return demerit, nil
	}

	err = c.remote.CloseComplaint(ctx, sheet.Closure{
		RowIndex:   *audit.RowIndex,
		Technician: dispatch.FallbackAssignee,
		Details:    details,
	})
	if err != nil {
		return models.Demerit{}, &RemoteError{Op: "issue demerit", Err: err}
	}

	audit.Status = models.TicketResolved
	demerit := sheet.DemeritFromTicket(audit)
	c.finishDemerit(ctx, demerit)
	return demerit, nil
}

func (c *Controller) finishDemerit(ctx context.Context, d models.Demerit) {
	log.WithFields(log.Fields{
		"technician": d.Technician,
		"points":     d.Points,
	}).Info("Demerit issued")
	c.publish(events.TopicDemerits, events.DemeritIssued, d)
	c.refreshAfterWrite(ctx, "issue demerit")
}

// findAuditEntry returns the newest unresolved Admin Panel ticket for
// technician with exactly these details.
func findAuditEntry(tickets []models.Ticket, technician, details string) (models.Ticket, bool) {
	var (
		best  models.Ticket
		found bool
	)
	for _, t := range tickets {
		if !t.IsAudit() || t.Status == models.TicketResolved || t.RowIndex == nil {
			continue
		}
		if t.AssignedTo != technician || t.Details != details {
			continue
		}
		if !found || *t.RowIndex > *best.RowIndex {
			best, found = t, true
		}
	}
	return best, found
}
