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

// CreateTicket raises a fault against an asset. The assignee is, in order:
// the explicit AssignedTo, the AI suggestion when it names a present
// technician, or the least loaded present technician of the asset's zone.
func (c *Controller) CreateTicket(ctx context.Context, in models.NewTicket) (models.Ticket, error) {
	details := strings.TrimSpace(in.Details)
	if details == "" {
		return models.Ticket{}, fmt.Errorf("%w: details are required", ErrInvalidTicket)
	}
	severity := in.Severity
	switch severity {
	case "":
		severity = models.SeverityMinor
	case models.SeverityMinor, models.SeverityMajor:
	default:
		return models.Ticket{}, fmt.Errorf("%w: unknown severity %q", ErrInvalidTicket, severity)
	}

	c.mu.RLock()
	asset, ok := c.findAssetLocked(in.AssetID)
	techs := append([]models.Technician(nil), c.techs...)
	tickets := append([]models.Ticket(nil), c.tickets...)
	c.mu.RUnlock()
	if !ok {
		return models.Ticket{}, fmt.Errorf("%w: %d", ErrAssetNotFound, in.AssetID)
	}

	assignee := strings.TrimSpace(in.AssignedTo)
	if in.UseAI {
		s := c.suggester.Suggest(ctx, details, dispatch.PresentNames(techs))
		if s.Priority == models.PriorityHigh {
			severity = models.SeverityMajor
		}
		if assignee == "" {
			if dispatch.IsPresent(techs, s.SuggestedTech) {
				assignee = s.SuggestedTech
			} else {
				log.WithField("suggested", s.SuggestedTech).Debug("Suggested technician is not on duty, using heuristic")
			}
		}
	}
	if assignee == "" {
		name, ok := dispatch.PickTechnician(techs, tickets, asset.Zone)
		if !ok {
			name = dispatch.FallbackAssignee
		}
		assignee = name
	}

	err := c.remote.Complain(ctx, sheet.Complaint{
		Location:     asset.Location,
		Details:      details,
		AssetTag:     asset.Tag,
		AssignedTech: assignee,
		Severity:     severity,
	})
	if err != nil {
		return models.Ticket{}, &RemoteError{Op: "create ticket", Err: err}
	}

	c.mu.Lock()
	ticket := models.Ticket{
		ID:         c.nextTicketIDLocked(),
		AssetTag:   asset.Tag,
		AssetID:    asset.ID,
		Location:   asset.Location,
		Details:    details,
		Status:     models.TicketOpen,
		Severity:   severity,
		AssignedTo: assignee,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	}
	c.tickets = append(c.tickets, ticket)
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"asset":    asset.Tag,
		"assignee": assignee,
		"severity": severity,
	}).Info("Ticket created")
	c.publish(events.TopicTickets, events.TicketCreated, ticket)
	c.refreshAfterWrite(ctx, "create ticket")
	return ticket, nil
}

// ResolveTicket closes a ticket. Gas service resolutions also draw the used
// refrigerant from stock.
func (c *Controller) ResolveTicket(ctx context.Context, id int, res models.Resolution) (models.Ticket, error) {
	if err := validateResolution(res); err != nil {
		return models.Ticket{}, err
	}

	c.mu.RLock()
	var (
		ticket models.Ticket
		found  bool
	)
	for _, t := range c.tickets {
		if t.ID == id {
			ticket, found = t, true
			break
		}
	}
	c.mu.RUnlock()

	switch {
	case !found:
		return models.Ticket{}, fmt.Errorf("%w: %d", ErrTicketNotFound, id)
	case ticket.Status == models.TicketResolved:
		return models.Ticket{}, fmt.Errorf("%w: %d", ErrTicketResolved, id)
	case ticket.RowIndex == nil:
		return models.Ticket{}, fmt.Errorf("%w: %d", ErrMissingRowIndex, id)
	}

	err := c.remote.CloseComplaint(ctx, sheet.Closure{
		RowIndex:   *ticket.RowIndex,
		Technician: res.TechnicianName,
		Details:    closureDetails(res),
	})
	if err != nil {
		return models.Ticket{}, &RemoteError{Op: "resolve ticket", Err: err}
	}

	var drawn *models.InventoryItem
	c.mu.Lock()
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			c.tickets[i].Status = models.TicketResolved
			ticket = c.tickets[i]
			break
		}
	}
	if res.Class == models.ResolutionGasService {
		drawn = c.drawGasLocked(res.Gas, res.Amount)
	}
	c.techs = dispatch.ApplyPerformance(c.techs, c.tickets, c.demerits)
	c.mu.Unlock()

	if drawn != nil {
		if err := c.stores.Inventory.SaveItem(ctx, *drawn); err != nil {
			log.WithError(err).WithField("gas", drawn.Name).Error("Failed to persist gas stock")
		}
		c.publish(events.TopicFieldForce, events.GasAdjusted, *drawn)
	} else if res.Class == models.ResolutionGasService {
		log.WithField("gas", res.Gas).Warn("No stock line matches gas, inventory unchanged")
	}

	log.WithFields(log.Fields{
		"ticket":     id,
		"technician": res.TechnicianName,
		"class":      res.Class,
	}).Info("Ticket resolved")
	c.publish(events.TopicTickets, events.TicketResolved, map[string]any{
		"ticket":     ticket,
		"resolvedBy": res.TechnicianName,
		"class":      res.Class,
		"severity":   res.Class.Severity(),
	})
	c.refreshAfterWrite(ctx, "resolve ticket")
	return ticket, nil
}

// Suggest asks the assignment assistant about a fault description.
func (c *Controller) Suggest(ctx context.Context, details string) (models.Suggestion, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return models.Suggestion{}, fmt.Errorf("%w: details are required", ErrInvalidTicket)
	}
	c.mu.RLock()
	present := dispatch.PresentNames(c.techs)
	c.mu.RUnlock()
	return c.suggester.Suggest(ctx, details, present), nil
}

func validateResolution(res models.Resolution) error {
	if strings.TrimSpace(res.TechnicianName) == "" {
		return fmt.Errorf("%w: technician is required", ErrInvalidResolution)
	}
	if !res.Class.IsValid() {
		return fmt.Errorf("%w: unknown class %q", ErrInvalidResolution, res.Class)
	}
	if res.Class == models.ResolutionGasService {
		if strings.TrimSpace(res.Gas) == "" {
			return fmt.Errorf("%w: gas is required for gas service", ErrInvalidResolution)
		}
		if res.Amount <= 0 {
			return fmt.Errorf("%w: gas amount must be positive", ErrInvalidResolution)
		}
	}
	return nil
}

func closureDetails(res models.Resolution) string {
	prefix := fmt.Sprintf("[%s/%s]", res.Class, res.Class.Severity())
	if res.Class == models.ResolutionGasService {
		prefix += fmt.Sprintf(" [%s %.2fkg]", res.Gas, res.Amount)
	}
	details := strings.TrimSpace(res.Details)
	if details == "" {
		return prefix
	}
	return prefix + " " + details
}

// drawGasLocked decrements the first stock line whose name contains gas,
// flooring at zero. It returns the updated line, or nil if none matched.
func (c *Controller) drawGasLocked(gas string, kg float64) *models.InventoryItem {
	for i := range c.inventory {
		if strings.Contains(c.inventory[i].Name, gas) {
			c.inventory[i].Kg = max(0, c.inventory[i].Kg-kg)
			item := c.inventory[i]
			return &item
		}
	}
	return nil
}

func (c *Controller) nextTicketIDLocked() int {
	next := 1
	for _, t := range c.tickets {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	for _, d := range c.demerits {
		if d.TicketID >= next {
			next = d.TicketID + 1
		}
	}
	return next
}
