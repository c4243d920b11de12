package control

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
)

// ToggleAttendance flips whether a technician is on duty.
func (c *Controller) ToggleAttendance(ctx context.Context, name string) (models.Technician, error) {
	c.mu.Lock()
	i := c.findTechLocked(name)
	if i < 0 {
		c.mu.Unlock()
		return models.Technician{}, fmt.Errorf("%w: %q", ErrUnknownTechnician, name)
	}
	c.techs[i].IsPresent = !c.techs[i].IsPresent
	tech := c.techs[i]
	c.mu.Unlock()

	c.saveTechnician(ctx, tech)
	log.WithFields(log.Fields{
		"technician": name,
		"present":    tech.IsPresent,
	}).Info("Attendance toggled")
	c.publish(events.TopicFieldForce, events.AttendanceToggle, tech)
	return tech, nil
}

// Takeover moves a present technician onto another zone to cover it and
// awards the takeover bonus.
func (c *Controller) Takeover(ctx context.Context, name string, zone models.Zone) (models.Technician, error) {
	if !models.IsValidZone(zone) {
		return models.Technician{}, fmt.Errorf("%w: %q", ErrInvalidZone, zone)
	}

	c.mu.Lock()
	i := c.findTechLocked(name)
	if i < 0 {
		c.mu.Unlock()
		return models.Technician{}, fmt.Errorf("%w: %q", ErrUnknownTechnician, name)
	}
	if !c.techs[i].IsPresent {
		c.mu.Unlock()
		return models.Technician{}, fmt.Errorf("%w: %q", ErrNotPresent, name)
	}
	if c.techs[i].Zone == zone {
		c.mu.Unlock()
		return models.Technician{}, fmt.Errorf("%w: %s already covers zone %s", ErrInvalidZone, name, zone)
	}
	from := c.techs[i].Zone
	c.techs[i].Zone = zone
	c.techs[i].BonusPoints += models.TakeoverBonus
	tech := c.techs[i]
	c.mu.Unlock()

	c.saveTechnician(ctx, tech)
	log.WithFields(log.Fields{
		"technician": name,
		"from":       from,
		"to":         zone,
	}).Info("Zone takeover")
	c.publish(events.TopicFieldForce, events.ZoneTakeover, map[string]any{
		"technician": tech,
		"from":       from,
		"to":         zone,
	})
	return tech, nil
}

// UpdateGas sets the stock of a gas line.
func (c *Controller) UpdateGas(ctx context.Context, name string, kg float64) (models.InventoryItem, error) {
	if kg < 0 {
		return models.InventoryItem{}, fmt.Errorf("%w: %v kg", ErrInvalidAmount, kg)
	}

	c.mu.Lock()
	idx := -1
	for i, it := range c.inventory {
		if it.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return models.InventoryItem{}, fmt.Errorf("%w: %q", ErrUnknownGas, name)
	}
	c.inventory[idx].Kg = kg
	item := c.inventory[idx]
	c.mu.Unlock()

	if err := c.stores.Inventory.SaveItem(ctx, item); err != nil {
		log.WithError(err).WithField("gas", name).Error("Failed to persist gas stock")
	}
	c.publish(events.TopicFieldForce, events.GasAdjusted, item)
	return item, nil
}

func (c *Controller) saveTechnician(ctx context.Context, t models.Technician) {
	if err := c.stores.Technicians.SaveTechnician(ctx, t); err != nil {
		log.WithError(err).WithField("technician", t.Name).Error("Failed to persist technician")
	}
}
