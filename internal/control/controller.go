// Package control owns the in-memory view of the facility: assets, tickets,
// demerits, the checked-checklist set, the field force and gas stock. Every
// mutation goes through the Controller, which keeps the remote store, the
// local store and the event feed in step.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/ai"
	"github.com/ukydev/fm-control/internal/config"
	"github.com/ukydev/fm-control/internal/db"
	"github.com/ukydev/fm-control/internal/dispatch"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

const (
	readyInsight   = "System ready: infrastructure synchronized with " + sheet.ChecklistDestination + " master tab."
	syncedInsight  = "Cloud pulse active. All logs routing to " + sheet.ChecklistDestination + "."
	offlineInsight = "Cloud offline. Showing last synced state."
)

// RemoteStore is the spreadsheet-backed system of record.
type RemoteStore interface {
	FetchAssets(ctx context.Context) ([]models.Asset, error)
	FetchStats(ctx context.Context) (*sheet.Stats, error)
	SubmitChecklist(ctx context.Context, w sheet.ChecklistWrite) error
	Complain(ctx context.Context, c sheet.Complaint) error
	CloseComplaint(ctx context.Context, c sheet.Closure) error
}

// Stores is the local persistence used by the controller.
type Stores struct {
	Technicians db.TechnicianCollection
	Inventory   db.InventoryCollection
	Checklists  db.ChecklistJournal
}

// Controller is safe for concurrent use. Network calls are made without
// holding the lock; results are applied under it.
type Controller struct {
	remote    RemoteStore
	suggester ai.Suggester
	publisher events.Publisher
	stores    Stores
	roster    config.Roster
	now       func() time.Time

	mu        sync.RWMutex
	assets    []models.Asset
	tickets   []models.Ticket
	demerits  []models.Demerit
	checked   map[string]bool
	pending   map[string]models.PendingCheck
	techs     []models.Technician
	inventory []models.InventoryItem
	insight   string
	lastSync  time.Time
}

// New creates a controller seeded from the roster. Call Load to apply
// persisted state and Refresh to pull the remote store.
func New(remote RemoteStore, suggester ai.Suggester, publisher events.Publisher, stores Stores, roster config.Roster) *Controller {
	if suggester == nil {
		suggester = ai.FallbackSuggester{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	techs := make([]models.Technician, 0, len(roster.Technicians))
	for _, e := range roster.Technicians {
		techs = append(techs, models.Technician{Name: e.Name, Zone: e.Zone, IsPresent: true})
	}
	inventory := make([]models.InventoryItem, len(roster.Gas))
	copy(inventory, roster.Gas)

	return &Controller{
		remote:    remote,
		suggester: suggester,
		publisher: publisher,
		stores:    stores,
		roster:    roster,
		now:       time.Now,
		checked:   make(map[string]bool),
		pending:   make(map[string]models.PendingCheck),
		techs:     techs,
		inventory: inventory,
		insight:   readyInsight,
	}
}

// Load applies attendance, bonus points, gas stock and pending checklist
// writes from the local store. Stored entries for names that are not on the
// roster are ignored.
func (c *Controller) Load(ctx context.Context) error {
	stored, err := c.stores.Technicians.FindTechnicians(ctx)
	if err != nil {
		return fmt.Errorf("load technicians: %w", err)
	}
	items, err := c.stores.Inventory.FindItems(ctx)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	pending, err := c.stores.Checklists.FindPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending checks: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	byName := make(map[string]models.Technician, len(stored))
	for _, t := range stored {
		byName[t.Name] = t
	}
	for i, t := range c.techs {
		s, ok := byName[t.Name]
		if !ok {
			continue
		}
		t.IsPresent = s.IsPresent
		t.BonusPoints = s.BonusPoints
		if models.IsValidZone(s.Zone) {
			t.Zone = s.Zone
		}
		c.techs[i] = t
	}

	kg := make(map[string]float64, len(items))
	for _, it := range items {
		kg[it.Name] = it.Kg
	}
	for i, it := range c.inventory {
		if v, ok := kg[it.Name]; ok {
			c.inventory[i].Kg = v
		}
	}

	for _, p := range pending {
		c.pending[p.Key] = p
		c.checked[p.Key] = true
	}

	log.WithFields(log.Fields{
		"technicians": len(stored),
		"inventory":   len(items),
		"pending":     len(pending),
	}).Info("Loaded local state")
	return nil
}

// Assets returns the asset register, optionally filtered by status.
func (c *Controller) Assets(status models.AssetStatus) []models.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Asset, 0, len(c.assets))
	for _, a := range c.assets {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// Tickets returns the fault tickets. With openOnly, resolved tickets are
// left out.
func (c *Controller) Tickets(openOnly bool) []models.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Ticket, 0, len(c.tickets))
	for _, t := range c.tickets {
		if openOnly && !t.IsOpen() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Demerits returns the audit records.
func (c *Controller) Demerits() []models.Demerit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Demerit(nil), c.demerits...)
}

// Technicians returns the field force ranked by score.
func (c *Controller) Technicians() []models.RankedTechnician {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dispatch.Rank(c.techs)
}

// Inventory returns the gas stock.
func (c *Controller) Inventory() []models.InventoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.InventoryItem(nil), c.inventory...)
}

// Tools returns the tool catalogue.
func (c *Controller) Tools() []models.Tool {
	return append([]models.Tool(nil), c.roster.Tools...)
}

// PendingChecks lists checklist completions that never reached the remote
// store, oldest first.
func (c *Controller) PendingChecks() []models.PendingCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.PendingCheck, 0, len(c.pending))
	for _, p := range c.pending {
		out = append(out, p)
	}
	sortPending(out)
	return out
}

// IsChecked reports whether the category is done for the asset.
func (c *Controller) IsChecked(assetID int, category models.ChecklistCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checked[models.CheckKey(assetID, category)]
}

func (c *Controller) findAssetLocked(id int) (models.Asset, bool) {
	for _, a := range c.assets {
		if a.ID == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

func (c *Controller) findTechLocked(name string) int {
	for i, t := range c.techs {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (c *Controller) publish(topic, eventType string, payload any) {
	if err := c.publisher.Publish(topic, eventType, payload); err != nil {
		log.WithError(err).WithField("event", eventType).Warn("Failed to publish event")
	}
}

// refreshAfterWrite pulls the remote store after a successful write. A
// failure is logged; the write itself already succeeded.
func (c *Controller) refreshAfterWrite(ctx context.Context, op string) {
	if _, err := c.Refresh(ctx); err != nil {
		log.WithError(err).WithField("op", op).Warn("Refresh after write failed")
	}
}
