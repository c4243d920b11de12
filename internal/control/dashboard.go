package control

import (
	"time"

	"github.com/ukydev/fm-control/internal/dispatch"
	"github.com/ukydev/fm-control/internal/models"
)

const maxCriticalAlerts = 2

// Dashboard is the overview screen.
type Dashboard struct {
	AssetsByStatus map[models.AssetStatus]int       `json:"assetsByStatus"`
	TotalAssets    int                              `json:"totalAssets"`
	TicketsByState map[models.TicketStatus]int      `json:"ticketsByStatus"`
	ActiveQueue    int                              `json:"activeQueue"`
	Inventory      []models.InventoryItem           `json:"inventory"`
	Leaderboard    []models.RankedTechnician        `json:"leaderboard"`
	CriticalAlerts []models.Asset                   `json:"criticalAlerts"`
	ZoneLabels     map[models.Zone]string           `json:"zoneLabels"`
	ChecksDone     map[models.ChecklistCategory]int `json:"checksDone"`
	Insight        string                           `json:"insight"`
	LastSync       *time.Time                       `json:"lastSync,omitempty"`
}

// Dashboard builds the overview from the current state.
func (c *Controller) Dashboard() Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := Dashboard{
		AssetsByStatus: make(map[models.AssetStatus]int, len(models.AssetStatuses)),
		TotalAssets:    len(c.assets),
		TicketsByState: map[models.TicketStatus]int{
			models.TicketOpen:       0,
			models.TicketInProgress: 0,
			models.TicketResolved:   0,
		},
		Inventory:      append([]models.InventoryItem(nil), c.inventory...),
		Leaderboard:    dispatch.Rank(c.techs),
		CriticalAlerts: []models.Asset{},
		ZoneLabels:     c.roster.ZoneLabels,
		ChecksDone:     make(map[models.ChecklistCategory]int, len(models.ChecklistCategories)),
		Insight:        c.insight,
	}
	for _, s := range models.AssetStatuses {
		d.AssetsByStatus[s] = 0
	}
	for _, a := range c.assets {
		d.AssetsByStatus[a.Status]++
		if a.Status == models.AssetMaintenance && len(d.CriticalAlerts) < maxCriticalAlerts {
			d.CriticalAlerts = append(d.CriticalAlerts, a)
		}
		for _, cat := range models.ChecklistCategories {
			if c.checked[models.CheckKey(a.ID, cat)] {
				d.ChecksDone[cat]++
			}
		}
	}
	for _, t := range c.tickets {
		d.TicketsByState[t.Status]++
		if t.IsOpen() {
			d.ActiveQueue++
		}
	}
	if !c.lastSync.IsZero() {
		at := c.lastSync
		d.LastSync = &at
	}
	return d
}
