// Package dispatch holds the technician assignment heuristic and the
// performance scoring used for the leaderboard.
package dispatch

import (
	"github.com/ukydev/fm-control/internal/models"
)

// FallbackAssignee receives tickets when no technician is on duty.
const FallbackAssignee = "Admin"

// OpenLoad counts open fault tickets per assignee. Audit entries never count.
func OpenLoad(tickets []models.Ticket) map[string]int {
	load := make(map[string]int)
	for _, t := range tickets {
		if t.IsAudit() || !t.IsOpen() {
			continue
		}
		load[t.AssignedTo]++
	}
	return load
}

// PickTechnician chooses the assignee for a fault in zone: the least loaded
// present technician of that zone, or the least loaded present technician
// overall when the zone has nobody on duty. Ties keep roster order. ok is
// false when no technician is present.
func PickTechnician(techs []models.Technician, tickets []models.Ticket, zone models.Zone) (name string, ok bool) {
	var present, inZone []models.Technician
	for _, t := range techs {
		if !t.IsPresent {
			continue
		}
		present = append(present, t)
		if t.Zone == zone {
			inZone = append(inZone, t)
		}
	}

	pool := inZone
	if len(pool) == 0 {
		pool = present
	}
	if len(pool) == 0 {
		return "", false
	}

	load := OpenLoad(tickets)
	best := pool[0]
	for _, t := range pool[1:] {
		if load[t.Name] < load[best.Name] {
			best = t
		}
	}
	return best.Name, true
}

// IsPresent reports whether name is a present technician.
func IsPresent(techs []models.Technician, name string) bool {
	for _, t := range techs {
		if t.Name == name {
			return t.IsPresent
		}
	}
	return false
}

// PresentNames lists present technicians in roster order.
func PresentNames(techs []models.Technician) []string {
	names := make([]string, 0, len(techs))
	for _, t := range techs {
		if t.IsPresent {
			names = append(names, t.Name)
		}
	}
	return names
}
